package models

import (
	"time"
)

// EmploymentType enumerates hiring post contract kinds.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full-time"
	EmploymentPartTime   EmploymentType = "part-time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
)

// HiringPost is a job opening shared by a member.
type HiringPost struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AuthorID       uint           `gorm:"not null;index" json:"author_id"`
	Author         *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Company        string         `gorm:"size:120;not null;index" json:"company"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Location       string         `gorm:"size:120;index" json:"location"`
	Remote         bool           `gorm:"default:false" json:"remote"`
	EmploymentType EmploymentType `gorm:"type:varchar(20);default:'full-time';index" json:"employment_type"`
	SalaryMin      *int           `json:"salary_min,omitempty"`
	SalaryMax      *int           `json:"salary_max,omitempty"`
	Skills         []string       `gorm:"type:text;serializer:json" json:"skills"`
	IsActive       bool           `gorm:"not null;index" json:"is_active"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Referral is an offer by an employee to refer candidates at their company.
type Referral struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ReferrerID  uint       `gorm:"not null;index" json:"referrer_id"`
	Referrer    *User      `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	Company     string     `gorm:"size:120;not null;index" json:"company"`
	Role        string     `gorm:"size:200;not null" json:"role"`
	Description string     `gorm:"type:text" json:"description"`
	Slots       int        `gorm:"not null;default:1" json:"slots"`
	IsActive    bool       `gorm:"not null;index" json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Open reports whether the referral still accepts candidates at now.
func (r *Referral) Open(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}

// FacetCount is one bucket of an aggregate facet.
type FacetCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// AnalyticsSummary is the multi-facet overview of board activity.
type AnalyticsSummary struct {
	TotalUsers         int64        `json:"total_users"`
	OpenToWork         int64        `json:"open_to_work"`
	ActiveHiringPosts  int64        `json:"active_hiring_posts"`
	ActiveReferrals    int64        `json:"active_referrals"`
	ByEmploymentType   []FacetCount `json:"by_employment_type"`
	RemoteSplit        []FacetCount `json:"remote_split"`
	TopLocations       []FacetCount `json:"top_locations"`
	TopSkills          []FacetCount `json:"top_skills"`
	ReferralsByCompany []FacetCount `json:"referrals_by_company"`
	MessagesLast7Days  int64        `json:"messages_last_7_days"`
}
