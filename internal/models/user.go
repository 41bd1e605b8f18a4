package models

import (
	"time"
)

// User is an account holder.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Profile   *Profile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// Profile is the public career profile of a user.
type Profile struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Headline          string     `gorm:"size:200" json:"headline"`
	Bio               string     `gorm:"type:text" json:"bio"`
	Location          string     `gorm:"size:120;index" json:"location"`
	AvatarURL         string     `json:"avatar_url"`
	Skills            []string   `gorm:"type:text;serializer:json" json:"skills"`
	YearsOfExperience int        `json:"years_of_experience"`
	PreviousCompany   string     `gorm:"size:120" json:"previous_company"`
	LaidOffAt         *time.Time `json:"laid_off_at,omitempty"`
	OpenToWork        bool       `gorm:"not null" json:"open_to_work"`
	LinkedInURL       string     `gorm:"column:linkedin_url" json:"linkedin_url"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ProfileSummary is the public card shown next to conversations and threads.
type ProfileSummary struct {
	UserID     uint   `json:"user_id"`
	Name       string `json:"name"`
	Headline   string `json:"headline"`
	AvatarURL  string `json:"avatar_url"`
	OpenToWork bool   `json:"open_to_work"`
}

// Summary builds the public summary of a user. p may be nil.
func Summary(u *User, p *Profile) *ProfileSummary {
	s := &ProfileSummary{UserID: u.ID, Name: u.Name}
	if p != nil {
		s.Headline = p.Headline
		s.AvatarURL = p.AvatarURL
		s.OpenToWork = p.OpenToWork
	}
	return s
}
