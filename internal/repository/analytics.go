package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"rehire/internal/models"

	"gorm.io/gorm"
)

const topFacetSize = 10

// AnalyticsRepository computes aggregate board statistics.
type AnalyticsRepository interface {
	Summary(ctx context.Context, now time.Time) (*models.AnalyticsSummary, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository returns a new AnalyticsRepository implementation.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Summary(ctx context.Context, now time.Time) (*models.AnalyticsSummary, error) {
	db := r.db.WithContext(ctx)
	s := &models.AnalyticsSummary{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&s.TotalUsers, db.Model(&models.User{})},
		{&s.OpenToWork, db.Model(&models.Profile{}).Where("open_to_work = ?", true)},
		{&s.ActiveHiringPosts, db.Model(&models.HiringPost{}).Where("is_active = ?", true)},
		{&s.ActiveReferrals, db.Model(&models.Referral{}).
			Where("is_active = ? AND (expires_at IS NULL OR expires_at > ?)", true, now)},
		{&s.MessagesLast7Days, db.Model(&models.Message{}).Where("created_at >= ?", now.AddDate(0, 0, -7))},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	var err error
	if s.ByEmploymentType, err = r.facet(db.Model(&models.HiringPost{}).Where("is_active = ?", true),
		"employment_type", 0); err != nil {
		return nil, err
	}
	if s.TopLocations, err = r.facet(db.Model(&models.HiringPost{}).Where("is_active = ? AND location <> ?", true, ""),
		"location", topFacetSize); err != nil {
		return nil, err
	}
	if s.ReferralsByCompany, err = r.facet(db.Model(&models.Referral{}).
		Where("is_active = ? AND (expires_at IS NULL OR expires_at > ?)", true, now),
		"company", topFacetSize); err != nil {
		return nil, err
	}
	if s.RemoteSplit, err = r.remoteSplit(db); err != nil {
		return nil, err
	}
	if s.TopSkills, err = r.topSkills(db); err != nil {
		return nil, err
	}
	return s, nil
}

// facet groups q by column, largest buckets first. limit 0 keeps every bucket.
func (r *analyticsRepository) facet(q *gorm.DB, column string, limit int) ([]models.FacetCount, error) {
	out := []models.FacetCount{}
	q = q.Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Order(column)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *analyticsRepository) remoteSplit(db *gorm.DB) ([]models.FacetCount, error) {
	var rows []struct {
		Remote bool
		Count  int64
	}
	err := db.Model(&models.HiringPost{}).
		Select("remote, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("remote").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	split := []models.FacetCount{{Key: "remote"}, {Key: "on-site"}}
	for _, row := range rows {
		if row.Remote {
			split[0].Count += row.Count
		} else {
			split[1].Count += row.Count
		}
	}
	return split, nil
}

// topSkills tallies skills of active posts. Skills live in a JSON column, so
// the tally runs in process.
func (r *analyticsRepository) topSkills(db *gorm.DB) ([]models.FacetCount, error) {
	var posts []models.HiringPost
	if err := db.Select("id", "skills").Where("is_active = ?", true).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	tally := make(map[string]int64)
	display := make(map[string]string)
	for _, p := range posts {
		for _, skill := range p.Skills {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" {
				continue
			}
			if _, ok := display[key]; !ok {
				display[key] = strings.TrimSpace(skill)
			}
			tally[key]++
		}
	}

	out := make([]models.FacetCount, 0, len(tally))
	for key, n := range tally {
		out = append(out, models.FacetCount{Key: display[key], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > topFacetSize {
		out = out[:topFacetSize]
	}
	return out, nil
}
