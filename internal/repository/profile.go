package repository

import (
	"context"
	"errors"

	"rehire/internal/cache"
	"rehire/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for career profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	Summary(ctx context.Context, userID uint) (*models.ProfileSummary, error)
	Summaries(ctx context.Context, userIDs []uint) (map[uint]*models.ProfileSummary, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, lookupError(err, "Profile", userID)
	}
	return &profile, nil
}

var profileColumns = []string{
	"headline", "bio", "location", "avatar_url", "skills", "years_of_experience",
	"previous_company", "laid_off_at", "open_to_work", "linkedin_url", "updated_at",
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(profileColumns),
	}).Create(profile).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, profile.UserID)
	return nil
}

// Summary returns the public card of userID through the cache.
func (r *profileRepository) Summary(ctx context.Context, userID uint) (*models.ProfileSummary, error) {
	var summary models.ProfileSummary
	err := cache.Aside(ctx, cache.ProfileSummaryKey(userID), &summary, cache.ProfileSummaryTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
			return lookupError(err, "User", userID)
		}

		var profile models.Profile
		err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
		switch {
		case err == nil:
			summary = *models.Summary(&user, &profile)
		case errors.Is(err, gorm.ErrRecordNotFound):
			summary = *models.Summary(&user, nil)
		default:
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Summaries resolves several users at once; missing users are absent from the map.
func (r *profileRepository) Summaries(ctx context.Context, userIDs []uint) (map[uint]*models.ProfileSummary, error) {
	out := make(map[uint]*models.ProfileSummary, len(userIDs))
	for _, id := range userIDs {
		if _, seen := out[id]; seen {
			continue
		}
		s, err := r.Summary(ctx, id)
		if err != nil {
			if models.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out[id] = s
	}
	return out, nil
}
