package repository

import (
	"context"
	"strings"
	"time"

	"rehire/internal/models"

	"gorm.io/gorm"
)

// ReferralFilter narrows Search.
type ReferralFilter struct {
	Company    string
	ReferrerID uint
	// Active, when set, keeps only open (true) or closed/expired (false) referrals.
	Active *bool
	Now    time.Time
	Page   Page
}

// ReferralRepository defines persistence operations for referral offers.
type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	GetByID(ctx context.Context, id uint) (*models.Referral, error)
	Update(ctx context.Context, referral *models.Referral) error
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, filter ReferralFilter) ([]models.Referral, int64, error)
}

type referralRepository struct {
	db *gorm.DB
}

// NewReferralRepository returns a new ReferralRepository implementation.
func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Create(ctx context.Context, referral *models.Referral) error {
	if err := r.db.WithContext(ctx).Omit("Referrer").Create(referral).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *referralRepository) GetByID(ctx context.Context, id uint) (*models.Referral, error) {
	var referral models.Referral
	if err := r.db.WithContext(ctx).Preload("Referrer").First(&referral, id).Error; err != nil {
		return nil, lookupError(err, "Referral", id)
	}
	return &referral, nil
}

func (r *referralRepository) Update(ctx context.Context, referral *models.Referral) error {
	err := r.db.WithContext(ctx).Model(referral).
		Select("company", "role", "description", "slots", "expires_at").
		Updates(referral).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *referralRepository) SetActive(ctx context.Context, id uint, active bool) error {
	err := r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("id = ?", id).
		Update("is_active", active).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *referralRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Referral{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *referralRepository) Search(ctx context.Context, filter ReferralFilter) ([]models.Referral, int64, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	q := r.db.WithContext(ctx).Model(&models.Referral{})
	if s := strings.TrimSpace(filter.Company); s != "" {
		q = q.Where(`LOWER(company) LIKE ? ESCAPE '\'`, likePattern(s))
	}
	if filter.ReferrerID != 0 {
		q = q.Where("referrer_id = ?", filter.ReferrerID)
	}
	if filter.Active != nil {
		if *filter.Active {
			q = q.Where("is_active = ? AND (expires_at IS NULL OR expires_at > ?)", true, now)
		} else {
			q = q.Where("(is_active = ? OR (expires_at IS NOT NULL AND expires_at <= ?))", false, now)
		}
	}

	// Detach so Count and Find build independent statements.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	page := filter.Page.normalize()
	var referrals []models.Referral
	err := q.Preload("Referrer").
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&referrals).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return referrals, total, nil
}
