package service

import (
	"context"
	"strings"
	"time"

	"rehire/internal/models"
	"rehire/internal/repository"
	"rehire/internal/validation"
)

// ReferralService manages referral offers.
type ReferralService struct {
	referrals repository.ReferralRepository
	now       func() time.Time
}

// ReferralInput is the editable content of a referral offer.
type ReferralInput struct {
	Company     string     `json:"company" validate:"notblank,max=120"`
	Role        string     `json:"role" validate:"notblank,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Slots       int        `json:"slots" validate:"omitempty,gte=1,lte=100"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// NewReferralService returns a new ReferralService.
func NewReferralService(referrals repository.ReferralRepository) *ReferralService {
	return &ReferralService{referrals: referrals, now: utcNow}
}

// SetClock replaces the time source.
func (s *ReferralService) SetClock(now func() time.Time) {
	s.now = now
}

// Create publishes a new active referral offer.
func (s *ReferralService) Create(ctx context.Context, referrerID uint, in ReferralInput) (*models.Referral, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	referral := &models.Referral{ReferrerID: referrerID, IsActive: true}
	applyReferral(referral, in)
	if err := s.referrals.Create(ctx, referral); err != nil {
		return nil, err
	}
	return s.referrals.GetByID(ctx, referral.ID)
}

// Get returns a referral by id.
func (s *ReferralService) Get(ctx context.Context, id uint) (*models.Referral, error) {
	return s.referrals.GetByID(ctx, id)
}

// Search lists referrals matching filter, evaluating expiry at the current time.
func (s *ReferralService) Search(ctx context.Context, filter repository.ReferralFilter) ([]models.Referral, int64, error) {
	if filter.Now.IsZero() {
		filter.Now = s.now()
	}
	return s.referrals.Search(ctx, filter)
}

// Update replaces the content of a referral. Only the referrer may do this.
func (s *ReferralService) Update(ctx context.Context, id, userID uint, in ReferralInput) (*models.Referral, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	referral, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	applyReferral(referral, in)
	if err := s.referrals.Update(ctx, referral); err != nil {
		return nil, err
	}
	return s.referrals.GetByID(ctx, id)
}

// Close stops accepting candidates.
func (s *ReferralService) Close(ctx context.Context, id, userID uint) (*models.Referral, error) {
	referral, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !referral.IsActive {
		return referral, nil
	}
	if err := s.referrals.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	referral.IsActive = false
	return referral, nil
}

// Delete removes a referral.
func (s *ReferralService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.referrals.Delete(ctx, id)
}

func (s *ReferralService) owned(ctx context.Context, id, userID uint) (*models.Referral, error) {
	referral, err := s.referrals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if referral.ReferrerID != userID {
		return nil, models.NewForbiddenError("Only the referrer can change this referral")
	}
	return referral, nil
}

func (s *ReferralService) validate(in *ReferralInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		msg := "expires_at must be in the future"
		return models.NewFieldValidationError(msg, map[string]string{"expires_at": msg})
	}
	return nil
}

func applyReferral(referral *models.Referral, in ReferralInput) {
	referral.Company = strings.TrimSpace(in.Company)
	referral.Role = strings.TrimSpace(in.Role)
	referral.Description = in.Description
	referral.Slots = in.Slots
	if referral.Slots == 0 {
		referral.Slots = 1
	}
	referral.ExpiresAt = in.ExpiresAt
}
