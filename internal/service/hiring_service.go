package service

import (
	"context"
	"strings"

	"rehire/internal/models"
	"rehire/internal/repository"
	"rehire/internal/validation"
)

// HiringService manages job openings shared by members.
type HiringService struct {
	posts repository.HiringPostRepository
}

// HiringPostInput is the editable content of a hiring post.
type HiringPostInput struct {
	Company        string                `json:"company" validate:"notblank,max=120"`
	Title          string                `json:"title" validate:"notblank,max=200"`
	Description    string                `json:"description" validate:"max=10000"`
	Location       string                `json:"location" validate:"max=120"`
	Remote         bool                  `json:"remote"`
	EmploymentType models.EmploymentType `json:"employment_type" validate:"omitempty,oneof=full-time part-time contract internship"`
	SalaryMin      *int                  `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax      *int                  `json:"salary_max" validate:"omitempty,gte=0"`
	Skills         []string              `json:"skills" validate:"max=20,dive,notblank,max=50"`
}

// NewHiringService returns a new HiringService.
func NewHiringService(posts repository.HiringPostRepository) *HiringService {
	return &HiringService{posts: posts}
}

// Create publishes a new active post by authorID.
func (s *HiringService) Create(ctx context.Context, authorID uint, in HiringPostInput) (*models.HiringPost, error) {
	if err := validateHiringPost(&in); err != nil {
		return nil, err
	}

	post := &models.HiringPost{AuthorID: authorID, IsActive: true}
	applyHiringPost(post, in)
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, post.ID)
}

// Get returns a post by id.
func (s *HiringService) Get(ctx context.Context, id uint) (*models.HiringPost, error) {
	return s.posts.GetByID(ctx, id)
}

// Search lists posts matching filter.
func (s *HiringService) Search(ctx context.Context, filter repository.HiringPostFilter) ([]models.HiringPost, int64, error) {
	return s.posts.Search(ctx, filter)
}

// Update replaces the content of a post. Only its author may do this.
func (s *HiringService) Update(ctx context.Context, id, userID uint, in HiringPostInput) (*models.HiringPost, error) {
	if err := validateHiringPost(&in); err != nil {
		return nil, err
	}
	post, err := s.authored(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	applyHiringPost(post, in)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

// Close marks a post as filled or withdrawn.
func (s *HiringService) Close(ctx context.Context, id, userID uint) (*models.HiringPost, error) {
	post, err := s.authored(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !post.IsActive {
		return post, nil
	}
	if err := s.posts.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	post.IsActive = false
	return post, nil
}

// Delete removes a post.
func (s *HiringService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.authored(ctx, id, userID); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}

func (s *HiringService) authored(ctx context.Context, id, userID uint) (*models.HiringPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, models.NewForbiddenError("Only the author can change this post")
	}
	return post, nil
}

func validateHiringPost(in *HiringPostInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMax < *in.SalaryMin {
		msg := "salary_max must be greater than or equal to salary_min"
		return models.NewFieldValidationError(msg, map[string]string{"salary_max": msg})
	}
	return nil
}

func applyHiringPost(post *models.HiringPost, in HiringPostInput) {
	post.Company = strings.TrimSpace(in.Company)
	post.Title = strings.TrimSpace(in.Title)
	post.Description = in.Description
	post.Location = strings.TrimSpace(in.Location)
	post.Remote = in.Remote
	post.EmploymentType = in.EmploymentType
	if post.EmploymentType == "" {
		post.EmploymentType = models.EmploymentFullTime
	}
	post.SalaryMin = in.SalaryMin
	post.SalaryMax = in.SalaryMax
	post.Skills = normalizeSkills(in.Skills)
}
