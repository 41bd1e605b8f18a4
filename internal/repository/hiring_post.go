package repository

import (
	"context"
	"strings"

	"rehire/internal/models"

	"gorm.io/gorm"
)

// HiringPostFilter narrows Search. Zero fields do not filter.
type HiringPostFilter struct {
	Query          string
	Location       string
	Remote         *bool
	EmploymentType models.EmploymentType
	Skill          string
	AuthorID       uint
	IncludeClosed  bool
	Page           Page
}

// HiringPostRepository defines persistence operations for hiring posts.
type HiringPostRepository interface {
	Create(ctx context.Context, post *models.HiringPost) error
	GetByID(ctx context.Context, id uint) (*models.HiringPost, error)
	Update(ctx context.Context, post *models.HiringPost) error
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, filter HiringPostFilter) ([]models.HiringPost, int64, error)
}

type hiringPostRepository struct {
	db *gorm.DB
}

// NewHiringPostRepository returns a new HiringPostRepository implementation.
func NewHiringPostRepository(db *gorm.DB) HiringPostRepository {
	return &hiringPostRepository{db: db}
}

func (r *hiringPostRepository) Create(ctx context.Context, post *models.HiringPost) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *hiringPostRepository) GetByID(ctx context.Context, id uint) (*models.HiringPost, error) {
	var post models.HiringPost
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, lookupError(err, "HiringPost", id)
	}
	return &post, nil
}

func (r *hiringPostRepository) Update(ctx context.Context, post *models.HiringPost) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("company", "title", "description", "location", "remote",
			"employment_type", "salary_min", "salary_max", "skills").
		Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *hiringPostRepository) SetActive(ctx context.Context, id uint, active bool) error {
	err := r.db.WithContext(ctx).Model(&models.HiringPost{}).
		Where("id = ?", id).
		Update("is_active", active).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *hiringPostRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.HiringPost{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Search returns one page of matching posts, newest first, and the total match count.
func (r *hiringPostRepository) Search(ctx context.Context, filter HiringPostFilter) ([]models.HiringPost, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.HiringPost{})

	if !filter.IncludeClosed {
		q = q.Where("is_active = ?", true)
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		p := likePattern(s)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if s := strings.TrimSpace(filter.Location); s != "" {
		q = q.Where(`LOWER(location) LIKE ? ESCAPE '\'`, likePattern(s))
	}
	if filter.Remote != nil {
		q = q.Where("remote = ?", *filter.Remote)
	}
	if filter.EmploymentType != "" {
		q = q.Where("employment_type = ?", filter.EmploymentType)
	}
	if s := strings.TrimSpace(filter.Skill); s != "" {
		// Skills are stored as a JSON array of strings.
		q = q.Where(`LOWER(skills) LIKE ? ESCAPE '\'`, likePattern(`"`+s+`"`))
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}

	// Detach so Count and Find build independent statements.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	page := filter.Page.normalize()
	var posts []models.HiringPost
	err := q.Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}
