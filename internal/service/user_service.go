package service

import (
	"context"
	"strings"
	"time"

	"rehire/internal/middleware"
	"rehire/internal/models"
	"rehire/internal/repository"
	"rehire/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles accounts, sessions and career profiles.
type UserService struct {
	users      repository.UserRepository
	profiles   repository.ProfileRepository
	rdb        *redis.Client
	jwtSecret  string
	bcryptCost int
	now        func() time.Time
}

// SignupInput is the input for creating an account.
type SignupInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"notblank,max=100"`
}

// LoginInput is the input for starting a session.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// ProfileInput replaces the editable parts of a profile.
type ProfileInput struct {
	Name              *string    `json:"name" validate:"omitempty,notblank,max=100"`
	Headline          string     `json:"headline" validate:"max=200"`
	Bio               string     `json:"bio" validate:"max=2000"`
	Location          string     `json:"location" validate:"max=120"`
	AvatarURL         string     `json:"avatar_url" validate:"omitempty,url,max=2048"`
	Skills            []string   `json:"skills" validate:"max=30,dive,notblank,max=50"`
	YearsOfExperience int        `json:"years_of_experience" validate:"gte=0,lte=60"`
	PreviousCompany   string     `json:"previous_company" validate:"max=120"`
	LaidOffAt         *time.Time `json:"laid_off_at"`
	OpenToWork        *bool      `json:"open_to_work"`
	LinkedInURL       string     `json:"linkedin_url" validate:"omitempty,url,max=2048"`
}

// NewUserService returns a new UserService. rdb may be nil, in which case
// logout does not revoke tokens.
func NewUserService(users repository.UserRepository, profiles repository.ProfileRepository, rdb *redis.Client, jwtSecret string) *UserService {
	return &UserService{
		users:      users,
		profiles:   profiles,
		rdb:        rdb,
		jwtSecret:  jwtSecret,
		bcryptCost: bcrypt.DefaultCost,
		now:        utcNow,
	}
}

// SetPasswordCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) SetPasswordCost(cost int) {
	s.bcryptCost = cost
}

// Signup creates an account with an empty, open-to-work profile and signs the
// user in.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	email, err := validation.NormalizeEmail(in.Email)
	if err != nil {
		return nil, models.NewFieldValidationError(err.Error(), map[string]string{"email": err.Error()})
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewFieldValidationError(err.Error(), map[string]string{"password": err.Error()})
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("An account with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hashed),
		Name:     strings.TrimSpace(in.Name),
	}
	profile := &models.Profile{OpenToWork: true, Skills: []string{}}
	if err := s.users.Create(ctx, user, profile); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	invalid := models.NewUnauthenticatedError("Invalid credentials")

	email, err := validation.NormalizeEmail(in.Email)
	if err != nil || in.Password == "" {
		return nil, invalid
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, invalid
	}

	if profile, err := s.profiles.GetByUserID(ctx, user.ID); err == nil {
		user.Profile = profile
	}
	return s.issue(user)
}

// Logout revokes the token described by claims until its natural expiry.
func (s *UserService) Logout(ctx context.Context, claims *middleware.TokenClaims) error {
	if err := middleware.RevokeToken(ctx, s.rdb, claims, s.now()); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Me returns the user with their profile attached.
func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		user.Profile = profile
	case !models.IsNotFound(err):
		return nil, err
	}
	return user, nil
}

// GetProfile returns the profile of userID.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if models.IsNotFound(err) {
		return &models.Profile{UserID: userID, Skills: []string{}}, nil
	}
	return profile, err
}

// UpdateProfile replaces the caller's profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.Profile, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !models.IsNotFound(err) {
			return nil, err
		}
		profile = &models.Profile{UserID: userID, OpenToWork: true}
	}

	profile.Headline = strings.TrimSpace(in.Headline)
	profile.Bio = in.Bio
	profile.Location = strings.TrimSpace(in.Location)
	profile.AvatarURL = in.AvatarURL
	profile.Skills = normalizeSkills(in.Skills)
	profile.YearsOfExperience = in.YearsOfExperience
	profile.PreviousCompany = strings.TrimSpace(in.PreviousCompany)
	profile.LaidOffAt = in.LaidOffAt
	if in.OpenToWork != nil {
		profile.OpenToWork = *in.OpenToWork
	}
	profile.LinkedInURL = in.LinkedInURL
	profile.UpdatedAt = s.now()

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, claims, err := middleware.IssueToken(s.jwtSecret, user.ID, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

// normalizeSkills trims entries and drops case-insensitive duplicates,
// keeping the first spelling.
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		key := strings.ToLower(skill)
		if _, dup := seen[key]; dup || skill == "" {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}
