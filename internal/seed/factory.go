// Package seed creates demo data for development databases. It is not used
// by the API server.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rehire/internal/models"
	"rehire/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

var (
	skillPool = []string{
		"Go", "Python", "TypeScript", "React", "Kubernetes", "Terraform", "AWS", "GCP",
		"Postgres", "Redis", "Kafka", "Rust", "Java", "Swift", "Figma", "SQL",
		"Machine Learning", "Product Management", "Technical Writing", "SRE",
	}

	locations = []string{
		"Berlin", "London", "Lisbon", "Toronto", "New York", "San Francisco",
		"Austin", "Amsterdam", "Warsaw", "Bangalore", "Remote",
	}

	employmentTypes = []models.EmploymentType{
		models.EmploymentFullTime, models.EmploymentFullTime, models.EmploymentFullTime,
		models.EmploymentPartTime, models.EmploymentContract, models.EmploymentInternship,
	}
)

// Factory builds and persists individual entities with fake content.
type Factory struct {
	faker     *gofakeit.Faker
	users     repository.UserRepository
	hiring    repository.HiringPostRepository
	referrals repository.ReferralRepository
	password  string
	seq       int
}

// NewFactory hashes DefaultPassword once with cost and seeds the faker.
// A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, cost int) (*Factory, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		faker:     gofakeit.New(seed),
		users:     repository.NewUserRepository(db),
		hiring:    repository.NewHiringPostRepository(db),
		referrals: repository.NewReferralRepository(db),
		password:  string(hashed),
	}, nil
}

// CreateUser persists a user with a filled-in profile.
func (f *Factory) CreateUser(ctx context.Context, openToWork bool) (*models.User, error) {
	f.seq++
	first, last := f.faker.FirstName(), f.faker.LastName()
	laidOff := f.faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())

	user := &models.User{
		Email:    fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), f.seq),
		Password: f.password,
		Name:     first + " " + last,
	}
	profile := &models.Profile{
		Headline:          fmt.Sprintf("%s, formerly at %s", f.faker.JobTitle(), f.faker.Company()),
		Bio:               f.faker.Paragraph(1, 3, 12, " "),
		Location:          f.faker.RandomString(locations),
		AvatarURL:         fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Skills:            f.skills(3, 6),
		YearsOfExperience: f.faker.IntRange(1, 25),
		PreviousCompany:   f.faker.Company(),
		LaidOffAt:         &laidOff,
		OpenToWork:        openToWork,
	}
	if err := f.users.Create(ctx, user, profile); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateHiringPost persists an active hiring post by author.
func (f *Factory) CreateHiringPost(ctx context.Context, author *models.User) (*models.HiringPost, error) {
	salaryMin := f.faker.IntRange(50, 150) * 1000
	salaryMax := salaryMin + f.faker.IntRange(10, 60)*1000

	post := &models.HiringPost{
		AuthorID:       author.ID,
		Company:        f.faker.Company(),
		Title:          f.faker.JobTitle(),
		Description:    f.faker.Paragraph(2, 4, 14, "\n\n"),
		Location:       f.faker.RandomString(locations),
		Remote:         f.faker.Bool(),
		EmploymentType: employmentTypes[f.faker.IntRange(0, len(employmentTypes)-1)],
		SalaryMin:      &salaryMin,
		SalaryMax:      &salaryMax,
		Skills:         f.skills(2, 5),
		IsActive:       true,
	}
	if err := f.hiring.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateReferral persists an open referral by referrer. About a third of
// referrals never expire.
func (f *Factory) CreateReferral(ctx context.Context, referrer *models.User) (*models.Referral, error) {
	referral := &models.Referral{
		ReferrerID:  referrer.ID,
		Company:     f.faker.Company(),
		Role:        f.faker.JobTitle(),
		Description: f.faker.Sentence(16),
		Slots:       f.faker.IntRange(1, 5),
		IsActive:    true,
	}
	if f.faker.IntRange(0, 2) > 0 {
		expires := time.Now().AddDate(0, 0, f.faker.IntRange(7, 90))
		referral.ExpiresAt = &expires
	}
	if err := f.referrals.Create(ctx, referral); err != nil {
		return nil, err
	}
	return referral, nil
}

// MessageContent returns a plausible chat line.
func (f *Factory) MessageContent() string {
	switch f.faker.IntRange(0, 3) {
	case 0:
		return fmt.Sprintf("Hi! I saw you worked with %s. Are you open to a quick chat?", f.faker.RandomString(skillPool))
	case 1:
		return fmt.Sprintf("We are hiring a %s, happy to refer you.", f.faker.JobTitle())
	case 2:
		return f.faker.Question()
	default:
		return f.faker.Sentence(f.faker.IntRange(4, 18))
	}
}

// skills picks between lo and hi distinct skills.
func (f *Factory) skills(lo, hi int) []string {
	n := f.faker.IntRange(lo, hi)
	picked := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(picked) < n {
		s := f.faker.RandomString(skillPool)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		picked = append(picked, s)
	}
	return picked
}

// Float64 exposes the faker's source for ratio decisions.
func (f *Factory) Float64() float64 {
	return f.faker.Float64Range(0, 1)
}

// Intn returns a value in [0, n).
func (f *Factory) Intn(n int) int {
	return f.faker.IntRange(0, n-1)
}
