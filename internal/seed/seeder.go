package seed

import (
	"context"
	"fmt"
	"log/slog"

	"rehire/internal/middleware"
	"rehire/internal/models"
	"rehire/internal/repository"
	"rehire/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a Seeder.
type Options struct {
	// Seed fixes the fake data source. Zero picks a random seed.
	Seed int64
	// PasswordCost is the bcrypt cost of the shared password. Zero means
	// bcrypt.DefaultCost.
	PasswordCost int
}

// Report counts what a run created.
type Report struct {
	Users         int
	HiringPosts   int
	Referrals     int
	Conversations int
	Messages      int
}

// Seeder populates a database according to a Preset. Messages go through the
// messaging service so conversation counters match what the API would build.
type Seeder struct {
	db        *gorm.DB
	factory   *Factory
	messaging *service.MessagingService
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	cost := opts.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	factory, err := NewFactory(db, opts.Seed, cost)
	if err != nil {
		return nil, err
	}

	messageRepo := repository.NewMessageRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	messaging := service.NewMessagingService(
		repository.NewUserRepository(db),
		profileRepo,
		service.NewMessageStore(messageRepo),
		service.NewConversationDirectory(repository.NewConversationRepository(db), messageRepo, profileRepo),
	)
	return &Seeder{db: db, factory: factory, messaging: messaging}, nil
}

// clearOrder lists tables children first.
var clearOrder = []string{
	"message_deletions",
	"conversation_participants",
	"conversations",
	"messages",
	"referrals",
	"hiring_posts",
	"profiles",
	"users",
}

// Clear removes every row the seeder can create.
func (s *Seeder) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range clearOrder {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Run creates the users, jobs and conversations described by p.
func (s *Seeder) Run(ctx context.Context, p Preset) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	report := &Report{}

	users := make([]*models.User, 0, p.Users)
	for i := 0; i < p.Users; i++ {
		u, err := s.factory.CreateUser(ctx, s.factory.Float64() < p.OpenToWorkRatio)
		if err != nil {
			return report, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	report.Users = len(users)
	middleware.Logger.Info("seeded users", slog.Int("count", report.Users))

	for i := 0; i < p.HiringPosts; i++ {
		if _, err := s.factory.CreateHiringPost(ctx, s.pick(users)); err != nil {
			return report, fmt.Errorf("create hiring post: %w", err)
		}
		report.HiringPosts++
	}

	for i := 0; i < p.Referrals; i++ {
		if _, err := s.factory.CreateReferral(ctx, s.pick(users)); err != nil {
			return report, fmt.Errorf("create referral: %w", err)
		}
		report.Referrals++
	}
	middleware.Logger.Info("seeded jobs",
		slog.Int("hiring_posts", report.HiringPosts),
		slog.Int("referrals", report.Referrals),
	)

	for _, pair := range s.pairs(users, p.Conversations) {
		for m := 0; m < p.MessagesPerConversation; m++ {
			from, to := pair[0], pair[1]
			if s.factory.Intn(2) == 1 {
				from, to = to, from
			}
			_, err := s.messaging.SendMessage(ctx, service.SendInput{
				SenderID:   from.ID,
				ReceiverID: to.ID,
				Content:    s.factory.MessageContent(),
			})
			if err != nil {
				return report, fmt.Errorf("send message: %w", err)
			}
			report.Messages++
		}
		report.Conversations++
	}
	middleware.Logger.Info("seeded conversations",
		slog.Int("conversations", report.Conversations),
		slog.Int("messages", report.Messages),
	)

	return report, nil
}

func (s *Seeder) pick(users []*models.User) *models.User {
	return users[s.factory.Intn(len(users))]
}

// pairs returns n distinct unordered user pairs.
func (s *Seeder) pairs(users []*models.User, n int) [][2]*models.User {
	out := make([][2]*models.User, 0, n)
	seen := make(map[[2]uint]struct{}, n)
	for len(out) < n {
		a, b := s.pick(users), s.pick(users)
		if a.ID == b.ID {
			continue
		}
		low, high := models.CanonicalPair(a.ID, b.ID)
		if _, dup := seen[[2]uint{low, high}]; dup {
			continue
		}
		seen[[2]uint{low, high}] = struct{}{}
		out = append(out, [2]*models.User{a, b})
	}
	return out
}
