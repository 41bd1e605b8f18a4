// Package maintenance runs scheduled housekeeping over the messaging tables.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rehire/internal/middleware"
	"rehire/internal/observability"
	"rehire/internal/repository"
	"rehire/internal/service"

	"github.com/adhocore/gronx"
)

// DefaultCron runs the sweep daily at 03:00 UTC.
const DefaultCron = "0 3 * * *"

const defaultBatch = 500

// Report summarizes one sweep.
type Report struct {
	MessagesReclaimed  int `json:"messages_reclaimed"`
	PointersRepaired   int `json:"pointers_repaired"`
	CountersRecomputed int `json:"counters_recomputed"`
}

// Sweeper reclaims messages deleted by both participants and re-derives
// per-conversation unread counters from the message table.
type Sweeper struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	directory     *service.ConversationDirectory
	cron          string
	batch         int
	now           func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

// utcNow keeps cron evaluation independent of the host zone.
func utcNow() time.Time {
	return time.Now().UTC()
}

// NewSweeper validates cronExpr and returns a Sweeper. An empty expression
// selects DefaultCron.
func NewSweeper(
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
	directory *service.ConversationDirectory,
	cronExpr string,
) (*Sweeper, error) {
	if cronExpr == "" {
		cronExpr = DefaultCron
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid maintenance cron expression: %q", cronExpr)
	}
	return &Sweeper{
		messages:      messages,
		conversations: conversations,
		directory:     directory,
		cron:          cronExpr,
		batch:         defaultBatch,
		now:           utcNow,
	}, nil
}

// Start runs the scheduler in a goroutine until ctx is cancelled or the
// returned cancel func is called.
func (s *Sweeper) Start(ctx context.Context) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go s.schedule(ctx)
	middleware.Logger.Info("maintenance sweeper started", slog.String("cron", s.cron))
	return cancel
}

func (s *Sweeper) schedule(ctx context.Context) {
	for {
		now := s.now().UTC()
		next, err := gronx.NextTickAfter(s.cron, now, false)
		if err != nil {
			middleware.Logger.Error("maintenance next tick failed", slog.String("cron", s.cron), slog.String("error", err.Error()))
			next = now.Add(time.Minute)
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			middleware.Logger.Info("maintenance sweeper stopping")
			return
		case <-timer.C:
		}

		if _, err := s.RunOnce(ctx); err != nil {
			middleware.Logger.Error("maintenance run failed", slog.String("error", err.Error()))
		}
	}
}

// RunOnce performs a full sweep. Concurrent calls are serialized.
func (s *Sweeper) RunOnce(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	report, err := s.sweep(ctx, s.lastRun)
	if err != nil {
		observability.SweeperRuns.WithLabelValues("error").Inc()
		return report, err
	}
	s.lastRun = started

	observability.SweeperRuns.WithLabelValues("success").Inc()
	observability.SweeperReclaimed.WithLabelValues("messages").Add(float64(report.MessagesReclaimed))
	observability.SweeperReclaimed.WithLabelValues("pointers").Add(float64(report.PointersRepaired))
	observability.SweeperReclaimed.WithLabelValues("counters").Add(float64(report.CountersRecomputed))
	middleware.Logger.InfoContext(ctx, "maintenance run complete",
		slog.Int("messages_reclaimed", report.MessagesReclaimed),
		slog.Int("pointers_repaired", report.PointersRepaired),
		slog.Int("counters_recomputed", report.CountersRecomputed),
		slog.Duration("elapsed", s.now().Sub(started)),
	)
	return report, nil
}

func (s *Sweeper) sweep(ctx context.Context, since time.Time) (*Report, error) {
	report := &Report{}

	for {
		reclaimed, err := s.messages.ReclaimFullyDeleted(ctx, s.batch)
		if err != nil {
			return report, fmt.Errorf("reclaim messages: %w", err)
		}
		report.MessagesReclaimed += len(reclaimed)
		if len(reclaimed) < s.batch {
			break
		}
	}

	for {
		orphaned, err := s.conversations.ListWithoutLastMessage(ctx, s.batch)
		if err != nil {
			return report, fmt.Errorf("list orphaned conversations: %w", err)
		}
		for _, conv := range orphaned {
			latest, err := s.messages.LatestBetween(ctx, conv.ParticipantLow, conv.ParticipantHigh)
			if err != nil {
				return report, fmt.Errorf("latest message of conversation %d: %w", conv.ID, err)
			}
			if err := s.conversations.SetLastMessage(ctx, conv.ID, latest); err != nil {
				return report, fmt.Errorf("repoint conversation %d: %w", conv.ID, err)
			}
			report.PointersRepaired++
		}
		if len(orphaned) < s.batch {
			break
		}
	}

	active, err := s.conversations.ListActiveSince(ctx, since)
	if err != nil {
		return report, fmt.Errorf("list active conversations: %w", err)
	}
	for _, conv := range active {
		if err := s.directory.RecomputeUnread(ctx, conv); err != nil {
			return report, fmt.Errorf("recompute conversation %d: %w", conv.ID, err)
		}
		report.CountersRecomputed++
	}
	return report, nil
}
