package service

import (
	"context"
	"time"

	"rehire/internal/models"
	"rehire/internal/observability"
	"rehire/internal/repository"
)

// AnalyticsService exposes board-wide statistics.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	now       func() time.Time
}

// NewAnalyticsService returns a new AnalyticsService.
func NewAnalyticsService(analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, now: utcNow}
}

// Summary computes the overview at the current time.
func (s *AnalyticsService) Summary(ctx context.Context) (summary *models.AnalyticsSummary, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AnalyticsService", "Summary")
	defer func() { observability.EndSpan(span, err) }()

	return s.analytics.Summary(ctx, s.now().UTC())
}
