package server

import (
	"rehire/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AnalyticsSummary handles GET /api/analytics/summary
func (s *Server) AnalyticsSummary(c *fiber.Ctx) error {
	summary, err := s.analytics.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, summary)
}
