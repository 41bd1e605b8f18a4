package server

import (
	"rehire/internal/models"
	"rehire/internal/repository"
	"rehire/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListReferrals handles GET /api/referrals
func (s *Server) ListReferrals(c *fiber.Ctx) error {
	active, err := parseOptionalBool(c, "active")
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	referrals, total, err := s.referrals.Search(c.UserContext(), repository.ReferralFilter{
		Company:    c.Query("company"),
		ReferrerID: uint(c.QueryInt("referrerId", 0)),
		Active:     active,
		Page:       page,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, listResponse{
		Items: referrals, Total: total, Limit: page.Limit, Offset: page.Offset,
	})
}

// GetReferral handles GET /api/referrals/:id
func (s *Server) GetReferral(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	referral, err := s.referrals.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, referral)
}

// CreateReferral handles POST /api/referrals
func (s *Server) CreateReferral(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	var req service.ReferralInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	referral, err := s.referrals.Create(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, referral)
}

// UpdateReferral handles PUT /api/referrals/:id
func (s *Server) UpdateReferral(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.ReferralInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	referral, err := s.referrals.Update(c.UserContext(), id, userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, referral)
}

// CloseReferral handles PATCH /api/referrals/:id/close
func (s *Server) CloseReferral(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	referral, err := s.referrals.Close(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, referral)
}

// DeleteReferral handles DELETE /api/referrals/:id
func (s *Server) DeleteReferral(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.referrals.Delete(c.UserContext(), id, userID); err != nil {
		return respondError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Referral deleted")
}
