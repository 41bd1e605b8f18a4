package server

import (
	"rehire/internal/models"
	"rehire/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// ListConversations handles GET /api/conversations?archived=
// @Summary List the caller's conversations
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param archived query bool false "Filter by archived state"
// @Success 200 {object} models.Response{data=[]models.ConversationView}
// @Router /conversations [get]
func (s *Server) ListConversations(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	archived, err := parseOptionalBool(c, "archived")
	if err != nil {
		return nil
	}

	views, err := s.messaging.ListConversations(c.UserContext(), userID, repository.ConversationFilter{Archived: archived})
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, views)
}

// OpenThread handles GET /api/conversation/:userId
// @Summary Open the thread with a user
// @Description Creates the conversation if needed and marks incoming messages read
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} models.Response{data=models.Thread}
// @Failure 404 {object} models.Response
// @Router /conversation/{userId} [get]
func (s *Server) OpenThread(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	otherID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	thread, err := s.messaging.OpenThread(c.UserContext(), userID, otherID)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, thread)
}

// ArchiveConversation handles PATCH /api/conversations/:convId/archive
// @Summary Archive a conversation for the caller
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param convId path int true "Conversation ID"
// @Success 200 {object} models.Response{data=models.Conversation}
// @Failure 403 {object} models.Response
// @Router /conversations/{convId}/archive [patch]
func (s *Server) ArchiveConversation(c *fiber.Ctx) error {
	return s.setArchived(c, true)
}

// UnarchiveConversation handles PATCH /api/conversations/:convId/unarchive
// @Summary Unarchive a conversation for the caller
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param convId path int true "Conversation ID"
// @Success 200 {object} models.Response{data=models.Conversation}
// @Failure 403 {object} models.Response
// @Router /conversations/{convId}/unarchive [patch]
func (s *Server) UnarchiveConversation(c *fiber.Ctx) error {
	return s.setArchived(c, false)
}

func (s *Server) setArchived(c *fiber.Ctx, archived bool) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	convID, err := parseID(c, "convId")
	if err != nil {
		return nil
	}

	conv, err := s.messaging.SetArchived(c.UserContext(), convID, userID, archived)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, conv)
}

// DeleteConversation handles DELETE /api/conversations/:convId. The
// conversation disappears from the caller's list only.
// @Summary Delete a conversation for the caller
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param convId path int true "Conversation ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response
// @Router /conversations/{convId} [delete]
func (s *Server) DeleteConversation(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	convID, err := parseID(c, "convId")
	if err != nil {
		return nil
	}

	if err := s.messaging.DeleteConversation(c.UserContext(), convID, userID); err != nil {
		return respondError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Conversation deleted")
}
