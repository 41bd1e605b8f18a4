package server

import (
	"rehire/internal/models"
	"rehire/internal/service"

	"github.com/gofiber/fiber/v2"
)

type sendMessageRequest struct {
	ReceiverID  uint                `json:"receiverId"`
	Content     string              `json:"content"`
	Attachments []models.Attachment `json:"attachments"`
}

type editMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage handles POST /api/messages
// @Summary Send a direct message
// @Description Stores the message and updates the pair's conversation
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body sendMessageRequest true "Message"
// @Success 201 {object} models.Response{data=models.Message}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}

	var req sendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.ReceiverID == 0 {
		msg := "receiverId is required"
		return respondError(c, models.NewFieldValidationError(msg, map[string]string{"receiverId": msg}))
	}

	message, err := s.messaging.SendMessage(c.UserContext(), service.SendInput{
		SenderID:    userID,
		ReceiverID:  req.ReceiverID,
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, message)
}

// UnreadCount handles GET /api/messages/unread-count
// @Summary Unread message badge count
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=object{count=int}}
// @Router /messages/unread-count [get]
func (s *Server) UnreadCount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}

	count, err := s.messaging.UnreadBadgeCount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"count": count})
}

// MarkMessageRead handles PUT /api/messages/:id/read
// @Summary Mark a message read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} models.Response{data=models.Message}
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /messages/{id}/read [put]
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	messageID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	message, err := s.messaging.MarkRead(c.UserContext(), messageID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, message)
}

// EditMessage handles PUT /api/messages/:id
// @Summary Edit a sent message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param request body editMessageRequest true "New content"
// @Success 200 {object} models.Response{data=models.Message}
// @Failure 400 {object} models.Response
// @Failure 403 {object} models.Response
// @Router /messages/{id} [put]
func (s *Server) EditMessage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	messageID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req editMessageRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	message, err := s.messaging.EditMessage(c.UserContext(), messageID, userID, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, message)
}

// DeleteMessage handles DELETE /api/messages/:id/message. The message is
// hidden for the caller only.
// @Summary Delete a message for the caller
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response
// @Router /messages/{id}/message [delete]
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	messageID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.messaging.DeleteMessage(c.UserContext(), messageID, userID); err != nil {
		return respondError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Message deleted")
}
