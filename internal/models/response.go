package models

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every API response is wrapped in.
type Response struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// StatusForError maps an error onto its HTTP status code.
func StatusForError(err error) int {
	switch ErrorCode(err) {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes err as a failed envelope. Causes of internal errors
// never reach the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	status := StatusForError(err)
	resp := Response{Success: false}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		resp.Message = appErr.Message
		resp.Errors = appErr.Fields
	} else {
		resp.Message = "Internal server error"
	}

	return c.Status(status).JSON(resp)
}

// RespondWithData writes a successful envelope.
func RespondWithData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Response{Success: true, Data: data})
}

// RespondWithMessage writes a successful envelope that carries only a message.
func RespondWithMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: true, Message: message})
}
