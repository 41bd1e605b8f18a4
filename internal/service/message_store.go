// Package service provides application business logic (messaging, profiles, jobs).
package service

import (
	"context"
	"time"

	"rehire/internal/models"
	"rehire/internal/repository"
	"rehire/internal/validation"
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// MessageStore owns the lifecycle of individual messages.
type MessageStore struct {
	messages repository.MessageRepository
	now      func() time.Time
}

// SendInput is the input for sending a message.
type SendInput struct {
	SenderID    uint
	ReceiverID  uint
	Content     string
	Attachments []models.Attachment
}

// messagePayload carries the validated parts of a message body.
type messagePayload struct {
	Content     string              `json:"content" validate:"notblank,max=5000"`
	Attachments []models.Attachment `json:"attachments" validate:"max=10,dive"`
}

// NewMessageStore returns a new MessageStore.
func NewMessageStore(messages repository.MessageRepository) *MessageStore {
	return &MessageStore{messages: messages, now: utcNow}
}

// SetClock replaces the time source. Used by tests around the edit window.
func (s *MessageStore) SetClock(now func() time.Time) {
	s.now = now
}

// Send persists a new unread, unedited message.
func (s *MessageStore) Send(ctx context.Context, in SendInput) (*models.Message, error) {
	if in.SenderID == in.ReceiverID {
		return nil, models.NewValidationError("Cannot send a message to yourself")
	}
	if err := validation.Struct(&messagePayload{Content: in.Content, Attachments: in.Attachments}); err != nil {
		return nil, err
	}

	attachments := in.Attachments
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	msg := &models.Message{
		SenderID:    in.SenderID,
		ReceiverID:  in.ReceiverID,
		Content:     in.Content,
		Attachments: attachments,
		CreatedAt:   s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	msg.DeletedFor = models.UserIDSet{}
	return msg, nil
}

// FetchThread returns the latest limit messages between viewerID and otherID
// that viewerID has not deleted, oldest first.
func (s *MessageStore) FetchThread(ctx context.Context, viewerID, otherID uint, limit int) ([]*models.Message, error) {
	return s.messages.Thread(ctx, viewerID, otherID, limit)
}

// MarkThreadRead marks every unread message from otherID to readerID as read.
func (s *MessageStore) MarkThreadRead(ctx context.Context, readerID, otherID uint) (int64, error) {
	return s.markThreadReadAt(ctx, readerID, otherID, s.now())
}

func (s *MessageStore) markThreadReadAt(ctx context.Context, readerID, otherID uint, at time.Time) (int64, error) {
	return s.messages.MarkThreadRead(ctx, readerID, otherID, at)
}

// Edit replaces the content of a message. Edits made after the grace window
// carry a visible edited tag, and the tag is never removed.
func (s *MessageStore) Edit(ctx context.Context, messageID, editorID uint, content string) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != editorID {
		return nil, models.NewForbiddenError("Only the sender can edit this message")
	}
	if err := validation.Struct(&messagePayload{Content: content}); err != nil {
		return nil, err
	}

	now := s.now()
	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = &now
	msg.ShowEditedTag = msg.ShowEditedTag || now.Sub(msg.CreatedAt) > models.EditGraceWindow

	if err := s.messages.UpdateContent(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SoftDeleteForUser hides the message from userID's view only.
func (s *MessageStore) SoftDeleteForUser(ctx context.Context, messageID, userID uint) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !msg.IsParticipant(userID) {
		return nil, models.NewForbiddenError("You are not a participant in this conversation")
	}
	if msg.DeletedFor.Has(userID) {
		return msg, nil
	}

	if err := s.messages.AddDeletion(ctx, messageID, userID); err != nil {
		return nil, err
	}
	msg.DeletedFor.Add(userID)
	return msg, nil
}

// MarkRead sets the read receipt of a single message. Only the receiver may
// do this, and an existing readAt is kept.
func (s *MessageStore) MarkRead(ctx context.Context, messageID, readerID uint) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.ReceiverID != readerID {
		return nil, models.NewForbiddenError("Only the receiver can mark this message as read")
	}
	if msg.IsRead {
		return msg, nil
	}

	now := s.now()
	if err := s.messages.MarkRead(ctx, messageID, now); err != nil {
		return nil, err
	}
	msg.IsRead = true
	msg.ReadAt = &now
	return msg, nil
}

// CountUnread returns the number of unread messages addressed to userID that
// userID has not deleted.
func (s *MessageStore) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.messages.CountUnread(ctx, userID)
}
