package service

import (
	"context"

	"rehire/internal/models"
	"rehire/internal/repository"
)

// ConversationDirectory maintains one conversation record per pair of users
// along with per-participant unread, archive and delete state.
type ConversationDirectory struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	profiles      repository.ProfileRepository
}

// NewConversationDirectory returns a new ConversationDirectory.
func NewConversationDirectory(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
) *ConversationDirectory {
	return &ConversationDirectory{
		conversations: conversations,
		messages:      messages,
		profiles:      profiles,
	}
}

// FindOrCreate returns the single conversation between a and b.
func (d *ConversationDirectory) FindOrCreate(ctx context.Context, a, b uint) (*models.Conversation, error) {
	if a == b {
		return nil, models.NewValidationError("A conversation needs two different users")
	}
	return d.conversations.FindOrCreate(ctx, a, b)
}

// RecordOutgoing moves the conversation's last message to msg unless a newer
// one is already recorded, and bumps the receiver's unread counter. conv is
// updated in place.
func (d *ConversationDirectory) RecordOutgoing(ctx context.Context, conv *models.Conversation, msg *models.Message) error {
	if err := d.conversations.RecordOutgoing(ctx, conv.ID, msg.ReceiverID, msg); err != nil {
		return err
	}

	if newerThanLast(conv, msg) {
		conv.LastMessageID = &msg.ID
		conv.LastMessage = msg
		at := msg.CreatedAt
		conv.LastMessageAt = &at
	}
	if conv.UnreadCount == nil {
		conv.UnreadCount = models.UnreadCounts{}
	}
	conv.UnreadCount[msg.ReceiverID]++
	return nil
}

// ResetUnread zeroes userID's unread counter. conv is updated in place.
func (d *ConversationDirectory) ResetUnread(ctx context.Context, conv *models.Conversation, userID uint) error {
	if err := d.conversations.ResetUnread(ctx, conv.ID, userID); err != nil {
		return err
	}
	delete(conv.UnreadCount, userID)
	return nil
}

// ListForUser returns userID's conversations, most recently active first,
// annotated with the counterpart's profile and the caller's view state.
func (d *ConversationDirectory) ListForUser(ctx context.Context, userID uint, filter repository.ConversationFilter) ([]*models.ConversationView, error) {
	conversations, err := d.conversations.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	others := make([]uint, 0, len(conversations))
	for _, c := range conversations {
		others = append(others, c.OtherParticipant(userID))
	}
	summaries, err := d.profiles.Summaries(ctx, others)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ConversationView, 0, len(conversations))
	for _, c := range conversations {
		// The newest message was deleted by userID; show the one before it.
		if c.LastMessageID != nil && c.LastMessage == nil {
			if err := d.ScopeLastMessage(ctx, c, userID); err != nil {
				return nil, err
			}
		}

		other := c.OtherParticipant(userID)
		summary, ok := summaries[other]
		if !ok {
			summary = &models.ProfileSummary{UserID: other}
		}
		views = append(views, &models.ConversationView{
			ID:            c.ID,
			OtherUser:     summary,
			LastMessage:   c.LastMessage,
			LastMessageAt: c.LastMessageAt,
			UnreadCount:   c.UnreadCount.Get(userID),
			IsArchived:    c.ArchivedBy.Has(userID),
		})
	}
	return views, nil
}

// SetArchived archives or unarchives the conversation for userID only.
func (d *ConversationDirectory) SetArchived(ctx context.Context, conversationID, userID uint, archived bool) (*models.Conversation, error) {
	if _, err := d.participantConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if err := d.conversations.SetArchived(ctx, conversationID, userID, archived); err != nil {
		return nil, err
	}
	conv, err := d.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := d.ScopeLastMessage(ctx, conv, userID); err != nil {
		return nil, err
	}
	return conv, nil
}

// ScopeLastMessage replaces conv's last message with the newest one viewerID
// has not deleted, or clears it when none is left. LastMessageAt keeps the
// conversation's activity time.
func (d *ConversationDirectory) ScopeLastMessage(ctx context.Context, conv *models.Conversation, viewerID uint) error {
	if conv.LastMessageID == nil {
		return nil
	}
	latest, err := d.messages.Thread(ctx, viewerID, conv.OtherParticipant(viewerID), 1)
	if err != nil {
		return err
	}
	conv.LastMessageID = nil
	conv.LastMessage = nil
	if len(latest) > 0 {
		conv.LastMessageID = &latest[0].ID
		conv.LastMessage = latest[0]
	}
	return nil
}

// SoftDeleteForUser hides the conversation from userID's list. The other
// participant keeps it.
func (d *ConversationDirectory) SoftDeleteForUser(ctx context.Context, conversationID, userID uint) error {
	conv, err := d.participantConversation(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if conv.DeletedBy.Has(userID) {
		return nil
	}
	return d.conversations.SetDeleted(ctx, conversationID, userID)
}

// RecomputeUnread re-derives both participants' counters from the message table.
func (d *ConversationDirectory) RecomputeUnread(ctx context.Context, conv *models.Conversation) error {
	for _, userID := range conv.Participants() {
		if err := d.conversations.RecomputeUnread(ctx, conv.ID, userID, conv.OtherParticipant(userID)); err != nil {
			return err
		}
	}
	return nil
}

func newerThanLast(conv *models.Conversation, msg *models.Message) bool {
	if conv.LastMessageAt == nil {
		return true
	}
	if !msg.CreatedAt.Equal(*conv.LastMessageAt) {
		return msg.CreatedAt.After(*conv.LastMessageAt)
	}
	return conv.LastMessageID == nil || *conv.LastMessageID < msg.ID
}

func (d *ConversationDirectory) participantConversation(ctx context.Context, conversationID, userID uint) (*models.Conversation, error) {
	conv, err := d.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, models.NewForbiddenError("You are not a participant in this conversation")
	}
	return conv, nil
}
