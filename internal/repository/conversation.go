package repository

import (
	"context"
	"time"

	"rehire/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationFilter narrows ListForUser.
type ConversationFilter struct {
	// Archived, when set, keeps only conversations whose archived state for
	// the user matches.
	Archived *bool
}

// ConversationRepository defines persistence operations for the conversation directory.
type ConversationRepository interface {
	FindOrCreate(ctx context.Context, a, b uint) (*models.Conversation, error)
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	RecordOutgoing(ctx context.Context, conversationID, receiverID uint, msg *models.Message) error
	ResetUnread(ctx context.Context, conversationID, userID uint) error
	ListForUser(ctx context.Context, userID uint, filter ConversationFilter) ([]*models.Conversation, error)
	SetArchived(ctx context.Context, conversationID, userID uint, archived bool) error
	SetDeleted(ctx context.Context, conversationID, userID uint) error
	SetUnread(ctx context.Context, conversationID, userID uint, count int64) error
	RecomputeUnread(ctx context.Context, conversationID, userID, senderID uint) error
	SetLastMessage(ctx context.Context, conversationID uint, msg *models.Message) error
	ListWithoutLastMessage(ctx context.Context, limit int) ([]*models.Conversation, error)
	ListActiveSince(ctx context.Context, since time.Time) ([]*models.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository returns a new ConversationRepository implementation.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindOrCreate returns the conversation of the unordered pair, creating it and
// both participant rows if needed. Concurrent callers converge on one row
// through the unique pair index.
func (r *conversationRepository) FindOrCreate(ctx context.Context, a, b uint) (*models.Conversation, error) {
	low, high := models.CanonicalPair(a, b)
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_low"}, {Name: "participant_high"}},
		DoNothing: true,
	}).Create(&models.Conversation{ParticipantLow: low, ParticipantHigh: high}).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var conv models.Conversation
	if err := db.Where("participant_low = ? AND participant_high = ?", low, high).First(&conv).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	participants := []models.ConversationParticipant{
		{ConversationID: conv.ID, UserID: low},
		{ConversationID: conv.ID, UserID: high},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return r.GetByID(ctx, conv.ID)
}

func (r *conversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).Preload("LastMessage").First(&conv, id).Error; err != nil {
		return nil, lookupError(err, "Conversation", id)
	}
	if err := r.attachParticipants(ctx, []*models.Conversation{&conv}); err != nil {
		return nil, err
	}
	return &conv, nil
}

// newerThanLastMessage matches a conversation whose pointer is older than the
// candidate message, ordered by created_at then id.
const newerThanLastMessage = `id = ? AND (last_message_at IS NULL OR last_message_at < ?
	OR (last_message_at = ? AND (last_message_id IS NULL OR last_message_id < ?)))`

// RecordOutgoing points the conversation at msg unless a newer message already
// landed, and bumps the receiver's unread counter with a single upsert.
func (r *conversationRepository) RecordOutgoing(ctx context.Context, conversationID, receiverID uint, msg *models.Message) error {
	db := r.db.WithContext(ctx)

	err := db.Model(&models.Conversation{}).
		Where(newerThanLastMessage, conversationID, msg.CreatedAt, msg.CreatedAt, msg.ID).
		Updates(map[string]interface{}{
			"last_message_id": msg.ID,
			"last_message_at": msg.CreatedAt,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"unread_count": gorm.Expr("conversation_participants.unread_count + 1"),
			"updated_at":   msg.CreatedAt,
		}),
	}).Create(&models.ConversationParticipant{
		ConversationID: conversationID,
		UserID:         receiverID,
		UnreadCount:    1,
	}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *conversationRepository) ResetUnread(ctx context.Context, conversationID, userID uint) error {
	return r.SetUnread(ctx, conversationID, userID, 0)
}

// SetUnread overwrites a participant's counter.
func (r *conversationRepository) SetUnread(ctx context.Context, conversationID, userID uint, count int64) error {
	err := r.db.WithContext(ctx).Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("unread_count", count).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RecomputeUnread sets userID's counter to the number of unread messages
// senderID sent them. Count and write happen in one statement.
func (r *conversationRepository) RecomputeUnread(ctx context.Context, conversationID, userID, senderID uint) error {
	unread := r.db.Model(&models.Message{}).
		Select("COUNT(*)").
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, userID, false)

	err := r.db.WithContext(ctx).Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("unread_count", unread).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// SetLastMessage points the conversation at msg, or clears the pointer when
// msg is nil. Unlike RecordOutgoing it overwrites unconditionally.
func (r *conversationRepository) SetLastMessage(ctx context.Context, conversationID uint, msg *models.Message) error {
	updates := map[string]interface{}{"last_message_id": nil, "last_message_at": nil}
	if msg != nil {
		updates["last_message_id"] = msg.ID
		updates["last_message_at"] = msg.CreatedAt
	}
	err := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(updates).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListForUser returns the conversations userID has not deleted, most recently
// active first. Conversations without messages sort last. LastMessage is left
// nil when userID deleted it.
func (r *conversationRepository) ListForUser(ctx context.Context, userID uint, filter ConversationFilter) ([]*models.Conversation, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ? AND cp.deleted = ?", userID, false)
	if filter.Archived != nil {
		q = q.Where("cp.archived = ?", *filter.Archived)
	}

	var conversations []*models.Conversation
	err := q.Preload("LastMessage", notDeletedByViewer, userID).
		Order("CASE WHEN conversations.last_message_at IS NULL THEN 1 ELSE 0 END").
		Order("conversations.last_message_at DESC").
		Order("conversations.id DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := r.attachParticipants(ctx, conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *conversationRepository) SetArchived(ctx context.Context, conversationID, userID uint, archived bool) error {
	return r.updateParticipant(ctx, conversationID, userID, "archived", archived)
}

func (r *conversationRepository) SetDeleted(ctx context.Context, conversationID, userID uint) error {
	return r.updateParticipant(ctx, conversationID, userID, "deleted", true)
}

// updateParticipant upserts the participant row so the flag sticks even if the
// row was never materialized.
func (r *conversationRepository) updateParticipant(ctx context.Context, conversationID, userID uint, column string, value bool) error {
	row := models.ConversationParticipant{ConversationID: conversationID, UserID: userID}
	switch column {
	case "archived":
		row.Archived = value
	case "deleted":
		row.Deleted = value
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{column: value}),
	}).Create(&row).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListWithoutLastMessage returns conversations whose last message pointer was cleared.
func (r *conversationRepository) ListWithoutLastMessage(ctx context.Context, limit int) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := r.db.WithContext(ctx).
		Where("last_message_id IS NULL AND last_message_at IS NOT NULL").
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return conversations, nil
}

// pairTrafficSince matches conversations whose pair exchanged or read a
// message at or after the bound time.
const pairTrafficSince = `EXISTS (SELECT 1 FROM messages m WHERE
	((m.sender_id = conversations.participant_low AND m.receiver_id = conversations.participant_high)
	OR (m.sender_id = conversations.participant_high AND m.receiver_id = conversations.participant_low))
	AND (m.created_at >= ? OR m.read_at >= ?))`

// ListActiveSince returns conversations with traffic at or after since,
// including messages that never reached the conversation record.
func (r *conversationRepository) ListActiveSince(ctx context.Context, since time.Time) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := r.db.WithContext(ctx).
		Where("last_message_at >= ? OR "+pairTrafficSince, since, since, since).
		Order("id").
		Find(&conversations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return conversations, nil
}

func (r *conversationRepository) attachParticipants(ctx context.Context, conversations []*models.Conversation) error {
	if len(conversations) == 0 {
		return nil
	}

	ids := make([]uint, len(conversations))
	for i, c := range conversations {
		ids[i] = c.ID
	}

	var rows []models.ConversationParticipant
	if err := r.db.WithContext(ctx).Where("conversation_id IN ?", ids).Find(&rows).Error; err != nil {
		return models.NewInternalError(err)
	}

	byConv := make(map[uint][]models.ConversationParticipant, len(conversations))
	for _, row := range rows {
		byConv[row.ConversationID] = append(byConv[row.ConversationID], row)
	}
	for _, c := range conversations {
		c.ApplyParticipants(byConv[c.ID])
	}
	return nil
}
