package repository

import (
	"context"
	"time"

	"rehire/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const notDeletedByViewer = "NOT EXISTS (SELECT 1 FROM message_deletions d WHERE d.message_id = messages.id AND d.user_id = ?)"

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	Thread(ctx context.Context, viewerID, otherID uint, limit int) ([]*models.Message, error)
	MarkThreadRead(ctx context.Context, readerID, otherID uint, at time.Time) (int64, error)
	MarkRead(ctx context.Context, id uint, at time.Time) error
	UpdateContent(ctx context.Context, msg *models.Message) error
	AddDeletion(ctx context.Context, messageID, userID uint) error
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
	CountUnreadFrom(ctx context.Context, receiverID, senderID uint) (int64, error)
	LatestBetween(ctx context.Context, a, b uint) (*models.Message, error)
	ReclaimFullyDeleted(ctx context.Context, batch int) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, lookupError(err, "Message", id)
	}
	if err := r.loadDeletions(ctx, []*models.Message{&msg}); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Thread returns the latest limit messages between the pair that viewerID has
// not deleted, oldest first.
func (r *messageRepository) Thread(ctx context.Context, viewerID, otherID uint, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = models.DefaultThreadLimit
	}

	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))",
			viewerID, otherID, otherID, viewerID).
		Where(notDeletedByViewer, viewerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Fetched newest first to apply the cap; callers expect chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if err := r.loadDeletions(ctx, messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkThreadRead(ctx context.Context, readerID, otherID uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// MarkRead sets the read receipt once; an already-read message keeps its readAt.
func (r *messageRepository) MarkRead(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) UpdateContent(ctx context.Context, msg *models.Message) error {
	err := r.db.WithContext(ctx).Model(msg).
		Select("content", "is_edited", "edited_at", "show_edited_tag").
		Updates(msg).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// AddDeletion hides the message for userID. Repeated calls are no-ops.
func (r *messageRepository) AddDeletion(ctx context.Context, messageID, userID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.MessageDeletion{MessageID: messageID, UserID: userID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CountUnread counts unread messages addressed to receiverID, excluding those
// the receiver deleted.
func (r *messageRepository) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Where(notDeletedByViewer, receiverID).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// CountUnreadFrom counts unread messages from senderID to receiverID.
func (r *messageRepository) CountUnreadFrom(ctx context.Context, receiverID, senderID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// LatestBetween returns the newest message between the pair, or nil.
func (r *messageRepository) LatestBetween(ctx context.Context, a, b uint) (*models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))", a, b, b, a).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

// ReclaimFullyDeleted physically removes up to batch messages that both
// participants deleted and returns the removed rows.
func (r *messageRepository) ReclaimFullyDeleted(ctx context.Context, batch int) ([]models.Message, error) {
	if batch <= 0 {
		batch = 500
	}

	var victims []models.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Message{}).
			Select("id", "sender_id", "receiver_id", "created_at").
			Where("EXISTS (SELECT 1 FROM message_deletions d WHERE d.message_id = messages.id AND d.user_id = messages.sender_id)").
			Where("EXISTS (SELECT 1 FROM message_deletions d WHERE d.message_id = messages.id AND d.user_id = messages.receiver_id)").
			Order("id").
			Limit(batch).
			Find(&victims).Error
		if err != nil || len(victims) == 0 {
			return err
		}

		ids := make([]uint, len(victims))
		for i := range victims {
			ids[i] = victims[i].ID
		}

		if err := tx.Model(&models.Conversation{}).
			Where("last_message_id IN ?", ids).
			Update("last_message_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id IN ?", ids).Delete(&models.MessageDeletion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, ids).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return victims, nil
}

func (r *messageRepository) loadDeletions(ctx context.Context, messages []*models.Message) error {
	if len(messages) == 0 {
		return nil
	}

	byID := make(map[uint]*models.Message, len(messages))
	ids := make([]uint, 0, len(messages))
	for _, m := range messages {
		m.DeletedFor = models.UserIDSet{}
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	var rows []models.MessageDeletion
	if err := r.db.WithContext(ctx).Where("message_id IN ?", ids).Find(&rows).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, row := range rows {
		if m, ok := byID[row.MessageID]; ok {
			m.DeletedFor.Add(row.UserID)
		}
	}
	return nil
}
