// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

const (
	// MaxMessageContentLen is the maximum message length in characters.
	MaxMessageContentLen = 5000
	// MaxMessageAttachments caps attachments per message.
	MaxMessageAttachments = 10
	// EditGraceWindow is how long after creation an edit stays untagged.
	EditGraceWindow = 5 * time.Minute
	// DefaultThreadLimit is the number of messages returned when opening a thread.
	DefaultThreadLimit = 100
)

// Attachment is a file reference carried by a message.
type Attachment struct {
	Filename string `json:"filename" validate:"required,max=255"`
	URL      string `json:"url" validate:"required,url,max=2048"`
	Type     string `json:"type" validate:"omitempty,max=100"`
}

// Message is a direct message between two users.
type Message struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	SenderID      uint         `gorm:"not null;index:idx_messages_pair,priority:1" json:"sender_id"`
	ReceiverID    uint         `gorm:"not null;index:idx_messages_pair,priority:2;index:idx_messages_receiver_read,priority:1" json:"receiver_id"`
	Content       string       `gorm:"type:text;not null" json:"content"`
	Attachments   []Attachment `gorm:"type:text;serializer:json" json:"attachments"`
	IsRead        bool         `gorm:"default:false;index:idx_messages_receiver_read,priority:2" json:"is_read"`
	ReadAt        *time.Time   `json:"read_at,omitempty"`
	IsEdited      bool         `gorm:"default:false" json:"is_edited"`
	EditedAt      *time.Time   `json:"edited_at,omitempty"`
	ShowEditedTag bool         `gorm:"default:false" json:"show_edited_tag"`
	CreatedAt     time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// DeletedFor is loaded from message_deletions.
	DeletedFor UserIDSet `gorm:"-" json:"deleted_for"`
}

// IsParticipant reports whether userID sent or received the message.
func (m *Message) IsParticipant(userID uint) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// MessageDeletion records that a user removed a message from their own view.
type MessageDeletion struct {
	MessageID uint      `gorm:"primaryKey;autoIncrement:false" json:"message_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (MessageDeletion) TableName() string {
	return "message_deletions"
}

// Conversation is the directory entry for a pair of users. The pair is stored
// in canonical order so that (a, b) and (b, a) resolve to the same row.
type Conversation struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ParticipantLow  uint       `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:1" json:"-"`
	ParticipantHigh uint       `gorm:"not null;uniqueIndex:idx_conversation_pair,priority:2" json:"-"`
	LastMessageID   *uint      `json:"last_message_id"`
	LastMessage     *Message   `gorm:"foreignKey:LastMessageID" json:"last_message,omitempty"`
	LastMessageAt   *time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Loaded from conversation_participants.
	UnreadCount UnreadCounts `gorm:"-" json:"unread_count"`
	ArchivedBy  UserIDSet    `gorm:"-" json:"archived_by"`
	DeletedBy   UserIDSet    `gorm:"-" json:"deleted_by"`
}

// CanonicalPair orders two user ids so the smaller comes first.
func CanonicalPair(a, b uint) (low, high uint) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Participants returns both participant ids.
func (c *Conversation) Participants() []uint {
	return []uint{c.ParticipantLow, c.ParticipantHigh}
}

// IsParticipant reports whether userID belongs to the conversation.
func (c *Conversation) IsParticipant(userID uint) bool {
	return c.ParticipantLow == userID || c.ParticipantHigh == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.ParticipantLow == userID {
		return c.ParticipantHigh
	}
	return c.ParticipantLow
}

// ConversationParticipant holds one participant's view state of a conversation.
type ConversationParticipant struct {
	ConversationID uint      `gorm:"primaryKey;autoIncrement:false" json:"conversation_id"`
	UserID         uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	UnreadCount    int       `gorm:"not null;default:0" json:"unread_count"`
	Archived       bool      `gorm:"not null;default:false" json:"archived"`
	Deleted        bool      `gorm:"not null;default:false" json:"deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

// ApplyParticipants folds participant rows into the conversation's maps and sets.
func (c *Conversation) ApplyParticipants(rows []ConversationParticipant) {
	c.UnreadCount = UnreadCounts{}
	c.ArchivedBy = UserIDSet{}
	c.DeletedBy = UserIDSet{}
	for _, p := range rows {
		if p.ConversationID != c.ID {
			continue
		}
		if p.UnreadCount > 0 {
			c.UnreadCount[p.UserID] = p.UnreadCount
		}
		if p.Archived {
			c.ArchivedBy.Add(p.UserID)
		}
		if p.Deleted {
			c.DeletedBy.Add(p.UserID)
		}
	}
}

// ConversationView is a conversation as listed for one user.
type ConversationView struct {
	ID            uint            `json:"id"`
	OtherUser     *ProfileSummary `json:"other_user"`
	LastMessage   *Message        `json:"last_message,omitempty"`
	LastMessageAt *time.Time      `json:"last_message_at"`
	UnreadCount   int             `json:"unread_count"`
	IsArchived    bool            `json:"is_archived"`
}

// Thread is the composed result of opening a conversation with another user.
type Thread struct {
	Conversation *Conversation   `json:"conversation"`
	Messages     []*Message      `json:"messages"`
	OtherUser    *ProfileSummary `json:"other_user"`
}
