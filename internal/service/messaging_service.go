package service

import (
	"context"
	"log/slog"

	"rehire/internal/middleware"
	"rehire/internal/models"
	"rehire/internal/observability"
	"rehire/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const messagingServiceName = "MessagingService"

// MessagingService composes the message store and the conversation directory
// into the operations exposed over HTTP.
type MessagingService struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	store     *MessageStore
	directory *ConversationDirectory
}

// NewMessagingService returns a new MessagingService.
func NewMessagingService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	store *MessageStore,
	directory *ConversationDirectory,
) *MessagingService {
	return &MessagingService{
		users:     users,
		profiles:  profiles,
		store:     store,
		directory: directory,
	}
}

// SendMessage stores the message and then records it on the pair's
// conversation. The two writes are not transactional: when the second fails
// the message stays stored and the counters are repaired by the sweeper.
func (s *MessagingService) SendMessage(ctx context.Context, in SendInput) (msg *models.Message, err error) {
	ctx, span := observability.StartServiceSpan(ctx, messagingServiceName, "SendMessage",
		observability.UserAttr(in.SenderID),
		attribute.Int64("receiver_id", int64(in.ReceiverID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err = s.requireUser(ctx, in.ReceiverID); err != nil {
		return nil, err
	}

	msg, err = s.store.Send(ctx, in)
	if err != nil {
		return nil, err
	}

	conv, err := s.directory.FindOrCreate(ctx, in.SenderID, in.ReceiverID)
	if err != nil {
		s.logPartialSend(ctx, msg, err)
		return nil, err
	}
	if err = s.directory.RecordOutgoing(ctx, conv, msg); err != nil {
		s.logPartialSend(ctx, msg, err)
		return nil, err
	}

	observability.MessagesTotal.WithLabelValues(observability.MessageSent).Inc()
	return msg, nil
}

func (s *MessagingService) logPartialSend(ctx context.Context, msg *models.Message, err error) {
	observability.SendPartialFailures.Inc()
	middleware.Logger.ErrorContext(ctx, "message stored but conversation not updated",
		slog.Uint64("message_id", uint64(msg.ID)),
		slog.Uint64("sender_id", uint64(msg.SenderID)),
		slog.Uint64("receiver_id", uint64(msg.ReceiverID)),
		slog.String("error", err.Error()),
	)
}

// OpenThread returns the conversation with otherUserID, creating it if needed,
// and marks everything otherUserID sent to userID as read.
func (s *MessagingService) OpenThread(ctx context.Context, userID, otherUserID uint) (thread *models.Thread, err error) {
	ctx, span := observability.StartServiceSpan(ctx, messagingServiceName, "OpenThread",
		observability.UserAttr(userID),
		attribute.Int64("other_user_id", int64(otherUserID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err = s.requireUser(ctx, otherUserID); err != nil {
		return nil, err
	}

	conv, err := s.directory.FindOrCreate(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.FetchThread(ctx, userID, otherUserID, models.DefaultThreadLimit)
	if err != nil {
		return nil, err
	}

	readAt := s.store.now()
	if _, err = s.store.markThreadReadAt(ctx, userID, otherUserID, readAt); err != nil {
		return nil, err
	}
	for _, m := range messages {
		if m.ReceiverID == userID && !m.IsRead {
			m.IsRead = true
			at := readAt
			m.ReadAt = &at
		}
	}

	if err = s.directory.ResetUnread(ctx, conv, userID); err != nil {
		return nil, err
	}
	if err = s.directory.ScopeLastMessage(ctx, conv, userID); err != nil {
		return nil, err
	}

	other, err := s.profiles.Summary(ctx, otherUserID)
	if err != nil {
		return nil, err
	}

	observability.ConversationEventsTotal.WithLabelValues(observability.ConversationOpened).Inc()
	return &models.Thread{Conversation: conv, Messages: messages, OtherUser: other}, nil
}

// UnreadBadgeCount counts unread messages addressed to userID across all
// conversations, ignoring those userID deleted.
func (s *MessagingService) UnreadBadgeCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

// MarkRead marks a single message read by its receiver.
func (s *MessagingService) MarkRead(ctx context.Context, messageID, readerID uint) (*models.Message, error) {
	msg, err := s.store.MarkRead(ctx, messageID, readerID)
	if err != nil {
		return nil, err
	}
	observability.MessagesTotal.WithLabelValues(observability.MessageRead).Inc()
	return msg, nil
}

// EditMessage changes the content of a message the editor sent.
func (s *MessagingService) EditMessage(ctx context.Context, messageID, editorID uint, content string) (msg *models.Message, err error) {
	ctx, span := observability.StartServiceSpan(ctx, messagingServiceName, "EditMessage",
		observability.UserAttr(editorID),
		attribute.Int64("message_id", int64(messageID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	msg, err = s.store.Edit(ctx, messageID, editorID, content)
	if err != nil {
		return nil, err
	}
	observability.MessagesTotal.WithLabelValues(observability.MessageEdited).Inc()
	return msg, nil
}

// DeleteMessage removes a message from userID's view.
func (s *MessagingService) DeleteMessage(ctx context.Context, messageID, userID uint) (*models.Message, error) {
	msg, err := s.store.SoftDeleteForUser(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	observability.MessagesTotal.WithLabelValues(observability.MessageDeleted).Inc()
	middleware.Logger.InfoContext(ctx, "message deleted for user",
		slog.Uint64("message_id", uint64(messageID)),
		slog.Uint64("user_id", uint64(userID)),
	)
	return msg, nil
}

// SetArchived archives or unarchives a conversation for userID.
func (s *MessagingService) SetArchived(ctx context.Context, conversationID, userID uint, archived bool) (*models.Conversation, error) {
	conv, err := s.directory.SetArchived(ctx, conversationID, userID, archived)
	if err != nil {
		return nil, err
	}
	event := observability.ConversationUnarchive
	if archived {
		event = observability.ConversationArchive
	}
	observability.ConversationEventsTotal.WithLabelValues(event).Inc()
	return conv, nil
}

// DeleteConversation removes a conversation from userID's list.
func (s *MessagingService) DeleteConversation(ctx context.Context, conversationID, userID uint) error {
	if err := s.directory.SoftDeleteForUser(ctx, conversationID, userID); err != nil {
		return err
	}
	observability.ConversationEventsTotal.WithLabelValues(observability.ConversationDeleted).Inc()
	return nil
}

// ListConversations returns userID's conversation list.
func (s *MessagingService) ListConversations(ctx context.Context, userID uint, filter repository.ConversationFilter) ([]*models.ConversationView, error) {
	return s.directory.ListForUser(ctx, userID, filter)
}

func (s *MessagingService) requireUser(ctx context.Context, userID uint) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}
