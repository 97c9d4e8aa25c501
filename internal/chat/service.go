// Package chat owns the message lifecycle for an event's shared transcript:
// send, edit, delete and flag, with the authorization rules enforced at the
// mutation path rather than in whatever UI happens to sit in front of it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"eventbeta/internal/models"
	"eventbeta/internal/store"
	"eventbeta/pkg/logger"

	"github.com/google/uuid"
)

// MessagesCollection is the store collection holding chat messages.
const MessagesCollection = "chatMessages"

var (
	// ErrEmptyMessage rejects sends and edits with no usable payload.
	ErrEmptyMessage = errors.New("chat: message content is empty")

	// ErrContentTooLong rejects content over the configured rune limit.
	ErrContentTooLong = errors.New("chat: message content too long")

	// ErrRoomInactive rejects sends while the event is not published.
	ErrRoomInactive = errors.New("chat: room is not active")

	// ErrNotSender rejects edit/delete attempts by anyone but the author.
	ErrNotSender = errors.New("chat: only the sender may modify this message")

	// ErrOwnMessage rejects a sender flagging their own message.
	ErrOwnMessage = errors.New("chat: cannot flag your own message")

	// ErrImageMessage rejects edits on image messages, which carry no text.
	ErrImageMessage = errors.New("chat: image messages cannot be edited")

	// ErrNotFound mirrors the store's missing-document error.
	ErrNotFound = errors.New("chat: message not found")
)

// RoomGate reports whether an event's room currently permits chat and calls.
// The event lifecycle itself belongs to the event-management service.
type RoomGate interface {
	RoomActive(ctx context.Context, eventID string) (bool, error)
}

// SendInput carries everything needed to create a message. Sender identity
// is snapshotted at send time and never refreshed.
type SendInput struct {
	EventID    string
	SenderUID  string
	SenderName string
	SenderRole string
	Content    string
	Image      string
}

// Service is the message lifecycle manager.
type Service struct {
	messages        store.Collection[models.ChatMessage]
	gate            RoomGate
	maxContentRunes int
}

// NewService creates a message lifecycle manager over the given collection.
func NewService(messages store.Collection[models.ChatMessage], gate RoomGate, maxContentRunes int) *Service {
	if maxContentRunes <= 0 {
		maxContentRunes = 500
	}
	return &Service{
		messages:        messages,
		gate:            gate,
		maxContentRunes: maxContentRunes,
	}
}

// Send validates and stores a new message. The payload must be text XOR
// image, and the room must be active. On success every subscriber sees the
// message on its next push, in store order.
func (s *Service) Send(ctx context.Context, in SendInput) (*models.ChatMessage, error) {
	content := strings.TrimSpace(in.Content)

	if content == "" && in.Image == "" {
		return nil, ErrEmptyMessage
	}
	if content != "" && in.Image != "" {
		return nil, fmt.Errorf("chat: message cannot carry both text and an image")
	}
	if utf8.RuneCountInString(content) > s.maxContentRunes {
		return nil, ErrContentTooLong
	}

	active, err := s.gate.RoomActive(ctx, in.EventID)
	if err != nil {
		return nil, fmt.Errorf("chat: room state check failed: %w", err)
	}
	if !active {
		return nil, ErrRoomInactive
	}

	var msg models.ChatMessage
	if in.Image != "" {
		msg = models.NewImageMessage(in.EventID, in.SenderUID, in.SenderName, in.SenderRole, in.Image)
	} else {
		msg = models.NewTextMessage(in.EventID, in.SenderUID, in.SenderName, in.SenderRole, content)
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	msg.ID = uuid.NewString()

	if err := s.messages.Create(ctx, msg.ID, msg); err != nil {
		logger.LogError(err, "failed to send message", map[string]interface{}{
			"event_id":   in.EventID,
			"sender_uid": in.SenderUID,
		})
		return nil, fmt.Errorf("chat: failed to send message: %w", err)
	}

	logger.LogChatEvent("message_sent", in.EventID, in.SenderUID, map[string]interface{}{
		"message_id": msg.ID,
		"has_image":  msg.IsImage(),
	})
	return &msg, nil
}

// Edit replaces a message's content. Only the stored sender may edit; two
// concurrent edits by the true owner race and last write wins.
func (s *Service) Edit(ctx context.Context, messageID, callerUID, newContent string) (*models.ChatMessage, error) {
	content := strings.TrimSpace(newContent)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > s.maxContentRunes {
		return nil, ErrContentTooLong
	}

	msg, err := s.load(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderUID != callerUID {
		return nil, ErrNotSender
	}
	if msg.IsImage() {
		return nil, ErrImageMessage
	}

	now := time.Now().UTC()
	err = s.messages.Update(ctx, messageID, store.Filter{
		"content":   content,
		"edited":    true,
		"edited_at": now,
	})
	if err != nil {
		logger.LogError(err, "failed to edit message", map[string]interface{}{
			"message_id": messageID,
			"caller_uid": callerUID,
		})
		return nil, fmt.Errorf("chat: failed to edit message: %w", err)
	}

	msg.Content = content
	msg.Edited = true
	msg.EditedAt = &now
	logger.LogChatEvent("message_edited", msg.EventID, callerUID, map[string]interface{}{
		"message_id": messageID,
	})
	return &msg, nil
}

// Delete permanently removes a message. No tombstone: the message is absent
// from every subscriber's next push. Sender-only.
func (s *Service) Delete(ctx context.Context, messageID, callerUID string) error {
	msg, err := s.load(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderUID != callerUID {
		return ErrNotSender
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		logger.LogError(err, "failed to delete message", map[string]interface{}{
			"message_id": messageID,
			"caller_uid": callerUID,
		})
		return fmt.Errorf("chat: failed to delete message: %w", err)
	}

	logger.LogChatEvent("message_deleted", msg.EventID, callerUID, map[string]interface{}{
		"message_id": messageID,
	})
	return nil
}

// Flag marks a message for moderator review. Any authenticated viewer except
// the sender may flag; the bit is never cleared here and the message stays
// visible to everyone.
func (s *Service) Flag(ctx context.Context, messageID, callerUID string) error {
	if callerUID == "" {
		return ErrNotSender
	}

	msg, err := s.load(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderUID == callerUID {
		return ErrOwnMessage
	}

	if err := s.messages.Update(ctx, messageID, store.Filter{"flagged": true}); err != nil {
		logger.LogError(err, "failed to flag message", map[string]interface{}{
			"message_id": messageID,
			"caller_uid": callerUID,
		})
		return fmt.Errorf("chat: failed to flag message: %w", err)
	}

	logger.LogChatEvent("message_flagged", msg.EventID, callerUID, map[string]interface{}{
		"message_id": messageID,
	})
	return nil
}

// Get fetches one message by id.
func (s *Service) Get(ctx context.Context, messageID string) (*models.ChatMessage, error) {
	msg, err := s.load(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) load(ctx context.Context, messageID string) (models.ChatMessage, error) {
	msg, err := s.messages.GetOne(ctx, messageID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ChatMessage{}, ErrNotFound
	}
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("chat: failed to load message: %w", err)
	}
	return msg, nil
}
