package models

import (
	"fmt"
	"time"
)

// ChatMessage is a single entry in an event's shared transcript. A message
// carries either text content or an inline image payload, never both and
// never neither; use NewTextMessage / NewImageMessage so invalid payloads
// cannot be constructed.
type ChatMessage struct {
	ID         string     `bson:"_id,omitempty" json:"id"`
	EventID    string     `bson:"event_id" json:"event_id"`
	SenderUID  string     `bson:"sender_uid" json:"sender_uid"`
	SenderName string     `bson:"sender_name" json:"sender_name"`
	SenderRole string     `bson:"sender_role" json:"sender_role"`
	Content    string     `bson:"content" json:"content"`
	Image      string     `bson:"image,omitempty" json:"image,omitempty"`
	Timestamp  time.Time  `bson:"timestamp" json:"timestamp"`
	Edited     bool       `bson:"edited" json:"edited"`
	EditedAt   *time.Time `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	Flagged    bool       `bson:"flagged" json:"flagged"`
}

// NewTextMessage creates a text message.
func NewTextMessage(eventID, senderUID, senderName, senderRole, content string) ChatMessage {
	return ChatMessage{
		EventID:    eventID,
		SenderUID:  senderUID,
		SenderName: senderName,
		SenderRole: senderRole,
		Content:    content,
		Timestamp:  time.Now().UTC(),
	}
}

// NewImageMessage creates an image message. Content stays empty; the image
// payload is a self-contained data URI.
func NewImageMessage(eventID, senderUID, senderName, senderRole, image string) ChatMessage {
	return ChatMessage{
		EventID:    eventID,
		SenderUID:  senderUID,
		SenderName: senderName,
		SenderRole: senderRole,
		Image:      image,
		Timestamp:  time.Now().UTC(),
	}
}

// IsImage reports whether the message carries an image payload.
func (m ChatMessage) IsImage() bool {
	return m.Image != ""
}

// Validate enforces the text-XOR-image payload invariant.
func (m ChatMessage) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("message event_id is required")
	}
	if m.SenderUID == "" {
		return fmt.Errorf("message sender_uid is required")
	}
	if m.Content == "" && m.Image == "" {
		return fmt.Errorf("message must carry text or an image")
	}
	if m.Content != "" && m.Image != "" {
		return fmt.Errorf("message cannot carry both text and an image")
	}
	return nil
}
