package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType represents different types of WebSocket messages
type MessageType string

const (
	// Pushed by the relay on every store change
	MessageTypeTranscript MessageType = "transcript"
	MessageTypeCallState  MessageType = "call_state"

	// System message types
	MessageTypeError     MessageType = "error"
	MessageTypeSuccess   MessageType = "success"
	MessageTypeHeartbeat MessageType = "heartbeat"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	ID        string                 `json:"id"`
	Type      MessageType            `json:"type"`
	Content   string                 `json:"content,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	EventID   string                 `json:"event_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewWSMessage creates a new WebSocket message
func NewWSMessage(msgType MessageType, content string, data map[string]interface{}) *WSMessage {
	return &WSMessage{
		ID:        uuid.NewString(),
		Type:      msgType,
		Content:   content,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// ToJSON converts message to JSON bytes
func (msg *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(msg)
}

// FromJSON creates message from JSON bytes
func FromJSON(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}

// SetEventID sets the owning event for the message
func (msg *WSMessage) SetEventID(eventID string) {
	msg.EventID = eventID
}

// AddData adds data to the message
func (msg *WSMessage) AddData(key string, value interface{}) {
	if msg.Data == nil {
		msg.Data = make(map[string]interface{})
	}
	msg.Data[key] = value
}

// Validate validates the message structure
func (msg *WSMessage) Validate() error {
	if msg.Type == "" {
		return fmt.Errorf("message type is required")
	}
	return nil
}
