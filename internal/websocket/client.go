package websocket

import (
	"fmt"
	"time"

	"eventbeta/internal/config"
	"eventbeta/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	defaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	defaultPongWait = 60 * time.Second

	// Maximum message size allowed from peer
	defaultMaxMessageSize = 4 * 1024

	// Buffer size for client send channel
	sendBufferSize = 256
)

var newline = []byte{'\n'}

// Client represents one connected transcript viewer. Mutations go through
// the HTTP API; the socket only carries pushed snapshots downstream and
// heartbeats upstream.
type Client struct {
	// WebSocket connection
	Conn *websocket.Conn

	// Hub that manages this client
	Hub *Hub

	// Buffered channel of outbound messages
	Send chan []byte

	// Client information
	UserID      string
	EventID     string
	ConnectedAt time.Time

	// Pump settings, resolved from config at construction
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64
}

// NewClient creates a new WebSocket client for one event room. Zero config
// values fall back to the package defaults; the ping period must stay below
// the pong wait so it is derived when the configured pair is inconsistent.
func NewClient(conn *websocket.Conn, hub *Hub, userID, eventID string, cfg config.WebSocketConfig) *Client {
	c := &Client{
		Conn:        conn,
		Hub:         hub,
		Send:        make(chan []byte, sendBufferSize),
		UserID:      userID,
		EventID:     eventID,
		ConnectedAt: time.Now(),

		writeWait:      cfg.WriteWait,
		pongWait:       cfg.PongWait,
		pingPeriod:     cfg.PingPeriod,
		maxMessageSize: cfg.MaxMessageSize,
	}
	if c.writeWait <= 0 {
		c.writeWait = defaultWriteWait
	}
	if c.pongWait <= 0 {
		c.pongWait = defaultPongWait
	}
	if c.pingPeriod <= 0 || c.pingPeriod >= c.pongWait {
		c.pingPeriod = c.pongWait * 9 / 10
	}
	if c.maxMessageSize <= 0 {
		c.maxMessageSize = defaultMaxMessageSize
	}
	return c
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.WithFields(map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				}).Error("WebSocket read error")
			}
			break
		}

		wsMsg, err := FromJSON(message)
		if err != nil {
			c.sendError(fmt.Sprintf("Invalid message format: %v", err))
			continue
		}
		if err := wsMsg.Validate(); err != nil {
			c.sendError(fmt.Sprintf("Message validation failed: %v", err))
			continue
		}

		switch wsMsg.Type {
		case MessageTypeHeartbeat:
			c.handleHeartbeat()
		default:
			c.sendError(fmt.Sprintf("Unsupported message type: %s", wsMsg.Type))
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleHeartbeat responds to client heartbeats
func (c *Client) handleHeartbeat() {
	response := NewWSMessage(MessageTypeHeartbeat, "", map[string]interface{}{
		"server_time": time.Now(),
		"uptime":      time.Since(c.ConnectedAt).Seconds(),
	})
	c.SendMessage(response)
}

// SendMessage sends a message to the client
func (c *Client) SendMessage(msg *WSMessage) error {
	data, err := msg.ToJSON()
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	errorMsg := NewWSMessage(MessageTypeError, message, nil)
	c.SendMessage(errorMsg)
}
