package websocket

import (
	"sync"

	"eventbeta/pkg/logger"
)

// Hub maintains the set of connected clients grouped by event room and
// fans pushed snapshots out to them.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Clients organized by event ID
	eventClients map[string]map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Broadcast messages to one event's clients
	RoomBroadcast chan *RoomMessage

	// Fires after room membership changes; the relay uses it to open and
	// close per-event store subscriptions.
	onRoomChange func(eventID string, clients int)

	mu sync.RWMutex
}

// RoomMessage represents a message to be sent to an event's clients
type RoomMessage struct {
	EventID string
	Message *WSMessage
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		eventClients:  make(map[string]map[*Client]bool),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		RoomBroadcast: make(chan *RoomMessage),
	}
}

// OnRoomChange registers the membership callback. Must be set before Run.
func (h *Hub) OnRoomChange(fn func(eventID string, clients int)) {
	h.onRoomChange = fn
}

// Run starts the hub and handles client registration/unregistration
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case roomMsg := <-h.RoomBroadcast:
			h.broadcastToRoom(roomMsg)
		}
	}
}

// registerClient registers a new client into its event room
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	if h.eventClients[client.EventID] == nil {
		h.eventClients[client.EventID] = make(map[*Client]bool)
	}
	h.eventClients[client.EventID][client] = true
	size := len(h.eventClients[client.EventID])
	h.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"user_id":   client.UserID,
		"event_id":  client.EventID,
		"room_size": size,
	}).Info("Client registered")

	if h.onRoomChange != nil {
		h.onRoomChange(client.EventID, size)
	}

	welcome := NewWSMessage(MessageTypeSuccess, "Connected successfully", map[string]interface{}{
		"user_id":  client.UserID,
		"event_id": client.EventID,
	})
	client.SendMessage(welcome)
}

// unregisterClient unregisters a client
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)

	size := 0
	if room, exists := h.eventClients[client.EventID]; exists {
		delete(room, client)
		size = len(room)
		if size == 0 {
			delete(h.eventClients, client.EventID)
		}
	}
	close(client.Send)
	h.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"user_id":  client.UserID,
		"event_id": client.EventID,
	}).Info("Client unregistered")

	if h.onRoomChange != nil {
		h.onRoomChange(client.EventID, size)
	}
}

// broadcastToRoom broadcasts a message to all clients of one event
func (h *Hub) broadcastToRoom(roomMsg *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.eventClients[roomMsg.EventID]
	if !exists {
		return
	}

	data, err := roomMsg.Message.ToJSON()
	if err != nil {
		logger.WithError(err).Error("Failed to marshal room message")
		return
	}

	for client := range room {
		select {
		case client.Send <- data:
		default:
			// Client send buffer is full, drop the connection
			go func(c *Client) { h.Unregister <- c }(client)
		}
	}
}

// BroadcastToEvent queues a message for every client of the event
func (h *Hub) BroadcastToEvent(eventID string, message *WSMessage) {
	message.SetEventID(eventID)
	h.RoomBroadcast <- &RoomMessage{
		EventID: eventID,
		Message: message,
	}
}

// EventClientCount returns how many clients are connected for the event
func (h *Hub) EventClientCount(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.eventClients[eventID])
}
