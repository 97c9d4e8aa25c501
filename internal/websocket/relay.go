package websocket

import (
	"context"
	"sync"

	"eventbeta/internal/call"
	"eventbeta/internal/models"
	"eventbeta/internal/store"
	"eventbeta/pkg/logger"
)

// Relay bridges store pushes onto the hub. It holds at most one pair of
// store subscriptions per event, opened when the first client of that event
// connects and released when the last one leaves, so idle events cost
// nothing.
type Relay struct {
	hub         *Hub
	messages    store.Collection[models.ChatMessage]
	coordinator *call.Coordinator

	mu    sync.Mutex
	rooms map[string]*relayRoom
}

type relayRoom struct {
	transcriptSub *store.Subscription
	callSub       *store.Subscription
}

// NewRelay creates a relay and hooks it into the hub's membership changes.
func NewRelay(hub *Hub, messages store.Collection[models.ChatMessage], coordinator *call.Coordinator) *Relay {
	r := &Relay{
		hub:         hub,
		messages:    messages,
		coordinator: coordinator,
		rooms:       make(map[string]*relayRoom),
	}
	hub.OnRoomChange(r.roomChanged)
	return r
}

// roomChanged runs off the hub loop: subscribing triggers an initial push
// that goes back through the hub, which would deadlock if done inline.
func (r *Relay) roomChanged(eventID string, clients int) {
	if clients > 0 {
		go r.ensureSubscribed(eventID)
	} else {
		go r.release(eventID)
	}
}

func (r *Relay) ensureSubscribed(eventID string) {
	r.mu.Lock()
	if _, ok := r.rooms[eventID]; ok {
		r.mu.Unlock()
		return
	}
	room := &relayRoom{}
	r.rooms[eventID] = room
	r.mu.Unlock()

	ctx := context.Background()

	transcriptSub, err := r.messages.Subscribe(ctx, store.Filter{"event_id": eventID}, func(docs []models.ChatMessage) {
		r.broadcastTranscript(eventID, docs)
	})
	if err != nil {
		logger.LogError(err, "failed to subscribe transcript relay", map[string]interface{}{
			"event_id": eventID,
		})
	}

	callSub, err := r.coordinator.Watch(ctx, eventID, func(state call.State) {
		r.broadcastCallState(eventID, state)
	})
	if err != nil {
		logger.LogError(err, "failed to subscribe call relay", map[string]interface{}{
			"event_id": eventID,
		})
	}

	r.mu.Lock()
	if _, ok := r.rooms[eventID]; !ok {
		// The last client left while we were subscribing.
		r.mu.Unlock()
		unsubscribe(transcriptSub)
		unsubscribe(callSub)
		return
	}
	room.transcriptSub = transcriptSub
	room.callSub = callSub
	r.mu.Unlock()

	// The last client may have left between the membership change and the
	// subscriptions landing.
	if r.hub.EventClientCount(eventID) == 0 {
		r.release(eventID)
	}
}

func (r *Relay) release(eventID string) {
	// Ensures and releases run as unordered goroutines, so a release
	// spawned by an old client's leave can arrive after a newer client's
	// ensure. Membership is the source of truth: never tear a room down
	// while someone is still connected.
	if r.hub.EventClientCount(eventID) > 0 {
		return
	}

	r.mu.Lock()
	room, ok := r.rooms[eventID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.rooms, eventID)
	r.mu.Unlock()

	unsubscribe(room.transcriptSub)
	unsubscribe(room.callSub)
}

// Close releases every live subscription.
func (r *Relay) Close() {
	r.mu.Lock()
	rooms := r.rooms
	r.rooms = make(map[string]*relayRoom)
	r.mu.Unlock()

	for _, room := range rooms {
		unsubscribe(room.transcriptSub)
		unsubscribe(room.callSub)
	}
}

func (r *Relay) broadcastTranscript(eventID string, docs []models.ChatMessage) {
	msg := NewWSMessage(MessageTypeTranscript, "", map[string]interface{}{
		"messages": docs,
		"count":    len(docs),
	})
	r.hub.BroadcastToEvent(eventID, msg)
}

func (r *Relay) broadcastCallState(eventID string, state call.State) {
	data := map[string]interface{}{
		"active": state.Active,
	}
	if state.Active {
		data["session"] = state.Session
	}
	r.hub.BroadcastToEvent(eventID, NewWSMessage(MessageTypeCallState, "", data))
}

func unsubscribe(sub *store.Subscription) {
	if sub != nil {
		sub.Unsubscribe()
	}
}
