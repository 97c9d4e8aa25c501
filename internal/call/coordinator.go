package call

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventbeta/internal/chat"
	"eventbeta/internal/models"
	"eventbeta/internal/store"
	"eventbeta/pkg/logger"

	"github.com/google/uuid"
)

// SessionsCollection is the store collection holding live call sessions.
const SessionsCollection = "callSessions"

var (
	// ErrCallActive rejects a start while a session already exists.
	ErrCallActive = errors.New("call: a call is already active for this event")

	// ErrNoCall rejects join and end when no session exists.
	ErrNoCall = errors.New("call: no active call for this event")

	// ErrNotCallOwner rejects end by anyone but the session starter.
	ErrNotCallOwner = errors.New("call: only the starter may end the call")

	// ErrRoomInactive rejects a start while the event is not published.
	ErrRoomInactive = errors.New("call: room is not active")
)

// State is the call state every subscribed client of an event observes.
// Either no session exists, or exactly one does.
type State struct {
	Active  bool
	Session models.CallSession
}

// StateFunc receives the event's call state on subscribe and after every
// change.
type StateFunc func(state State)

// Coordinator owns the shared CallSession record per event. At most one
// session exists per event because the session document's id is the event
// id; a concurrent second start loses the create race and gets ErrCallActive.
type Coordinator struct {
	sessions store.Collection[models.CallSession]
	gate     chat.RoomGate
}

// NewCoordinator creates a coordinator over the sessions collection.
func NewCoordinator(sessions store.Collection[models.CallSession], gate chat.RoomGate) *Coordinator {
	return &Coordinator{sessions: sessions, gate: gate}
}

// Start creates the event's call session. Anonymous starters are assigned a
// synthetic per-session identifier so the record always has an owner key;
// only that identity can later end the call.
func (c *Coordinator) Start(ctx context.Context, eventID, uid, name string) (*models.CallSession, error) {
	active, err := c.gate.RoomActive(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("call: room state check failed: %w", err)
	}
	if !active {
		return nil, ErrRoomInactive
	}

	if uid == "" {
		uid = "guest-" + uuid.NewString()
	}
	if name == "" {
		name = "Guest"
	}

	session := models.CallSession{
		EventID:       eventID,
		SessionID:     uuid.NewString(),
		StartedBy:     uid,
		StartedByName: name,
		StartedAt:     time.Now().UTC(),
		Participants:  []string{uid},
	}

	if err := c.sessions.Create(ctx, eventID, session); err != nil {
		if errors.Is(err, store.ErrExists) {
			return nil, ErrCallActive
		}
		logger.LogError(err, "failed to start call", map[string]interface{}{
			"event_id": eventID,
			"user_id":  uid,
		})
		return nil, fmt.Errorf("call: failed to start call: %w", err)
	}

	logger.LogCallEvent("call_started", eventID, uid, map[string]interface{}{
		"started_by_name": name,
	})
	return &session, nil
}

// Join returns the live session a client is attaching to. Joining does not
// mutate the shared record beyond a best-effort participant entry; the
// conferencing backend owns real membership.
func (c *Coordinator) Join(ctx context.Context, eventID, uid string) (*models.CallSession, error) {
	session, err := c.sessions.GetOne(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoCall
	}
	if err != nil {
		return nil, fmt.Errorf("call: failed to load call: %w", err)
	}

	if uid != "" && !contains(session.Participants, uid) {
		participants := append(append([]string(nil), session.Participants...), uid)
		// A race with end is benign: the session is gone either way.
		if err := c.sessions.Update(ctx, eventID, store.Filter{"participants": participants}); err == nil {
			session.Participants = participants
		}
	}

	logger.LogCallEvent("call_joined", eventID, uid, nil)
	return &session, nil
}

// End deletes the event's call session. Owner only; a non-owner leaving the
// call must never tear the record down, the session persists for whoever
// remains.
func (c *Coordinator) End(ctx context.Context, eventID, uid string) error {
	session, err := c.sessions.GetOne(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoCall
	}
	if err != nil {
		return fmt.Errorf("call: failed to load call: %w", err)
	}
	if session.StartedBy != uid {
		return ErrNotCallOwner
	}

	if err := c.sessions.Delete(ctx, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoCall
		}
		logger.LogError(err, "failed to end call", map[string]interface{}{
			"event_id": eventID,
			"user_id":  uid,
		})
		return fmt.Errorf("call: failed to end call: %w", err)
	}

	logger.LogCallEvent("call_ended", eventID, uid, nil)
	return nil
}

// State reads the current call state once.
func (c *Coordinator) State(ctx context.Context, eventID string) (State, error) {
	session, err := c.sessions.GetOne(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("call: failed to load call: %w", err)
	}
	return State{Active: true, Session: session}, nil
}

// Watch subscribes fn to the event's call state. fn receives the current
// state immediately and again after every transition.
func (c *Coordinator) Watch(ctx context.Context, eventID string, fn StateFunc) (*store.Subscription, error) {
	sub, err := c.sessions.Subscribe(ctx, store.Filter{"_id": eventID}, func(docs []models.CallSession) {
		if len(docs) == 0 {
			fn(State{})
			return
		}
		fn(State{Active: true, Session: docs[0]})
	})
	if err != nil {
		return nil, fmt.Errorf("call: failed to watch call state: %w", err)
	}
	return sub, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
