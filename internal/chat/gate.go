package chat

import (
	"context"
	"errors"
	"fmt"

	"eventbeta/internal/models"
	"eventbeta/internal/store"
)

// EventsCollection holds the external event documents the gate reads.
const EventsCollection = "events"

// StatusGate is a RoomGate backed by the event-management service's event
// records: a room is active only while its event is published.
type StatusGate struct {
	events store.Collection[models.EventRecord]
}

// NewStatusGate creates a gate over the events collection.
func NewStatusGate(events store.Collection[models.EventRecord]) *StatusGate {
	return &StatusGate{events: events}
}

// RoomActive reports whether the event exists and is published. A missing
// event gates the room closed rather than erroring.
func (g *StatusGate) RoomActive(ctx context.Context, eventID string) (bool, error) {
	event, err := g.events.GetOne(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("chat: failed to load event: %w", err)
	}
	return event.Status == models.EventStatusPublished, nil
}
