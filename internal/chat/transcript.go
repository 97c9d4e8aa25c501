package chat

import (
	"context"
	"fmt"
	"sync"

	"eventbeta/internal/models"
	"eventbeta/internal/store"
)

// ChangeFunc is called after each snapshot replacement, after the new
// messages are visible through Messages. Viewers use it to scroll to the
// latest message.
type ChangeFunc func(messages []models.ChatMessage)

// Transcript maintains a live, ordered view of one event's messages. While
// the room is active it holds a store subscription and replaces its contents
// wholesale on every push; no local diffing or merging. While inactive it is
// empty and detached.
type Transcript struct {
	eventID  string
	messages store.Collection[models.ChatMessage]
	onChange ChangeFunc

	mu     sync.Mutex
	sub    *store.Subscription
	view   []models.ChatMessage
	gen    int
	closed bool
}

// NewTranscript creates a detached transcript for eventID. onChange may be
// nil.
func NewTranscript(eventID string, messages store.Collection[models.ChatMessage], onChange ChangeFunc) *Transcript {
	return &Transcript{
		eventID:  eventID,
		messages: messages,
		onChange: onChange,
	}
}

// SetRoomState attaches or detaches the transcript. Transitioning to active
// subscribes and fills the view from the initial push; transitioning to
// inactive unsubscribes and clears it. Setting the current state again is a
// no-op.
func (t *Transcript) SetRoomState(ctx context.Context, active bool) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("chat: transcript is closed")
	}
	if active == (t.sub != nil) {
		t.mu.Unlock()
		return nil
	}

	if !active {
		sub := t.sub
		t.sub = nil
		t.view = nil
		t.gen++
		t.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}

	t.gen++
	gen := t.gen
	t.mu.Unlock()

	sub, err := t.messages.Subscribe(ctx, store.Filter{"event_id": t.eventID}, func(docs []models.ChatMessage) {
		t.replace(gen, docs)
	})
	if err != nil {
		return fmt.Errorf("chat: failed to subscribe transcript: %w", err)
	}

	t.mu.Lock()
	if t.closed || t.gen != gen {
		t.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	t.sub = sub
	t.mu.Unlock()
	return nil
}

// replace swaps in a snapshot, preserving store order. Pushes from a stale
// subscription are dropped.
func (t *Transcript) replace(gen int, docs []models.ChatMessage) {
	t.mu.Lock()
	if t.closed || t.gen != gen {
		t.mu.Unlock()
		return
	}
	t.view = docs
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(docs)
	}
}

// Messages returns the current view in store order.
func (t *Transcript) Messages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ChatMessage, len(t.view))
	copy(out, t.view)
	return out
}

// Active reports whether the transcript holds a live subscription.
func (t *Transcript) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sub != nil
}

// Close detaches the transcript permanently. Pushes already in flight are
// dropped. Safe to call more than once.
func (t *Transcript) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	sub := t.sub
	t.sub = nil
	t.view = nil
	t.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
