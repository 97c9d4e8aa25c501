package chat

import (
	"context"
	"sync"
	"testing"

	"eventbeta/internal/models"
)

type changeRecorder struct {
	mu    sync.Mutex
	calls int
	last  []models.ChatMessage
}

func (r *changeRecorder) record(messages []models.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = messages
}

func (r *changeRecorder) snapshot() (int, []models.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.last
}

func TestTranscriptFollowsStoreOrder(t *testing.T) {
	svc, messages := newTestService(t, true)
	rec := &changeRecorder{}
	tr := NewTranscript("ev1", messages, rec.record)
	defer tr.Close()

	if err := tr.SetRoomState(context.Background(), true); err != nil {
		t.Fatalf("SetRoomState() error = %v", err)
	}

	first := mustSend(t, svc, "ev1", "u1", "first")
	second := mustSend(t, svc, "ev1", "u2", "second")
	third := mustSend(t, svc, "ev1", "u1", "third")

	view := tr.Messages()
	if len(view) != 3 {
		t.Fatalf("len(Messages()) = %d, want 3", len(view))
	}
	wantIDs := []string{first.ID, second.ID, third.ID}
	for i, want := range wantIDs {
		if view[i].ID != want {
			t.Fatalf("Messages()[%d].ID = %q, want %q", i, view[i].ID, want)
		}
	}
}

func TestTranscriptFiltersByEvent(t *testing.T) {
	svc, messages := newTestService(t, true)
	tr := NewTranscript("ev1", messages, nil)
	defer tr.Close()

	if err := tr.SetRoomState(context.Background(), true); err != nil {
		t.Fatalf("SetRoomState() error = %v", err)
	}

	mustSend(t, svc, "ev1", "u1", "mine")
	mustSend(t, svc, "ev2", "u1", "someone else's room")

	view := tr.Messages()
	if len(view) != 1 || view[0].Content != "mine" {
		t.Fatalf("Messages() = %+v, want only the ev1 message", view)
	}
}

func TestTranscriptChangeCallback(t *testing.T) {
	svc, messages := newTestService(t, true)
	rec := &changeRecorder{}
	tr := NewTranscript("ev1", messages, rec.record)
	defer tr.Close()

	if err := tr.SetRoomState(context.Background(), true); err != nil {
		t.Fatalf("SetRoomState() error = %v", err)
	}
	initial, _ := rec.snapshot()
	if initial != 1 {
		t.Fatalf("callback calls after subscribe = %d, want 1 initial push", initial)
	}

	msg := mustSend(t, svc, "ev1", "u1", "hello")
	calls, last := rec.snapshot()
	if calls != 2 {
		t.Fatalf("callback calls after send = %d, want 2", calls)
	}
	if len(last) != 1 || last[0].ID != msg.ID {
		t.Fatalf("callback snapshot = %+v, want the sent message", last)
	}

	if err := svc.Delete(context.Background(), msg.ID, "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	calls, last = rec.snapshot()
	if calls != 3 || len(last) != 0 {
		t.Fatalf("after delete: calls = %d, snapshot len = %d, want 3 and 0", calls, len(last))
	}
}

func TestTranscriptRoomStateTransitions(t *testing.T) {
	svc, messages := newTestService(t, true)
	tr := NewTranscript("ev1", messages, nil)
	defer tr.Close()

	mustSend(t, svc, "ev1", "u1", "before activation")

	if tr.Active() {
		t.Fatal("new transcript reports active")
	}
	if err := tr.SetRoomState(context.Background(), true); err != nil {
		t.Fatalf("SetRoomState(true) error = %v", err)
	}
	if !tr.Active() {
		t.Fatal("transcript not active after activation")
	}
	if len(tr.Messages()) != 1 {
		t.Fatal("activation did not load the existing message")
	}

	// Re-activating is a no-op.
	if err := tr.SetRoomState(context.Background(), true); err != nil {
		t.Fatalf("SetRoomState(true) again error = %v", err)
	}

	if err := tr.SetRoomState(context.Background(), false); err != nil {
		t.Fatalf("SetRoomState(false) error = %v", err)
	}
	if tr.Active() {
		t.Fatal("transcript still active after deactivation")
	}
	if len(tr.Messages()) != 0 {
		t.Fatal("deactivation did not clear the view")
	}

	// Messages sent while detached must not reach the view.
	mustSend(t, svc, "ev1", "u1", "while detached")
	if len(tr.Messages()) != 0 {
		t.Fatal("detached transcript received a push")
	}

	// Reactivation picks the full history back up.
	if err := tr.SetRoomState(context.Background(), true); err != nil {
		t.Fatalf("SetRoomState(true) after detach error = %v", err)
	}
	if len(tr.Messages()) != 2 {
		t.Fatalf("len(Messages()) after reactivation = %d, want 2", len(tr.Messages()))
	}
}

func TestTranscriptClose(t *testing.T) {
	svc, messages := newTestService(t, true)
	tr := NewTranscript("ev1", messages, nil)

	if err := tr.SetRoomState(context.Background(), true); err != nil {
		t.Fatalf("SetRoomState() error = %v", err)
	}

	tr.Close()
	tr.Close()

	mustSend(t, svc, "ev1", "u1", "after close")
	if len(tr.Messages()) != 0 {
		t.Fatal("closed transcript received a push")
	}
	if err := tr.SetRoomState(context.Background(), true); err == nil {
		t.Fatal("SetRoomState() on a closed transcript did not fail")
	}
}
