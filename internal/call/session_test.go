package call

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeHandle struct {
	mu        sync.Mutex
	callbacks map[string][]EventFunc
	commands  []string
	disposed  int
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{callbacks: make(map[string][]EventFunc)}
}

func (h *fakeHandle) On(event string, cb EventFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks[event] = append(h.callbacks[event], cb)
}

func (h *fakeHandle) ExecuteCommand(command string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, command)
	return nil
}

func (h *fakeHandle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disposed++
}

func (h *fakeHandle) fire(event string) {
	h.mu.Lock()
	cbs := append([]EventFunc(nil), h.callbacks[event]...)
	h.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

type fakeTransport struct {
	handle   *fakeHandle
	openErr  error
	lastRoom string
	lastName string
}

func (tr *fakeTransport) Open(roomName, displayName string, cfg TransportConfig) (Handle, error) {
	tr.lastRoom = roomName
	tr.lastName = displayName
	if tr.openErr != nil {
		return nil, tr.openErr
	}
	return tr.handle, nil
}

func dialTestSession(t *testing.T, tr *fakeTransport, opts SessionOptions) *Session {
	t.Helper()
	if opts.RoomPrefix == "" {
		opts.RoomPrefix = "eventbeta"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = time.Hour
	}
	s, err := Dial(tr, "ev42", opts)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	return s
}

func TestDialOpensDerivedRoom(t *testing.T) {
	tr := &fakeTransport{handle: newFakeHandle()}
	s := dialTestSession(t, tr, SessionOptions{DisplayName: "Alice"})

	if tr.lastRoom != "eventbeta-ev42" {
		t.Fatalf("room = %q, want eventbeta-ev42", tr.lastRoom)
	}
	if tr.lastName != "Alice" {
		t.Fatalf("display name = %q, want Alice", tr.lastName)
	}
	if s.Status() != StatusConnecting {
		t.Fatalf("Status() = %v, want StatusConnecting", s.Status())
	}
}

func TestJoinedSignalConnects(t *testing.T) {
	tr := &fakeTransport{handle: newFakeHandle()}
	s := dialTestSession(t, tr, SessionOptions{})

	tr.handle.fire(EventJoined)
	if s.Status() != StatusConnected {
		t.Fatalf("Status() = %v after joined signal, want StatusConnected", s.Status())
	}
}

func TestConnectTimeoutAssumesConnected(t *testing.T) {
	tr := &fakeTransport{handle: newFakeHandle()}
	s := dialTestSession(t, tr, SessionOptions{ConnectTimeout: 10 * time.Millisecond})

	deadline := time.Now().Add(2 * time.Second)
	for s.Status() != StatusConnected {
		if time.Now().After(deadline) {
			t.Fatal("session never assumed connected after the timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOpenFailureIsTerminal(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("script unreachable")}
	s, err := Dial(tr, "ev42", SessionOptions{RoomPrefix: "eventbeta"})
	if err == nil {
		t.Fatal("Dial() did not surface the open failure")
	}
	if s.Status() != StatusFailed {
		t.Fatalf("Status() = %v, want StatusFailed", s.Status())
	}

	// Failed sessions have nothing to hang up.
	s.Hangup()
	if s.Status() != StatusFailed {
		t.Fatalf("Status() = %v after Hangup on failed session, want StatusFailed", s.Status())
	}
}

func TestParticipantCountFromTransportEvents(t *testing.T) {
	tr := &fakeTransport{handle: newFakeHandle()}
	s := dialTestSession(t, tr, SessionOptions{})

	if s.Participants() != 1 {
		t.Fatalf("Participants() = %d, want 1", s.Participants())
	}
	tr.handle.fire(EventParticipantJoined)
	tr.handle.fire(EventParticipantJoined)
	if s.Participants() != 3 {
		t.Fatalf("Participants() = %d after two joins, want 3", s.Participants())
	}
	tr.handle.fire(EventParticipantLeft)
	tr.handle.fire(EventParticipantLeft)
	tr.handle.fire(EventParticipantLeft)
	if s.Participants() != 1 {
		t.Fatalf("Participants() = %d after draining, want floor of 1", s.Participants())
	}
}

func TestHangup(t *testing.T) {
	tr := &fakeTransport{handle: newFakeHandle()}
	var closed int
	s := dialTestSession(t, tr, SessionOptions{OnClose: func() { closed++ }})
	tr.handle.fire(EventJoined)

	s.Hangup()
	if s.Status() != StatusClosed {
		t.Fatalf("Status() = %v after Hangup, want StatusClosed", s.Status())
	}
	if len(tr.handle.commands) != 1 || tr.handle.commands[0] != CommandHangup {
		t.Fatalf("commands = %v, want one hangup", tr.handle.commands)
	}
	if tr.handle.disposed != 1 {
		t.Fatalf("disposed = %d, want 1", tr.handle.disposed)
	}
	if closed != 1 {
		t.Fatalf("onClose fired %d times, want 1", closed)
	}

	// Repeat hangups are no-ops.
	s.Hangup()
	if len(tr.handle.commands) != 1 || tr.handle.disposed != 1 || closed != 1 {
		t.Fatal("second Hangup was not a no-op")
	}
}

func TestReadyToCloseClosesSession(t *testing.T) {
	tr := &fakeTransport{handle: newFakeHandle()}
	var closed int
	s := dialTestSession(t, tr, SessionOptions{OnClose: func() { closed++ }})
	tr.handle.fire(EventJoined)

	tr.handle.fire(EventReadyToClose)
	if s.Status() != StatusClosed {
		t.Fatalf("Status() = %v after ready-to-close, want StatusClosed", s.Status())
	}
	if tr.handle.disposed != 1 || closed != 1 {
		t.Fatalf("disposed = %d, closed = %d, want 1 and 1", tr.handle.disposed, closed)
	}
}
