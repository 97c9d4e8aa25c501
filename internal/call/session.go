package call

import (
	"fmt"
	"sync"
	"time"

	"eventbeta/pkg/logger"
)

// SessionStatus is the local client's connection phase.
type SessionStatus int

const (
	// StatusConnecting is the initial phase after Open succeeds, while the
	// joined signal is awaited.
	StatusConnecting SessionStatus = iota

	// StatusConnected means the joined signal arrived, or the connect
	// timeout elapsed and the session was assumed connected. The assumption
	// favors availability: a stuck indicator is worse than an optimistic
	// one.
	StatusConnected

	// StatusClosed is terminal: the client hung up or the transport
	// signalled ready-to-close.
	StatusClosed

	// StatusFailed is terminal: the transport could not be opened. Manual
	// close only, no retry.
	StatusFailed
)

// Session is one client's attachment to a conference room. It tracks the
// connection phase and the derived participant count; the shared CallSession
// record stays with the Coordinator.
type Session struct {
	eventID string
	handle  Handle
	counter *Counter

	mu      sync.Mutex
	status  SessionStatus
	timer   *time.Timer
	onClose func()
}

// SessionOptions configures Dial.
type SessionOptions struct {
	RoomPrefix     string
	DisplayName    string
	ConnectTimeout time.Duration
	Transport      TransportConfig

	// OnClose fires once when the session leaves the connected phase via
	// hangup or ready-to-close. Optional.
	OnClose func()
}

// Dial opens the event's conference room and drives the local connection
// state machine. An open failure is terminal: the returned session is in
// StatusFailed with no transport attached.
func Dial(transport Transport, eventID string, opts SessionOptions) (*Session, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	s := &Session{
		eventID: eventID,
		counter: NewCounter(),
		status:  StatusConnecting,
		onClose: opts.OnClose,
	}

	room := RoomName(opts.RoomPrefix, eventID)
	handle, err := transport.Open(room, opts.DisplayName, opts.Transport)
	if err != nil {
		s.status = StatusFailed
		logger.LogCallEvent("call_transport_failed", eventID, "", map[string]interface{}{
			"room": room,
		})
		return s, fmt.Errorf("call: failed to open transport: %w", err)
	}
	s.handle = handle

	handle.On(EventJoined, s.markConnected)
	handle.On(EventParticipantJoined, s.counter.Joined)
	handle.On(EventParticipantLeft, s.counter.Left)
	handle.On(EventLeft, s.close)
	handle.On(EventReadyToClose, s.close)

	s.mu.Lock()
	s.timer = time.AfterFunc(opts.ConnectTimeout, s.markConnected)
	s.mu.Unlock()

	return s, nil
}

// Status returns the current connection phase.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Participants returns the locally derived participant count.
func (s *Session) Participants() int {
	return s.counter.Count()
}

// Hangup disconnects the local client and disposes the transport. It never
// deletes the shared session record; ending the call for everyone is the
// Coordinator's owner-gated End.
func (s *Session) Hangup() {
	s.mu.Lock()
	if s.status == StatusClosed || s.status == StatusFailed {
		s.mu.Unlock()
		return
	}
	handle := s.handle
	s.mu.Unlock()

	if handle != nil {
		if err := handle.ExecuteCommand(CommandHangup); err != nil {
			logger.WithError(err).Warn("hangup command failed")
		}
	}
	s.close()
}

func (s *Session) markConnected() {
	s.mu.Lock()
	if s.status != StatusConnecting {
		s.mu.Unlock()
		return
	}
	s.status = StatusConnected
	s.stopTimerLocked()
	s.mu.Unlock()

	logger.LogCallEvent("call_connected", s.eventID, "", nil)
}

func (s *Session) close() {
	s.mu.Lock()
	if s.status == StatusClosed || s.status == StatusFailed {
		s.mu.Unlock()
		return
	}
	s.status = StatusClosed
	s.stopTimerLocked()
	handle := s.handle
	s.handle = nil
	onClose := s.onClose
	s.onClose = nil
	s.mu.Unlock()

	if handle != nil {
		handle.Dispose()
	}
	if onClose != nil {
		onClose()
	}
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
