// Package call coordinates the single shared video-call session per event:
// start, join and end against the document store, bystander notification,
// and the client-side session state machine over an opaque conferencing
// transport.
package call

// Transport events. The conferencing backend is opaque; these are the only
// signals the coordinator reacts to.
const (
	EventJoined            = "joined"
	EventLeft              = "left"
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventReadyToClose      = "ready-to-close"
)

// CommandHangup ends the local client's media connection.
const CommandHangup = "hangup"

// EventFunc handles one transport event occurrence.
type EventFunc func()

// Handle is a live connection to one conference room.
type Handle interface {
	// On registers cb for a transport event. Multiple callbacks per event
	// are allowed; registration after Dispose is a no-op.
	On(event string, cb EventFunc)

	// ExecuteCommand sends a command to the conference. Only CommandHangup
	// is used here.
	ExecuteCommand(command string) error

	// Dispose tears down the connection and releases the room. Safe to call
	// more than once.
	Dispose()
}

// TransportConfig carries per-room options passed through to the backend.
type TransportConfig struct {
	StartWithAudioMuted bool
	StartWithVideoMuted bool
}

// Transport opens conference rooms. An open failure is terminal for that
// attempt; callers surface it and do not retry.
type Transport interface {
	Open(roomName, displayName string, cfg TransportConfig) (Handle, error)
}
