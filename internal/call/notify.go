package call

import "sync"

// Notifier decides when a bystander gets the one-time joinable-call
// notification. A client is a bystander when a session appears that it did
// not start. Each live session notifies at most once per client; dismissal
// is local and never touches the shared record.
type Notifier struct {
	localUID string

	mu      sync.Mutex
	seen    map[string]bool
	pending bool
}

// NewNotifier creates a notifier for the client identified by localUID.
func NewNotifier(localUID string) *Notifier {
	return &Notifier{
		localUID: localUID,
		seen:     make(map[string]bool),
	}
}

// Observe feeds the notifier a call state transition and reports whether the
// joinable notification should be shown now. A session started by the local
// client never notifies; a session already seen never notifies again, even
// after dismissal.
func (n *Notifier) Observe(state State) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !state.Active {
		n.pending = false
		return false
	}

	key := state.Session.Key()
	if n.seen[key] {
		return false
	}
	n.seen[key] = true

	if state.Session.StartedBy == n.localUID {
		return false
	}
	n.pending = true
	return true
}

// Pending reports whether a notification is currently showing.
func (n *Notifier) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending
}

// Dismiss hides the current notification locally. The same live session is
// not re-shown; the next distinct session notifies again.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = false
}
