package call

import "sync"

// Counter derives a locally visible participant count from transport events.
// It is best effort: the conferencing backend owns real membership, and
// leave events can arrive in any order, so the count is floored at 1 (the
// local participant is always present while the session lives).
type Counter struct {
	mu    sync.Mutex
	count int
}

// NewCounter starts at 1.
func NewCounter() *Counter {
	return &Counter{count: 1}
}

// Joined records a remote participant arriving.
func (c *Counter) Joined() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

// Left records a remote participant leaving. Never drops below 1.
func (c *Counter) Left() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count > 1 {
		c.count--
	}
}

// Count returns the current participant count.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
