package models

import "time"

// CallSession is the single shared call record for an event. The document id
// is the event id, which is what guarantees at most one live session per
// event: a second start collides on the key instead of creating a duplicate.
type CallSession struct {
	EventID       string    `bson:"_id" json:"event_id"`
	SessionID     string    `bson:"session_id" json:"session_id"`
	StartedBy     string    `bson:"started_by" json:"started_by"`
	StartedByName string    `bson:"started_by_name" json:"started_by_name"`
	StartedAt     time.Time `bson:"started_at" json:"started_at"`
	Participants  []string  `bson:"participants" json:"participants"`
}

// Key identifies a live session instance. Back-to-back sessions for the same
// event stay distinguishable, which keeps bystander notifications
// one-per-session.
func (s CallSession) Key() string {
	return s.EventID + "/" + s.SessionID
}
