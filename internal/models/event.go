package models

// EventStatus values mirror the event-management service. Chat and calls are
// only available while an event is published.
const (
	EventStatusDraft     = "draft"
	EventStatusPending   = "pending_approval"
	EventStatusPublished = "published"
	EventStatusFinished  = "finished"
	EventStatusRejected  = "rejected"
)

// EventRecord is the slice of the external event document this subsystem
// reads. Event CRUD belongs to the event-management service; only the
// room-state gate looks at it here.
type EventRecord struct {
	ID     string `bson:"_id" json:"id"`
	Status string `bson:"status" json:"status"`
}
