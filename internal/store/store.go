// Package store defines the realtime document store contract the chat and
// call subsystems are built on: per-document create/update/delete plus
// push-based subscriptions that deliver the whole ordered snapshot on every
// change. Subscribers replace their local state wholesale; the store's order
// is the only order.
package store

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned when a document id does not exist.
	ErrNotFound = errors.New("store: document not found")

	// ErrExists is returned by Create when the document id is already taken.
	ErrExists = errors.New("store: document already exists")
)

// Filter selects documents by exact field match.
type Filter map[string]interface{}

// SnapshotFunc receives the full ordered set of matching documents. It is
// invoked once immediately on subscribe and again after every change.
type SnapshotFunc[T any] func(docs []T)

// Collection is one named document collection in the store. All operations
// are asynchronous with respect to other clients and may fail with a
// transport error.
type Collection[T any] interface {
	// Create inserts a new document under id. Fails with ErrExists if the
	// id is taken, which is how single-record invariants are enforced.
	Create(ctx context.Context, id string, doc T) error

	// Update applies a partial field update to an existing document.
	Update(ctx context.Context, id string, fields Filter) error

	// Delete removes a document permanently. No tombstone is kept.
	Delete(ctx context.Context, id string) error

	// GetOne fetches a single document by id.
	GetOne(ctx context.Context, id string) (T, error)

	// Subscribe registers fn for ordered snapshots of the documents
	// matching filter. The returned subscription must be released with
	// Unsubscribe when the owning view is torn down.
	Subscribe(ctx context.Context, filter Filter, fn SnapshotFunc[T]) (*Subscription, error)
}

// Subscription is the cancellation handle for one live subscription.
type Subscription struct {
	cancel func()
	once   sync.Once
}

// NewSubscription wraps a cancel function. Used by store implementations.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe releases the subscription. Safe to call more than once; after
// it returns no further snapshots are delivered.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}
