package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryCollection is an in-process Collection used by tests and local
// development. Documents are kept as bson maps so partial updates behave the
// same way they do against MongoDB. Order is the insertion sequence the
// store assigns on create.
type MemoryCollection[T any] struct {
	mu      sync.Mutex
	seq     int64
	pushSeq int64
	nextSub int64
	docs    map[string]*memoryDoc
	subs    map[int64]*memorySub[T]

	// FailWrites makes every mutation fail. Tests use it to exercise the
	// rollback and surfaced-error paths.
	FailWrites bool
}

type memoryDoc struct {
	seq    int64
	fields bson.M
}

type memorySub[T any] struct {
	filter Filter
	fn     SnapshotFunc[T]

	// deliverMu serializes callback invocations for one subscriber;
	// lastSeq drops a snapshot computed before one already delivered, so
	// concurrent mutations can never leave a subscriber on a stale view.
	deliverMu sync.Mutex
	lastSeq   int64
}

// NewMemoryCollection creates an empty in-memory collection.
func NewMemoryCollection[T any]() *MemoryCollection[T] {
	return &MemoryCollection[T]{
		docs: make(map[string]*memoryDoc),
		subs: make(map[int64]*memorySub[T]),
	}
}

func (c *MemoryCollection[T]) Create(ctx context.Context, id string, doc T) error {
	c.mu.Lock()
	if c.FailWrites {
		c.mu.Unlock()
		return fmt.Errorf("memory store: write failed")
	}
	if _, ok := c.docs[id]; ok {
		c.mu.Unlock()
		return ErrExists
	}
	fields, err := toFields(doc)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	fields["_id"] = id
	c.seq++
	c.docs[id] = &memoryDoc{seq: c.seq, fields: fields}
	pushes := c.collectPushesLocked()
	c.mu.Unlock()

	deliver(pushes)
	return nil
}

func (c *MemoryCollection[T]) Update(ctx context.Context, id string, fields Filter) error {
	c.mu.Lock()
	if c.FailWrites {
		c.mu.Unlock()
		return fmt.Errorf("memory store: write failed")
	}
	doc, ok := c.docs[id]
	if !ok {
		c.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range fields {
		doc.fields[k] = v
	}
	pushes := c.collectPushesLocked()
	c.mu.Unlock()

	deliver(pushes)
	return nil
}

func (c *MemoryCollection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.FailWrites {
		c.mu.Unlock()
		return fmt.Errorf("memory store: write failed")
	}
	if _, ok := c.docs[id]; !ok {
		c.mu.Unlock()
		return ErrNotFound
	}
	delete(c.docs, id)
	pushes := c.collectPushesLocked()
	c.mu.Unlock()

	deliver(pushes)
	return nil
}

func (c *MemoryCollection[T]) GetOne(ctx context.Context, id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out T
	doc, ok := c.docs[id]
	if !ok {
		return out, ErrNotFound
	}
	return decodeFields[T](doc.fields)
}

func (c *MemoryCollection[T]) Subscribe(ctx context.Context, filter Filter, fn SnapshotFunc[T]) (*Subscription, error) {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	sub := &memorySub[T]{filter: filter, fn: fn}
	c.subs[id] = sub
	snapshot := c.snapshotLocked(filter)
	seq := c.pushSeq
	c.mu.Unlock()

	// Initial push so the subscriber starts from the current state. A
	// mutation racing the subscribe may have delivered a newer snapshot
	// already; the sequence guard keeps it from being overwritten.
	deliver([]memoryPush[T]{{sub: sub, seq: seq, snapshot: snapshot}})

	return NewSubscription(func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}), nil
}

type memoryPush[T any] struct {
	sub      *memorySub[T]
	seq      int64
	snapshot []T
}

// collectPushesLocked computes per-subscriber snapshots while the lock is
// held; delivery happens after release so callbacks can read back from the
// store.
func (c *MemoryCollection[T]) collectPushesLocked() []memoryPush[T] {
	c.pushSeq++
	pushes := make([]memoryPush[T], 0, len(c.subs))
	for _, sub := range c.subs {
		pushes = append(pushes, memoryPush[T]{sub: sub, seq: c.pushSeq, snapshot: c.snapshotLocked(sub.filter)})
	}
	return pushes
}

func (c *MemoryCollection[T]) snapshotLocked(filter Filter) []T {
	matched := make([]*memoryDoc, 0, len(c.docs))
	for _, doc := range c.docs {
		if matches(doc.fields, filter) {
			matched = append(matched, doc)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	out := make([]T, 0, len(matched))
	for _, doc := range matched {
		decoded, err := decodeFields[T](doc.fields)
		if err != nil {
			continue
		}
		out = append(out, decoded)
	}
	return out
}

func deliver[T any](pushes []memoryPush[T]) {
	for _, p := range pushes {
		p.sub.deliverMu.Lock()
		if p.seq < p.sub.lastSeq {
			p.sub.deliverMu.Unlock()
			continue
		}
		p.sub.lastSeq = p.seq
		p.sub.fn(p.snapshot)
		p.sub.deliverMu.Unlock()
	}
}

func matches(fields bson.M, filter Filter) bool {
	for k, want := range filter {
		if fmt.Sprint(fields[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func toFields(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("memory store: encode document: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("memory store: decode document: %w", err)
	}
	return fields, nil
}

func decodeFields[T any](fields bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("memory store: encode fields: %w", err)
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("memory store: decode fields: %w", err)
	}
	return out, nil
}
