// Package dedupe tracks ranking submissions for idempotency.
//
// A submission id is the (user, week, position, version) key, so a
// resubmitted unchanged ranking is acknowledged as a duplicate instead
// of being re-evaluated, while an edited ranking (new version) passes.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// defaultMaxSize bounds the submission cache. Volume here is
// per-user-per-week, so a modest bound covers a full season.
const defaultMaxSize = 50000

// Deduper records seen submission IDs to ensure at-most-once evaluation.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// Used when a submission was marked as seen but failed to enqueue
	// (e.g. queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded map plus insertion-
// order list. When full, the newest entry is evicted first, keeping
// long-lived early submissions protected. maxSize <= 0 disables the
// bound entirely.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = most recently recorded
	maxSize int
	size    atomic.Int64
}

// Option applies a configuration option to the deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of IDs to keep in memory.
// maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// NewInMemoryDeduper creates an in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictNewest()
	}

	d.seen[id] = d.order.PushFront(id)
	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen list, allowing it to be retried.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	elem, exists := d.seen[id]
	if !exists {
		return
	}
	d.order.Remove(elem)
	delete(d.seen, id)
	d.size.Add(-1)
}

// evictNewest drops the most recently recorded entry. Must be called
// with d.mu held.
func (d *inMemoryDeduper) evictNewest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	d.order.Remove(front)
	delete(d.seen, id)
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
