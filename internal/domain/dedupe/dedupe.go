// Package dedupe defines the interface for idempotency tracking. It is used
// for feedback event idempotency at the HTTP layer and for suppressing
// repeated catalog fetches of the same keyword.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// Used when something was marked as seen but failed to be processed.
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked IDs.
	Size() int64
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of IDs kept in memory; the oldest entries
// are evicted first. A non-positive size means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// inMemoryDeduper implements Deduper with a map plus a FIFO eviction queue.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	fifo    []string // insertion order, only maintained in bounded mode
	maxSize int
}

// NewInMemoryDeduper creates a deduper with configuration options. The
// default is bounded at 50000 entries.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
		seen:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		oldest := d.fifo[0]
		d.fifo = d.fifo[1:]
		delete(d.seen, oldest)
	}
	d.seen[id] = struct{}{}
	if d.maxSize > 0 {
		d.fifo = append(d.fifo, id)
	}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; !exists {
		return
	}
	delete(d.seen, id)
	for i, queued := range d.fifo {
		if queued == id {
			d.fifo = append(d.fifo[:i], d.fifo[i+1:]...)
			break
		}
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
