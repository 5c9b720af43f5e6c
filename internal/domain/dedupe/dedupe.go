// Package dedupe tracks race results that are already queued so that a
// repeated submission is not scored twice while the first one is pending.
package dedupe

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
)

// Deduper records submission keys for at-most-once enqueueing.
type Deduper interface {
	// SeenAndRecord reports whether key is already recorded and records it
	// if not. The check and the write are atomic.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key. Callers release a key once its result has been
	// processed or could not be enqueued.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// ResultKey identifies a result by its canonical race and finishing order.
// Labels that normalize to the same race produce the same key.
func ResultKey(result model.RaceResult) string {
	return raceid.NormalizeForComparison(result.RaceID) + "|" + strings.Join(result.DriverIDs, ",")
}

// inMemoryDeduper keeps keys in a map. When bounded, insertion order is
// tracked in a list and the oldest key is evicted first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper. The default bound is 1024 keys.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: 1024}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(key)
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.seen[key]
	if !ok {
		return
	}
	delete(d.seen, key)
	d.order.Remove(el)
	d.size.Add(-1)
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	key, _ := d.order.Remove(front).(string)
	delete(d.seen, key)
	d.size.Add(-1)
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
