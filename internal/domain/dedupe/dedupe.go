// Package dedupe tracks keys already observed during one analysis run.
//
// A Deduper is created per run and passed to the stages that need it, so two
// runs in the same process never share state.
package dedupe

import (
	"container/list"
	"sync"
)

// Deduper records keys so each one is handled at most once.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// when it was not. The check and the insert happen under one lock.
	SeenAndRecord(key string) bool

	// Forget removes key so a later SeenAndRecord treats it as new.
	Forget(key string)

	Size() int
}

// memoryDeduper keeps keys in a map. When bounded, the oldest key is evicted
// first once the limit is reached.
type memoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int // 0 or negative means unbounded
}

// New returns an in-memory Deduper. It is unbounded unless WithMaxSize says
// otherwise.
func New(opts ...Option) Deduper {
	d := &memoryDeduper{
		seen:  make(map[string]*list.Element),
		order: list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *memoryDeduper) SeenAndRecord(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *memoryDeduper) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *memoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// evictOldest must be called with d.mu held.
func (d *memoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(string))
}
