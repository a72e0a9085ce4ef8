// Package queue provides the in-memory work queue that feeds the fetch
// pool.
package queue

import (
	"context"
	"sync"
)

const defaultCapacity = 10000

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue adds an item. It returns false when the queue is full, closed,
	// or ctx is done.
	Enqueue(ctx context.Context, item T) bool

	// Dequeue returns the channel items arrive on. It is closed by Close.
	Dequeue() <-chan T

	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue[T any] struct {
	items    chan T
	capacity int
	onSize   func(int)

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue holding at most the configured capacity.
func NewInMemoryQueue[T any](opts ...Option) *InMemoryQueue[T] {
	o := options{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	return &InMemoryQueue[T]{
		items:    make(chan T, o.capacity),
		capacity: o.capacity,
		onSize:   o.onSize,
	}
}

// Enqueue adds an item without blocking.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		return false
	}
	select {
	case q.items <- item:
		q.observe()
		return true
	default:
		return false
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue[T]) Dequeue() <-chan T {
	return q.items
}

// Len returns the number of queued items.
func (q *InMemoryQueue[T]) Len() int {
	q.observe()
	return len(q.items)
}

// Close stops new items from being accepted. Items already queued can
// still be drained. Closing twice is a no-op.
func (q *InMemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue[T]) observe() {
	if q.onSize != nil {
		q.onSize(len(q.items))
	}
}
