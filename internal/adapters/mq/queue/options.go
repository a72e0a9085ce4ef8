package queue

type options struct {
	capacity int
	onSize   func(int)
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*options)

// WithCapacity sets the maximum number of queued items.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithSizeObserver is called with the queue length after every enqueue
// and on Len, typically to feed a gauge.
func WithSizeObserver(fn func(int)) Option {
	return func(o *options) {
		o.onSize = fn
	}
}
