package dedupe

// Option applies a configuration option to the in-memory Deduper.
type Option func(*memoryDeduper)

// WithMaxSize bounds the number of keys kept. Once full, the oldest key is
// evicted to make room. Zero or negative keeps every key.
func WithMaxSize(maxSize int) Option {
	return func(d *memoryDeduper) {
		d.maxSize = maxSize
	}
}
