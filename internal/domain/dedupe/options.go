package dedupe

type options struct {
	capacity int
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*options)

// WithCapacity presizes the seen set.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}
