package repository

// Option applies a configuration option to the RunStore.
type Option func(*RunStore)

// WithRetention keeps the last n published runs addressable by id.
// The latest run is always kept.
func WithRetention(n int) Option {
	return func(s *RunStore) {
		if n > 0 {
			s.retention = n
		}
	}
}
