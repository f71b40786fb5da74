package repository

// Option applies a configuration option to the RingStore.
type Option func(*RingStore)

// WithCapacity bounds the number of summaries retained.
func WithCapacity(n int) Option {
	return func(s *RingStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}
