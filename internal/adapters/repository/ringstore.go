package repository

import (
	"context"
	"sync"

	"github.com/nephroworks/cdss/internal/domain/model"
	"github.com/nephroworks/cdss/pkg/metrics"
)

const defaultCapacity = 256

// RingStore is a fixed-capacity in-memory Store. Writes evict the oldest
// entry once the ring is full.
type RingStore struct {
	mu       sync.RWMutex
	capacity int
	buf      []model.CaseSummary
	next     int
	count    int
}

// NewRingStore creates a RingStore with the default capacity.
func NewRingStore(opts ...Option) *RingStore {
	s := &RingStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.buf = make([]model.CaseSummary, s.capacity)
	return s
}

// Record adds a case summary, evicting the oldest when full.
func (s *RingStore) Record(_ context.Context, c model.CaseSummary) {
	s.mu.Lock()
	s.buf[s.next] = c
	s.next = (s.next + 1) % len(s.buf)
	if s.count < len(s.buf) {
		s.count++
	}
	count := s.count
	s.mu.Unlock()

	metrics.UpdateRecentCases(count)
}

// Recent returns up to n summaries, newest first.
func (s *RingStore) Recent(_ context.Context, n int) ([]model.CaseSummary, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.count {
		n = s.count
	}
	out := make([]model.CaseSummary, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.buf)) % len(s.buf)
		out = append(out, s.buf[idx])
	}
	return out, nil
}

// Count returns the number of summaries currently held.
func (s *RingStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
