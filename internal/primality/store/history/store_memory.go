package history

import (
	"context"
	"sync"

	"primelab/internal/primality/models"
)

// DefaultCapacity bounds the in-memory history.
const DefaultCapacity = 1000

// InMemoryStore keeps the most recent checks in a fixed-size ring.
type InMemoryStore struct {
	mu    sync.RWMutex
	ring  []models.CheckRecord
	next  int
	count int
}

// NewInMemoryStore creates a history holding at most capacity checks.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryStore{ring: make([]models.CheckRecord, capacity)}
}

// Append records a check, overwriting the oldest once full. A nil record is a no-op.
func (s *InMemoryStore) Append(_ context.Context, rec *models.CheckRecord) error {
	if rec == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = *rec
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	return nil
}

// Recent returns up to limit checks, newest first.
func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]*models.CheckRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, s.count)
	if n <= 0 {
		return []*models.CheckRecord{}, nil
	}
	out := make([]*models.CheckRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		rec := s.ring[idx]
		out = append(out, &rec)
	}
	return out, nil
}
