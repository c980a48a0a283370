package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"primelab/internal/primality/models"
	"primelab/pkg/platform/sentinel"
)

type cachedVerdict struct {
	key      string
	record   models.VerdictRecord
	storedAt time.Time
}

// InMemoryCache is a TTL cache bounded by entry count; the least recently
// stored entry is evicted first.
type InMemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = newest
	ttl      time.Duration
	capacity int
	clock    func() time.Time
}

// InMemoryOption configures an InMemoryCache.
type InMemoryOption func(*InMemoryCache)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(c *InMemoryCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewInMemoryCache creates a cache holding at most capacity verdicts for ttl.
// A non-positive capacity means unbounded.
func NewInMemoryCache(ttl time.Duration, capacity int, opts ...InMemoryOption) *InMemoryCache {
	c := &InMemoryCache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		ttl:      ttl,
		capacity: capacity,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached verdict or sentinel.ErrNotFound if absent or expired.
func (c *InMemoryCache) Get(_ context.Context, key string) (*models.VerdictRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cached := el.Value.(*cachedVerdict)
	if c.clock().Sub(cached.storedAt) >= c.ttl {
		c.removeElement(el)
		return nil, sentinel.ErrNotFound
	}
	rec := cached.record
	return &rec, nil
}

// Set stores a verdict. A nil record is a no-op.
func (c *InMemoryCache) Set(_ context.Context, key string, rec *models.VerdictRecord) error {
	if rec == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeElement(el)
	}
	el := c.order.PushFront(&cachedVerdict{key: key, record: *rec, storedAt: c.clock()})
	c.entries[key] = el

	for c.capacity > 0 && c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *InMemoryCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cachedVerdict).key)
}
