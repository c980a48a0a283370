package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"primelab/internal/primality/models"
	"primelab/pkg/platform/sentinel"
)

// RedisCache shares verdicts between instances. Values are JSON encoded
// VerdictRecords stored with SET ... EX.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed verdict cache.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns sentinel.ErrNotFound when the key is absent or expired.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.VerdictRecord, error) {
	raw, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get verdict: %w", err)
	}
	var rec models.VerdictRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode cached verdict: %w", err)
	}
	return &rec, nil
}

// Set stores a verdict with the configured TTL. A nil record is a no-op.
func (c *RedisCache) Set(ctx context.Context, key string, rec *models.VerdictRecord) error {
	if rec == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set verdict: %w", err)
	}
	return nil
}
