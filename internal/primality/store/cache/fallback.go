package cache

import (
	"context"
	"errors"
	"log/slog"

	"primelab/internal/primality/models"
	"primelab/internal/primality/ports"
	"primelab/pkg/platform/circuit"
	"primelab/pkg/platform/sentinel"
)

// FallbackCache routes to a primary cache (Redis) while it is healthy and to
// an in-process fallback while the breaker is open. While open, every call
// still tries the primary so the breaker can close again.
type FallbackCache struct {
	primary  ports.VerdictCache
	fallback ports.VerdictCache
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

// NewFallbackCache wires a primary and a fallback behind breaker.
func NewFallbackCache(primary, fallback ports.VerdictCache, breaker *circuit.Breaker, logger *slog.Logger) *FallbackCache {
	if breaker == nil {
		breaker = circuit.New("verdict-cache")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackCache{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

// Get reads from the primary; a miss counts as a success.
func (c *FallbackCache) Get(ctx context.Context, key string) (*models.VerdictRecord, error) {
	rec, err := c.primary.Get(ctx, key)
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		if usePrimary := c.recordSuccess(ctx); usePrimary {
			return rec, err
		}
		return c.fallback.Get(ctx, key)
	}
	c.recordFailure(ctx, err)
	return c.fallback.Get(ctx, key)
}

// Set writes to the primary and, while degraded, to the fallback as well so
// that reads served from the fallback stay warm.
func (c *FallbackCache) Set(ctx context.Context, key string, rec *models.VerdictRecord) error {
	err := c.primary.Set(ctx, key, rec)
	if err == nil {
		if usePrimary := c.recordSuccess(ctx); usePrimary {
			return nil
		}
		return c.fallback.Set(ctx, key, rec)
	}
	c.recordFailure(ctx, err)
	return c.fallback.Set(ctx, key, rec)
}

// Degraded reports whether reads are being served by the fallback.
func (c *FallbackCache) Degraded() bool {
	return c.breaker.IsOpen()
}

func (c *FallbackCache) recordSuccess(ctx context.Context) bool {
	usePrimary, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.logger.InfoContext(ctx, "verdict cache primary recovered", "breaker", c.breaker.Name())
	}
	return usePrimary
}

func (c *FallbackCache) recordFailure(ctx context.Context, err error) {
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.WarnContext(ctx, "verdict cache primary unavailable, using fallback",
			"breaker", c.breaker.Name(),
			"error", err,
		)
	}
}
