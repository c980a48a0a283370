//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks VerdictCache,HistoryStore

// Package ports defines the storage interfaces the primality service depends on.
package ports

import (
	"context"

	"primelab/internal/primality/models"
)

// VerdictCache memoizes verdicts by key. Get returns sentinel.ErrNotFound on a miss.
type VerdictCache interface {
	Get(ctx context.Context, key string) (*models.VerdictRecord, error)
	Set(ctx context.Context, key string, rec *models.VerdictRecord) error
}

// HistoryStore keeps completed checks.
type HistoryStore interface {
	// Append records a check.
	Append(ctx context.Context, rec *models.CheckRecord) error

	// Recent returns up to limit checks, newest first.
	Recent(ctx context.Context, limit int) ([]*models.CheckRecord, error)
}
