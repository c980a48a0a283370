package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"primelab/internal/primality/models"
	txcontext "primelab/pkg/platform/tx"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS primality_checks (
	id          TEXT PRIMARY KEY,
	input       TEXT NOT NULL,
	canonical   TEXT NOT NULL,
	digits      INTEGER NOT NULL,
	outcome     TEXT NOT NULL,
	reason      TEXT NOT NULL,
	small_prime BIGINT NOT NULL DEFAULT 0,
	divisor     BIGINT NOT NULL DEFAULT 0,
	witness     BIGINT NOT NULL DEFAULT 0,
	residue     TEXT NOT NULL DEFAULT '',
	tested      BIGINT[] NOT NULL DEFAULT '{}',
	skipped     BIGINT[] NOT NULL DEFAULT '{}',
	checked_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS primality_checks_checked_at_idx ON primality_checks (checked_at DESC)`,
}

// PostgresStore persists check history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed history store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the history table and its index in one transaction.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.ExecutorFrom(ctx, s.db)
		for _, stmt := range schema {
			if _, err := exec.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

// Append and Recent join a transaction carried by ctx, if any.

// Append records a check. Re-appending the same ID is a no-op.
func (s *PostgresStore) Append(ctx context.Context, rec *models.CheckRecord) error {
	if rec == nil {
		return fmt.Errorf("check record is required")
	}
	query := `
		INSERT INTO primality_checks (
			id, input, canonical, digits, outcome, reason,
			small_prime, divisor, witness, residue, tested, skipped, checked_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`
	v := rec.Verdict
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		rec.ID, rec.Input, rec.Canonical, rec.Digits, v.Outcome, v.Reason,
		v.SmallPrime, v.Divisor, v.Witness, v.Residue,
		pq.Array(nonNil(v.Tested)), pq.Array(nonNil(v.Skipped)), rec.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("append check: %w", err)
	}
	return nil
}

// Recent returns up to limit checks, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.CheckRecord, error) {
	if limit <= 0 {
		return []*models.CheckRecord{}, nil
	}
	query := `
		SELECT id, input, canonical, digits, outcome, reason,
			small_prime, divisor, witness, residue, tested, skipped, checked_at
		FROM primality_checks
		ORDER BY checked_at DESC, id DESC
		LIMIT $1
	`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	out := make([]*models.CheckRecord, 0, limit)
	for rows.Next() {
		var rec models.CheckRecord
		v := &rec.Verdict
		if err := rows.Scan(
			&rec.ID, &rec.Input, &rec.Canonical, &rec.Digits, &v.Outcome, &v.Reason,
			&v.SmallPrime, &v.Divisor, &v.Witness, &v.Residue,
			pq.Array(&v.Tested), pq.Array(&v.Skipped), &rec.CheckedAt,
		); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		if len(v.Tested) == 0 {
			v.Tested = nil
		}
		if len(v.Skipped) == 0 {
			v.Skipped = nil
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	return out, nil
}

func nonNil(xs []int64) []int64 {
	if xs == nil {
		return []int64{}
	}
	return xs
}
