// Package postgres implements the training repositories on PostgreSQL. Every
// per-user statement runs in a transaction scoped with app.user_id so row level
// security policies apply.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

var (
	_ domain.RecoveryRepository       = (*Store)(nil)
	_ domain.ReadinessRepository      = (*Store)(nil)
	_ domain.WorkoutHistoryRepository = (*Store)(nil)
	_ domain.ExerciseCatalog          = (*Store)(nil)
	_ domain.PlanRepository           = (*Store)(nil)
)

// Store provides Postgres-backed persistence for recovery logs, readiness scores,
// workout history, the exercise catalog, plans and their outbox events.
type Store struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewStore constructs a Store. DATE columns are returned as midnight in loc.
func NewStore(pool *pgxpool.Pool, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{pool: pool, loc: loc}
}

// Connect opens a pool and waits up to timeout for the database to accept
// connections.
func Connect(ctx context.Context, url string, timeout time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err = pool.Ping(ctx)
		if err == nil {
			return pool, nil
		}
		if time.Now().After(deadline) {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// inUserTx runs fn in a transaction with app.user_id set to userID.
func (s *Store) inUserTx(ctx context.Context, userID string, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", userID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// localDay re-anchors a scanned DATE value at midnight in the store location.
func (s *Store) localDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

type scanner interface {
	Scan(dest ...any) error
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
