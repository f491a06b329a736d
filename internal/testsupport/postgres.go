//go:build integration

// Package testsupport starts throwaway infrastructure for integration tests.
package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/persistence/postgres"
)

// StartPostgres runs a disposable Postgres container with every migration applied.
// The pool and container are released when the test finishes.
func StartPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("pulsely"),
		postgrescontainer.WithUsername("pulsely"),
		postgrescontainer.WithPassword("pulsely"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.Connect(ctx, connStr, 30*time.Second)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}
