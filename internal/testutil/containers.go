// Package testutil starts the backing services integration tests run
// against. Containers are shared per test binary and skipped with -short.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lajospolya/popular-vote/internal/migrations"
	"github.com/lajospolya/popular-vote/internal/migrations/seed"
	"github.com/lajospolya/popular-vote/internal/redisclient"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var (
	pgOnce sync.Once
	pgPool *pgxpool.Pool
	pgErr  error

	redisOnce sync.Once
	redisURI  string
	redisErr  error
)

// Postgres returns a pool on a migrated and seeded database. Every call
// empties the tables tests write to; reference data stays.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	pgOnce.Do(func() {
		pgPool, pgErr = startPostgres(context.Background())
	})
	require.NoError(t, pgErr, "Failed to start PostgreSQL container")

	_, err := pgPool.Exec(context.Background(),
		`TRUNCATE citizen, political_party RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "Failed to reset PostgreSQL tables")
	return pgPool
}

func startPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("popular_vote_test"),
		postgres.WithUsername("vote"),
		postgres.WithPassword("vote"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}
	if err := migrations.UpURL(ctx, dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	geo, err := seed.Load()
	if err != nil {
		return nil, err
	}
	if err := seed.Apply(ctx, pool, geo); err != nil {
		return nil, fmt.Errorf("failed to seed geography: %w", err)
	}
	return pool, nil
}

// Redis returns a traced client on a shared container with an empty
// keyspace.
func Redis(t *testing.T) *redisclient.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	redisOnce.Do(func() {
		ctx := context.Background()
		var container *tcredis.RedisContainer
		container, redisErr = tcredis.Run(ctx, "redis:7-alpine")
		if redisErr != nil {
			return
		}
		redisURI, redisErr = container.ConnectionString(ctx)
	})
	require.NoError(t, redisErr, "Failed to start Redis container")

	opts, err := goredis.ParseURL(redisURI)
	require.NoError(t, err)
	opts.DialTimeout = 5 * time.Second

	raw := goredis.NewClient(opts)
	require.NoError(t, raw.FlushDB(context.Background()).Err())
	t.Cleanup(func() { _ = raw.Close() })

	return redisclient.NewClient(raw)
}
