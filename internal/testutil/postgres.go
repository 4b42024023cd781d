package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/pkg/database"
)

// migrateLock serializes Migrate across test packages sharing one database.
const migrateLock = 7301

// Postgres returns a migrated pool for integration tests. TEST_DATABASE_URL is
// used when set; otherwise a throwaway postgres container is started. The test
// is skipped in -short mode or when neither is available.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in short mode")
	}
	ctx := context.Background()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = startPostgres(ctx, t)
	}

	pool, err := database.NewPostgresPool(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()
	_, err = conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrateLock)
	require.NoError(t, err)
	err = database.Migrate(ctx, pool, zap.NewNop())
	_, _ = conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, migrateLock)
	require.NoError(t, err)

	return pool
}

// Truncate empties the named tables before a test uses them.
func Truncate(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	for _, table := range tables {
		_, err := pool.Exec(context.Background(), "TRUNCATE "+table)
		require.NoError(t, err)
	}
}

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()
	tc.SkipIfProviderIsNotHealthy(t)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "speakers",
			"POSTGRES_PASSWORD": "speakers",
			"POSTGRES_DB":       "speakers",
		},
		// The server restarts once after init; the second line is the real one.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://speakers:speakers@%s:%s/speakers?sslmode=disable", host, port.Port())
}
