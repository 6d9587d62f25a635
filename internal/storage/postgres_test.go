package storage

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envTestDSN names a disposable PostgreSQL database for these tests.
const envTestDSN = "TRACKER_TEST_PG_DSN"

func openTestPostgres(t *testing.T, keep int) *PostgresBackend {
	t.Helper()
	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s not set", envTestDSN)
	}
	ctx := context.Background()
	b, err := OpenPostgres(ctx, dsn, keep)
	require.NoError(t, err)
	_, err = b.pool.Exec(ctx, "TRUNCATE snapshots")
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestPostgresBackendRoundTrip(t *testing.T) {
	b := openTestPostgres(t, 2)
	ctx := context.Background()

	data, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	for i := range 4 {
		require.NoError(t, b.Write(ctx, []byte(fmt.Sprintf("snapshot %d", i))))
	}

	data, err = b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snapshot 3", string(data))

	var n int
	require.NoError(t, b.pool.QueryRow(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&n))
	assert.Equal(t, 2, n)
}
