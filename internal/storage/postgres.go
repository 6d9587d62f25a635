package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Compile-time interface check.
var _ types.Backend = (*PostgresBackend)(nil)

// PostgresBackend stores snapshots as rows of a PostgreSQL table, keeping
// the newest keep rows.
type PostgresBackend struct {
	pool *pgxpool.Pool
	keep int
}

// OpenPostgres connects to dsn and ensures the snapshots table exists.
func OpenPostgres(ctx context.Context, dsn string, keep int) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	b := NewPostgresBackend(pool, keep)
	if err := b.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

// NewPostgresBackend wraps an existing pool. Call EnsureTable before use.
func NewPostgresBackend(pool *pgxpool.Pool, keep int) *PostgresBackend {
	return &PostgresBackend{pool: pool, keep: keep}
}

// EnsureTable creates the snapshots table if it doesn't exist.
func (b *PostgresBackend) EnsureTable(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, createSnapshotsPostgres); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Read returns the newest snapshot, or nil if none has been written.
func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	var content string
	err := b.pool.QueryRow(ctx, selectLatest).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return []byte(content), nil
}

// Write inserts data as the newest snapshot and prunes older rows.
func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().Truncate(time.Microsecond)
	if _, err := tx.Exec(ctx, insertSnapshotPostgres, generateUUID(), now, string(data)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := tx.Exec(ctx, pruneSnapshotsPostgres, b.keep); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Close closes the pool.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
