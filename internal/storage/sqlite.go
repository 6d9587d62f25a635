package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// SQLiteFileName is the database file created inside the data directory.
const SQLiteFileName = "tracker.db"

// Compile-time interface check.
var _ types.Backend = (*SQLiteBackend)(nil)

// SQLiteBackend stores snapshots as rows of a SQLite table, keeping the
// newest keep rows.
type SQLiteBackend struct {
	mu   sync.Mutex
	db   *sql.DB
	keep int
}

// OpenSQLite creates dataDir if needed, opens dataDir/tracker.db, and
// ensures the schema exists.
func OpenSQLite(ctx context.Context, dataDir string, keep int) (*SQLiteBackend, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, SQLiteFileName))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createSnapshotsSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteBackend{db: db, keep: keep}, nil
}

// Read returns the newest snapshot, or nil if none has been written.
func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil, sql.ErrConnDone
	}

	var content string
	err := b.db.QueryRowContext(ctx, selectLatest).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return []byte(content), nil
}

// Write inserts data as the newest snapshot and prunes older rows.
func (b *SQLiteBackend) Write(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return sql.ErrConnDone
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, insertSnapshotSQLite, generateUUID(), now, string(data)); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx, pruneSnapshotsSQLite, b.keep); err != nil {
		return fmt.Errorf("pruning snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Count returns the number of retained snapshot rows.
func (b *SQLiteBackend) Count(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return 0, sql.ErrConnDone
	}
	var n int
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting snapshots: %w", err)
	}
	return n, nil
}

// Close closes the database. Idempotent.
func (b *SQLiteBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
