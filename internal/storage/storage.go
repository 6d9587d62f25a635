// Package storage implements the snapshot backends: a plain text file
// (default), SQLite, and PostgreSQL. Every backend stores the codec's text
// verbatim.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Open validates cfg and returns the backend it names. The caller must
// Close the backend.
func Open(ctx context.Context, cfg types.Config) (types.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendFile:
		return NewFileBackend(cfg.DataDir, cfg.GetFileName())
	case types.BackendSQLite:
		return OpenSQLite(ctx, cfg.DataDir, cfg.GetKeepSnapshots())
	case types.BackendPostgres:
		return OpenPostgres(ctx, cfg.DSN, cfg.GetKeepSnapshots())
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
	}
}

// generateUUID generates a new UUID v7 for snapshot row ids. v7 ids sort by
// creation time, which the SQL backends rely on to find the newest row.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
