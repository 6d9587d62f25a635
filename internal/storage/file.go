package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Compile-time interface check.
var _ types.Backend = (*FileBackend)(nil)

// FileBackend keeps the snapshot in a single text file.
type FileBackend struct {
	path string
}

// NewFileBackend creates dataDir if needed and returns a backend for
// dataDir/fileName. The file itself is created on the first Write.
func NewFileBackend(dataDir, fileName string) (*FileBackend, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &FileBackend{path: filepath.Join(dataDir, fileName)}, nil
}

// Path returns the snapshot file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Read returns the file contents, or nil if the file does not exist yet.
func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	return data, nil
}

// Write replaces the file atomically.
func (b *FileBackend) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(b.path, data)
}

// Close is a no-op.
func (b *FileBackend) Close() error {
	return nil
}

// writeAtomic writes data to path using the temp-file, fsync, rename
// pattern, so readers never observe a partially written snapshot.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
