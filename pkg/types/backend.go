package types

import "context"

// Backend stores and retrieves the encoded snapshot text. Backends never
// interpret the bytes; the codec owns the format.
type Backend interface {
	// Read returns the most recently written snapshot. It returns nil and no
	// error when nothing has been written yet.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the current snapshot with data.
	Write(ctx context.Context, data []byte) error

	// Close releases backend resources. Idempotent.
	Close() error
}
