package types

import "errors"

// Storage errors. Every backend or file failure is wrapped with one of these
// so callers can match the category with errors.Is and still reach the cause.
var (
	ErrSaveFailed = errors.New("storage save failed")
	ErrLoadFailed = errors.New("storage load failed")
)

// Snapshot parse errors. Decoding stops at the first one.
var (
	ErrMalformedRecord = errors.New("malformed snapshot record")
	ErrInvalidStatus   = errors.New("invalid status value")
	ErrInvalidKind     = errors.New("invalid entity type")
)
