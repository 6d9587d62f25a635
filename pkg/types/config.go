package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for opening a persistent
// tracker.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	FileName string `json:"file_name,omitempty" yaml:"file_name,omitempty"`

	// DSN is the connection string for the postgres backend.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`

	// KeepSnapshots bounds how many snapshot rows the SQL backends retain.
	// Zero means DefaultKeepSnapshots.
	KeepSnapshots int `json:"keep_snapshots,omitempty" yaml:"keep_snapshots,omitempty"`

	// RecomputeEpicStatus re-derives every epic's status after a load instead
	// of trusting the persisted value.
	RecomputeEpicStatus bool `json:"recompute_epic_status,omitempty" yaml:"recompute_epic_status,omitempty"`

	// Timeout bounds each backend read or write. Zero means no deadline.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Supported backend names.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Defaults applied by the accessors below.
const (
	DefaultFileName      = "tasks.csv"
	DefaultKeepSnapshots = 10
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data directory must not be empty")
	ErrDSNEmpty       = errors.New("postgres backend requires a dsn")
	ErrKeepInvalid    = errors.New("keep_snapshots must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendFile:     true,
	BackendSQLite:   true,
	BackendPostgres: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Backend {
	case BackendFile, BackendSQLite:
		if c.DataDir == "" {
			return ErrDataDirEmpty
		}
	case BackendPostgres:
		if c.DSN == "" {
			return ErrDSNEmpty
		}
	}
	if c.KeepSnapshots < 0 {
		return ErrKeepInvalid
	}
	return nil
}

// GetFileName returns the snapshot file name, defaulting to DefaultFileName.
func (c Config) GetFileName() string {
	if c.FileName == "" {
		return DefaultFileName
	}
	return c.FileName
}

// GetKeepSnapshots returns the SQL retention bound, defaulting to
// DefaultKeepSnapshots.
func (c Config) GetKeepSnapshots() int {
	if c.KeepSnapshots <= 0 {
		return DefaultKeepSnapshots
	}
	return c.KeepSnapshots
}
