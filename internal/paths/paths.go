// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names used when nothing overrides them.
const (
	DefaultConfigDirName = ".tracker"
	DefaultDataDirName   = ".tracker-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TRACKER_CONFIG_DIR"
	EnvDataDir   = "TRACKER_DATA_DIR"
)

// appName is the per-user directory name under the platform config root.
const appName = "tracker"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// UserConfigDir returns the per-user configuration directory. The CLI reads
// config.yaml from it when the project config directory has none.
//
// Linux:   $XDG_CONFIG_HOME/tracker (fallback ~/.config/tracker)
// macOS:   ~/Library/Application Support/tracker
// Windows: %APPDATA%/tracker
func UserConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > TRACKER_CONFIG_DIR env > $(CWD)/.tracker.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdJoin(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configValue > TRACKER_DATA_DIR env > $(CWD)/.tracker-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdJoin(DefaultDataDirName)
}

func cwdJoin(name string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
