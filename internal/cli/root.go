// Package cli implements the tracker command-line interface. It is an
// external caller of the pkg/tracker facade: every command opens the
// persistent manager, runs one or more operations, and closes it.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/tracker/internal/paths"
	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errNotFound reports that a command addressed an id with no entity of the
// requested kind.
var errNotFound = errors.New("not found")

// app holds global flag values and state resolved before any subcommand runs.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	v      *viper.Viper
	logger *slog.Logger
}

// NewRootCmd creates the top-level "tracker" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:     "tracker",
		Short:   "A task tracker with epics, subtasks, and view history",
		Long:    "Tracker stores tasks, epics, and subtasks, derives epic status from\nsubtasks, and remembers recently viewed entities.",
		Version: tracker.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.tracker)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.tracker-db)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newTaskCmd(a))
	root.AddCommand(newEpicCmd(a))
	root.AddCommand(newSubtaskCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newAllCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tracker:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps storage failures to exitSysError and everything else to
// exitUserError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrSaveFailed), errors.Is(err, types.ErrLoadFailed):
		return exitSysError
	default:
		return exitUserError
	}
}

// setup resolves the config directory, loads config.yaml, and installs the
// logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = configDir

	a.v, err = loadConfig(configDir)
	if err != nil {
		return err
	}

	a.logger, err = newLogger(cmd.ErrOrStderr(), a.v.GetString(cfgKeyLogLevel))
	if err != nil {
		return err
	}
	return nil
}

// resolveDataDir applies --data-dir > config data_dir > TRACKER_DATA_DIR >
// $(CWD)/.tracker-db.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.dataDir, a.v.GetString(cfgKeyDataDir))
}

// withManager opens the persistent manager, runs fn, and closes it.
func (a *app) withManager(ctx context.Context, fn func(m *tracker.Persistent) error) error {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := trackerConfig(a.v, dataDir)

	m, err := tracker.Open(ctx, cfg, tracker.WithLogger(a.logger))
	if err != nil {
		return err
	}
	a.logger.Debug("cli: opened tracker", "backend", cfg.Backend, "data_dir", dataDir)

	runErr := fn(m)
	if err := m.Close(); err != nil && runErr == nil {
		return fmt.Errorf("close tracker: %w", err)
	}
	return runErr
}
