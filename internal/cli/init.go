package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize tracker configuration and storage",
		Long:  "Create the configuration directory and config.yaml, then open the configured\nbackend once so its data directory, file, or table exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}

			dataDir, err := a.resolveDataDir()
			if err != nil {
				return fmt.Errorf("resolve data dir: %w", err)
			}
			created, err := writeConfigIfMissing(a.configDir, dataDir)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if created {
				// Pick up the file just written.
				if a.v, err = loadConfig(a.configDir); err != nil {
					return err
				}
			}

			err = a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				return m.Save()
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Tracker initialized successfully")
			return nil
		},
	}
}
