package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
)

const modulePath = "github.com/mesh-intelligence/tracker"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tracker version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "tracker v%s\nmodule: %s\n", tracker.Version, modulePath)
			return nil
		},
	}
}
