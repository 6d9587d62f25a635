package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
)

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recently viewed entities, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				return a.printEntities(cmd.OutOrStdout(), m.GetHistory(), "view")
			})
		},
	}
}

func newAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every task, epic, and subtask",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				return a.printEntities(cmd.OutOrStdout(), m.GetAllTasks(), "record")
			})
		},
	}
}
