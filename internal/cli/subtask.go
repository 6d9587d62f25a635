package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

func newSubtaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage subtasks",
	}
	cmd.AddCommand(
		newSubtaskCreateCmd(a),
		newSubtaskUpdateCmd(a),
		newSubtaskGetCmd(a),
		newSubtaskListCmd(a),
		newSubtaskDeleteCmd(a),
		newSubtaskClearCmd(a),
	)
	return cmd
}

func newSubtaskCreateCmd(a *app) *cobra.Command {
	var (
		f      entityFlags
		epicID int
	)
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a subtask under an epic",
		Example: `  tracker subtask create --epic 2 --name "tag release" --status done`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := types.Subtask{EpicID: epicID}
			if err := f.apply(cmd, &st.Task); err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				id, err := m.CreateSubtask(st)
				if err != nil {
					return err
				}
				if id == 0 {
					return fmt.Errorf("epic %d: %w", epicID, errNotFound)
				}
				return a.printCreated(cmd.OutOrStdout(), types.KindSubtask, id)
			})
		},
	}
	f.register(cmd, true)
	cmd.Flags().IntVar(&epicID, "epic", 0, "owning epic id (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("epic")
	return cmd
}

func newSubtaskUpdateCmd(a *app) *cobra.Command {
	var f entityFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a subtask; its epic is fixed at creation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				st, ok := findSubtask(m.GetSubtasks(), id)
				if !ok {
					return fmt.Errorf("subtask %d: %w", id, errNotFound)
				}
				if err := f.apply(cmd, &st.Task); err != nil {
					return err
				}
				if err := m.UpdateSubtask(st); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Updated subtask: %d", id)
				return nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newSubtaskGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a subtask and record it in the view history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				st, err := m.GetSubtaskByID(id)
				if err != nil {
					return err
				}
				if st == nil {
					return fmt.Errorf("subtask %d: %w", id, errNotFound)
				}
				return a.printEntity(cmd.OutOrStdout(), st)
			})
		},
	}
}

func newSubtaskListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all subtasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				return a.printEntities(cmd.OutOrStdout(), subtasksAsEntities(m.GetSubtasks()), "subtask")
			})
		},
	}
}

func newSubtaskDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				if _, ok := findSubtask(m.GetSubtasks(), id); !ok {
					return fmt.Errorf("subtask %d: %w", id, errNotFound)
				}
				if err := m.DeleteSubtaskByID(id); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Deleted subtask: %d", id)
				return nil
			})
		},
	}
}

func newSubtaskClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every subtask; epics remain with status NEW",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				if err := m.DeleteAllSubtasks(); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Deleted all subtasks")
				return nil
			})
		},
	}
}

func findSubtask(ss []types.Subtask, id int) (types.Subtask, bool) {
	for _, s := range ss {
		if s.ID == id {
			return s, true
		}
	}
	return types.Subtask{}, false
}
