package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

func newEpicCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Manage epics; an epic's status is derived from its subtasks",
	}
	cmd.AddCommand(
		newEpicCreateCmd(a),
		newEpicUpdateCmd(a),
		newEpicGetCmd(a),
		newEpicListCmd(a),
		newEpicSubtasksCmd(a),
		newEpicDeleteCmd(a),
		newEpicClearCmd(a),
	)
	return cmd
}

func newEpicCreateCmd(a *app) *cobra.Command {
	var f entityFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an epic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var e types.Epic
			if err := f.apply(cmd, &e.Task); err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				id, err := m.CreateEpic(e)
				if err != nil {
					return err
				}
				return a.printCreated(cmd.OutOrStdout(), types.KindEpic, id)
			})
		},
	}
	f.register(cmd, false)
	cmd.MarkFlagRequired("name")
	return cmd
}

func newEpicUpdateCmd(a *app) *cobra.Command {
	var f entityFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an epic's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				e, ok := findEpic(m.GetEpics(), id)
				if !ok {
					return fmt.Errorf("epic %d: %w", id, errNotFound)
				}
				if err := f.apply(cmd, &e.Task); err != nil {
					return err
				}
				if err := m.UpdateEpic(e); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Updated epic: %d", id)
				return nil
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

func newEpicGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an epic and record it in the view history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				e, err := m.GetEpicByID(id)
				if err != nil {
					return err
				}
				if e == nil {
					return fmt.Errorf("epic %d: %w", id, errNotFound)
				}
				return a.printEntity(cmd.OutOrStdout(), e)
			})
		},
	}
}

func newEpicListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all epics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				return a.printEntities(cmd.OutOrStdout(), epicsAsEntities(m.GetEpics()), "epic")
			})
		},
	}
}

func newEpicSubtasksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subtasks <id>",
		Short: "List the subtasks of an epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				if _, ok := findEpic(m.GetEpics(), id); !ok {
					return fmt.Errorf("epic %d: %w", id, errNotFound)
				}
				subs := m.GetSubtasksByEpicID(id)
				return a.printEntities(cmd.OutOrStdout(), subtasksAsEntities(subs), "subtask")
			})
		},
	}
}

func newEpicDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an epic and all of its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				if _, ok := findEpic(m.GetEpics(), id); !ok {
					return fmt.Errorf("epic %d: %w", id, errNotFound)
				}
				if err := m.DeleteEpicByID(id); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Deleted epic: %d", id)
				return nil
			})
		},
	}
}

func newEpicClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every epic and subtask",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				if err := m.DeleteAllEpics(); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Deleted all epics")
				return nil
			})
		},
	}
}

func findEpic(es []types.Epic, id int) (types.Epic, bool) {
	for _, e := range es {
		if e.ID == id {
			return e, true
		}
	}
	return types.Epic{}, false
}
