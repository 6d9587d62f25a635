package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// entityFlags holds the field flags shared by create and update commands.
type entityFlags struct {
	name        string
	description string
	status      string
}

func (f *entityFlags) register(cmd *cobra.Command, withStatus bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	if withStatus {
		cmd.Flags().StringVar(&f.status, "status", "", "status (new, in_progress, done)")
	}
}

// apply overwrites the fields of t whose flags were set on cmd.
func (f *entityFlags) apply(cmd *cobra.Command, t *types.Task) error {
	if cmd.Flags().Changed("name") {
		t.Name = f.name
	}
	if cmd.Flags().Changed("description") {
		t.Description = f.description
	}
	if cmd.Flags().Changed("status") {
		st, err := parseStatusFlag(f.status)
		if err != nil {
			return err
		}
		t.Status = st
	}
	return nil
}

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskCreateCmd(a),
		newTaskUpdateCmd(a),
		newTaskGetCmd(a),
		newTaskListCmd(a),
		newTaskDeleteCmd(a),
		newTaskClearCmd(a),
	)
	return cmd
}

func newTaskCreateCmd(a *app) *cobra.Command {
	var f entityFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Example: `  tracker task create --name "write docs"
  tracker task create --name review --status in_progress --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var t types.Task
			if err := f.apply(cmd, &t); err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				id, err := m.CreateTask(t)
				if err != nil {
					return err
				}
				return a.printCreated(cmd.OutOrStdout(), types.KindTask, id)
			})
		},
	}
	f.register(cmd, true)
	cmd.MarkFlagRequired("name")
	return cmd
}

func newTaskUpdateCmd(a *app) *cobra.Command {
	var f entityFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				t, ok := findTask(m.GetTasks(), id)
				if !ok {
					return fmt.Errorf("task %d: %w", id, errNotFound)
				}
				if err := f.apply(cmd, &t); err != nil {
					return err
				}
				if err := m.UpdateTask(t); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Updated task: %d", id)
				return nil
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func newTaskGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task and record it in the view history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				t, err := m.GetTaskByID(id)
				if err != nil {
					return err
				}
				if t == nil {
					return fmt.Errorf("task %d: %w", id, errNotFound)
				}
				return a.printEntity(cmd.OutOrStdout(), t)
			})
		},
	}
}

func newTaskListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				return a.printEntities(cmd.OutOrStdout(), tasksAsEntities(m.GetTasks()), "task")
			})
		},
	}
}

func newTaskDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				if _, ok := findTask(m.GetTasks(), id); !ok {
					return fmt.Errorf("task %d: %w", id, errNotFound)
				}
				if err := m.DeleteTaskByID(id); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Deleted task: %d", id)
				return nil
			})
		},
	}
}

func newTaskClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(cmd.Context(), func(m *tracker.Persistent) error {
				if err := m.DeleteAllTasks(); err != nil {
					return err
				}
				a.printDone(cmd.OutOrStdout(), "Deleted all tasks")
				return nil
			})
		},
	}
}

// findTask looks a task up in a listing. Unlike GetTaskByID it does not
// touch the view history.
func findTask(ts []types.Task, id int) (types.Task, bool) {
	for _, t := range ts {
		if t.ID == id {
			return t, true
		}
	}
	return types.Task{}, false
}
