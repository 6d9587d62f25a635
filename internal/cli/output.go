// Output helpers shared by the entity commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Status styles. lipgloss drops the colors when the output is not a terminal.
var (
	statusNewStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusInProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusDoneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

func styleStatus(s types.Status) string {
	switch s {
	case types.StatusInProgress:
		return statusInProgressStyle.Render(s.String())
	case types.StatusDone:
		return statusDoneStyle.Render(s.String())
	default:
		return statusNewStyle.Render(s.String())
	}
}

// entityJSON is the JSON shape of every entity kind.
type entityJSON struct {
	ID          int          `json:"id"`
	Type        types.Kind   `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      types.Status `json:"status"`
	EpicID      *int         `json:"epic_id,omitempty"`
	SubtaskIDs  []int        `json:"subtask_ids,omitempty"`
}

func toJSON(e types.Entity) entityJSON {
	b := e.Base()
	out := entityJSON{
		ID:          b.ID,
		Type:        e.Kind(),
		Name:        b.Name,
		Description: b.Description,
		Status:      b.Status,
	}
	switch v := e.(type) {
	case *types.Epic:
		out.SubtaskIDs = v.SubtaskIDs
	case *types.Subtask:
		epicID := v.EpicID
		out.EpicID = &epicID
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printEntity writes one entity as JSON or as key: value lines.
func (a *app) printEntity(w io.Writer, e types.Entity) error {
	if a.jsonMode {
		return writeJSON(w, toJSON(e))
	}
	b := e.Base()
	fmt.Fprintf(w, "ID:          %d\n", b.ID)
	fmt.Fprintf(w, "Type:        %s\n", e.Kind())
	fmt.Fprintf(w, "Name:        %s\n", b.Name)
	fmt.Fprintf(w, "Status:      %s\n", styleStatus(b.Status))
	if b.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", b.Description)
	}
	switch v := e.(type) {
	case *types.Epic:
		fmt.Fprintf(w, "Subtasks:    %s\n", joinIDs(v.SubtaskIDs))
	case *types.Subtask:
		fmt.Fprintf(w, "Epic:        %d\n", v.EpicID)
	}
	return nil
}

// printEntities writes a list as a JSON array or as an aligned table.
func (a *app) printEntities(w io.Writer, entities []types.Entity, noun string) error {
	if a.jsonMode {
		out := make([]entityJSON, len(entities))
		for i, e := range entities {
			out[i] = toJSON(e)
		}
		return writeJSON(w, out)
	}

	if len(entities) == 0 {
		fmt.Fprintf(w, "No %ss found.\n", noun)
		return nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tSTATUS")
	for _, e := range entities {
		b := e.Base()
		name := truncateName(b.Name, maxNameWidth)
		// Status goes last so its color codes do not skew the alignment.
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, e.Kind(), name, styleStatus(b.Status))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(w, "Total: %d %s(s)\n", len(entities), noun)
	return nil
}

// maxNameWidth bounds the NAME column of list tables, in runes.
const maxNameWidth = 40

// truncateName shortens name to at most width runes, marking the cut with
// "...". It never splits a multi-byte character.
func truncateName(name string, width int) string {
	if utf8.RuneCountInString(name) <= width {
		return name
	}
	runes := []rune(name)
	return string(runes[:width-3]) + "..."
}

// printCreated reports the id assigned by a create call.
func (a *app) printCreated(w io.Writer, kind types.Kind, id int) error {
	if a.jsonMode {
		return writeJSON(w, map[string]int{"id": id})
	}
	fmt.Fprintf(w, "Created %s: %d\n", strings.ToLower(kind.String()), id)
	return nil
}

// printDone writes a short confirmation in text mode only.
func (a *app) printDone(w io.Writer, format string, args ...any) {
	if a.jsonMode {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// parseID parses a positional id argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

// parseStatusFlag accepts status names in any case, with '-' or '_'.
func parseStatusFlag(s string) (types.Status, error) {
	token := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	st, err := types.ParseStatus(token)
	if err != nil {
		return 0, fmt.Errorf("invalid status %q (valid: new, in_progress, done)", s)
	}
	return st, nil
}

// Adapters from typed slices to the Entity view used by printEntities.

func tasksAsEntities(ts []types.Task) []types.Entity {
	out := make([]types.Entity, len(ts))
	for i := range ts {
		out[i] = &ts[i]
	}
	return out
}

func epicsAsEntities(es []types.Epic) []types.Entity {
	out := make([]types.Entity, len(es))
	for i := range es {
		out[i] = &es[i]
	}
	return out
}

func subtasksAsEntities(ss []types.Subtask) []types.Entity {
	out := make([]types.Entity, len(ss))
	for i := range ss {
		out[i] = &ss[i]
	}
	return out
}
