package types

import "slices"

// Entity is the common view over the three record kinds. Callers dispatch on
// Kind and type-assert to *Task, *Epic, or *Subtask for kind-specific fields.
type Entity interface {
	// Base returns the shared record. For an Epic or Subtask this is the
	// embedded Task, so writes through it change the owning record.
	Base() *Task

	// Kind reports which variant the entity is.
	Kind() Kind

	// Clone returns an independent deep copy.
	Clone() Entity
}

// Compile-time interface checks.
var (
	_ Entity = (*Task)(nil)
	_ Entity = (*Epic)(nil)
	_ Entity = (*Subtask)(nil)
)

// Task is the base trackable unit. ID is assigned by the store on creation.
type Task struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Base returns t.
func (t *Task) Base() *Task { return t }

// Kind returns KindTask.
func (t *Task) Kind() Kind { return KindTask }

// Clone returns a copy of t.
func (t *Task) Clone() Entity {
	c := *t
	return &c
}

// Epic aggregates subtasks. Its status is derived from them and never set
// directly by callers.
type Epic struct {
	Task
	SubtaskIDs []int `json:"subtask_ids"`
}

// Kind returns KindEpic.
func (e *Epic) Kind() Kind { return KindEpic }

// Clone returns a copy of e with its own subtask id slice.
func (e *Epic) Clone() Entity {
	c := *e
	c.SubtaskIDs = slices.Clone(e.SubtaskIDs)
	if c.SubtaskIDs == nil {
		c.SubtaskIDs = []int{}
	}
	return &c
}

// AddSubtaskID appends id to the epic's subtask list.
func (e *Epic) AddSubtaskID(id int) {
	e.SubtaskIDs = append(e.SubtaskIDs, id)
}

// RemoveSubtaskID removes every occurrence of id, preserving order.
func (e *Epic) RemoveSubtaskID(id int) {
	e.SubtaskIDs = slices.DeleteFunc(e.SubtaskIDs, func(v int) bool { return v == id })
}

// ClearSubtaskIDs empties the subtask list.
func (e *Epic) ClearSubtaskIDs() {
	e.SubtaskIDs = []int{}
}

// Subtask is a task owned by exactly one epic.
type Subtask struct {
	Task
	EpicID int `json:"epic_id"`
}

// Kind returns KindSubtask.
func (s *Subtask) Kind() Kind { return KindSubtask }

// Clone returns a copy of s.
func (s *Subtask) Clone() Entity {
	c := *s
	return &c
}
