package types

// Snapshot is the full persisted state of a store: every record plus the
// view history as ids, oldest first. Listings are ordered by id.
type Snapshot struct {
	Tasks    []Task
	Epics    []Epic
	Subtasks []Subtask
	History  []int
}

// Len returns the number of entity records in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Tasks) + len(s.Epics) + len(s.Subtasks)
}
