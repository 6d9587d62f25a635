package store

import "github.com/mesh-intelligence/tracker/pkg/types"

// DeriveEpicStatus computes an epic's status from its subtasks' statuses:
// no subtasks or all NEW gives NEW, all DONE gives DONE, anything else gives
// IN_PROGRESS.
func DeriveEpicStatus(statuses []types.Status) types.Status {
	if len(statuses) == 0 {
		return types.StatusNew
	}
	allNew, allDone := true, true
	for _, s := range statuses {
		if s != types.StatusNew {
			allNew = false
		}
		if s != types.StatusDone {
			allDone = false
		}
	}
	switch {
	case allNew:
		return types.StatusNew
	case allDone:
		return types.StatusDone
	default:
		return types.StatusInProgress
	}
}

// refreshEpicStatus recomputes the status of epic id from its current
// subtasks. Unknown ids are ignored.
func (s *Store) refreshEpicStatus(id int) {
	epic, ok := s.epics[id]
	if !ok {
		return
	}
	statuses := make([]types.Status, 0, len(epic.SubtaskIDs))
	for _, sid := range epic.SubtaskIDs {
		if sub, ok := s.subtasks[sid]; ok {
			statuses = append(statuses, sub.Status)
		}
	}
	epic.Status = DeriveEpicStatus(statuses)
}
