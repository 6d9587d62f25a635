package store

import (
	"fmt"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Snapshot exports the store as a types.Snapshot: records ordered by id and
// the history ids oldest first. Epic subtask lists are copied but are not part
// of the persisted format; Restore rebuilds them from the subtasks.
func (s *Store) Snapshot() types.Snapshot {
	return types.Snapshot{
		Tasks:    s.GetTasks(),
		Epics:    s.GetEpics(),
		Subtasks: s.GetSubtasks(),
		History:  s.history.IDs(),
	}
}

// RestoreOptions tunes Restore.
type RestoreOptions struct {
	// RecomputeEpicStatus re-derives each epic's status from its restored
	// subtasks instead of keeping the persisted value.
	RecomputeEpicStatus bool
}

// RestoreReport lists what Restore had to drop to keep the store consistent.
type RestoreReport struct {
	// OrphanSubtasks are subtask ids whose epic was not in the snapshot.
	OrphanSubtasks []int
	// SkippedHistory are history ids that did not resolve or repeated an
	// earlier entry.
	SkippedHistory []int
}

// Restore builds a Store from snap without going through id assignment or
// cascade logic. It then rebuilds every epic's subtask list from the
// subtasks' epic ids (in subtask id order), replays the history in persisted
// order, and sets the id counter to one past the largest id seen.
//
// Epic statuses are kept as persisted unless opts.RecomputeEpicStatus is set.
//
// Ids are unique across all three kinds. A snapshot that repeats an id, within
// one kind or across kinds, fails with types.ErrMalformedRecord.
func Restore(snap types.Snapshot, opts RestoreOptions) (*Store, RestoreReport, error) {
	if err := checkUniqueIDs(snap); err != nil {
		return nil, RestoreReport{}, err
	}

	s := New()
	var report RestoreReport
	maxID := 0

	for _, t := range snap.Tasks {
		s.tasks[t.ID] = &t
		maxID = max(maxID, t.ID)
	}
	for _, e := range snap.Epics {
		e.SubtaskIDs = []int{}
		s.epics[e.ID] = &e
		maxID = max(maxID, e.ID)
	}
	for _, st := range snap.Subtasks {
		maxID = max(maxID, st.ID)
		if _, ok := s.epics[st.EpicID]; !ok {
			report.OrphanSubtasks = append(report.OrphanSubtasks, st.ID)
			continue
		}
		s.subtasks[st.ID] = &st
	}

	// Relink epics to their subtasks.
	for _, id := range sortedKeys(s.subtasks) {
		st := s.subtasks[id]
		s.epics[st.EpicID].AddSubtaskID(id)
	}

	if opts.RecomputeEpicStatus {
		for id := range s.epics {
			s.refreshEpicStatus(id)
		}
	}

	for _, id := range snap.History {
		entity, ok := s.lookup(id)
		if !ok || !s.history.Append(entity) {
			report.SkippedHistory = append(report.SkippedHistory, id)
		}
	}

	s.nextID = maxID + 1
	return s, report, nil
}

func checkUniqueIDs(snap types.Snapshot) error {
	seen := make(map[int]types.Kind, snap.Len())
	claim := func(id int, kind types.Kind) error {
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%w: id %d used by both %s and %s", types.ErrMalformedRecord, id, prev, kind)
		}
		seen[id] = kind
		return nil
	}
	for _, t := range snap.Tasks {
		if err := claim(t.ID, types.KindTask); err != nil {
			return err
		}
	}
	for _, e := range snap.Epics {
		if err := claim(e.ID, types.KindEpic); err != nil {
			return err
		}
	}
	for _, st := range snap.Subtasks {
		if err := claim(st.ID, types.KindSubtask); err != nil {
			return err
		}
	}
	return nil
}
