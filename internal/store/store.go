// Package store implements the in-memory entity store for tasks, epics, and
// subtasks: id assignment, relational bookkeeping between epics and their
// subtasks, epic status derivation, and view history.
//
// Store is not safe for concurrent use. Callers that share a Store across
// goroutines must serialize access; the persistent tracker does so with a
// single mutex around the store and its snapshot writes.
package store

import (
	"maps"
	"slices"

	"github.com/mesh-intelligence/tracker/internal/history"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Store holds the three entity maps, the shared id counter, and the view
// history.
type Store struct {
	tasks    map[int]*types.Task
	epics    map[int]*types.Epic
	subtasks map[int]*types.Subtask
	nextID   int
	history  *history.Tracker
}

// New returns an empty Store whose first assigned id is 1.
func New() *Store {
	return &Store{
		tasks:    make(map[int]*types.Task),
		epics:    make(map[int]*types.Epic),
		subtasks: make(map[int]*types.Subtask),
		nextID:   1,
		history:  history.New(),
	}
}

// NextID returns the id the next create call will assign.
func (s *Store) NextID() int {
	return s.nextID
}

func (s *Store) assignID() int {
	id := s.nextID
	s.nextID++
	return id
}

// CreateTask stores a copy of t under a newly assigned id and returns the id.
// It returns 0 without effect when t.Status is not a recognized status.
func (s *Store) CreateTask(t types.Task) int {
	if !t.Status.Valid() {
		return 0
	}
	t.ID = s.assignID()
	s.tasks[t.ID] = &t
	return t.ID
}

// CreateEpic stores a copy of e under a newly assigned id and returns the id.
// The epic starts NEW with no subtasks; any caller-supplied subtask ids are
// discarded.
func (s *Store) CreateEpic(e types.Epic) int {
	e.ID = s.assignID()
	e.Status = types.StatusNew
	e.SubtaskIDs = []int{}
	s.epics[e.ID] = &e
	return e.ID
}

// CreateSubtask stores a copy of st under a newly assigned id, links it to its
// epic, and re-derives the epic's status. It returns 0 without effect when
// st.EpicID does not name an existing epic.
func (s *Store) CreateSubtask(st types.Subtask) int {
	epic, ok := s.epics[st.EpicID]
	if !ok || !st.Status.Valid() {
		return 0
	}
	st.ID = s.assignID()
	s.subtasks[st.ID] = &st
	epic.AddSubtaskID(st.ID)
	s.refreshEpicStatus(epic.ID)
	return st.ID
}

// UpdateTask replaces the stored task's fields with t's. It reports false
// without effect when no task has t.ID.
func (s *Store) UpdateTask(t types.Task) bool {
	stored, ok := s.tasks[t.ID]
	if !ok || !t.Status.Valid() {
		return false
	}
	*stored = t
	return true
}

// UpdateEpic replaces the stored epic's name and description. The subtask
// list is kept and the status re-derived, so a caller-supplied payload cannot
// break the epic/subtask links.
func (s *Store) UpdateEpic(e types.Epic) bool {
	stored, ok := s.epics[e.ID]
	if !ok {
		return false
	}
	stored.Name = e.Name
	stored.Description = e.Description
	s.refreshEpicStatus(stored.ID)
	return true
}

// UpdateSubtask replaces the stored subtask's name, description, and status,
// then re-derives the owning epic's status. A subtask cannot move between
// epics: st.EpicID must be zero or name the current epic, otherwise the call
// reports false without effect.
func (s *Store) UpdateSubtask(st types.Subtask) bool {
	stored, ok := s.subtasks[st.ID]
	if !ok || !st.Status.Valid() {
		return false
	}
	if st.EpicID != 0 && st.EpicID != stored.EpicID {
		return false
	}
	stored.Name = st.Name
	stored.Description = st.Description
	stored.Status = st.Status
	s.refreshEpicStatus(stored.EpicID)
	return true
}

// DeleteTaskByID removes the task and its history entry.
func (s *Store) DeleteTaskByID(id int) bool {
	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	s.history.Forget(id)
	return true
}

// DeleteEpicByID removes the epic, every subtask it lists, and their history
// entries. Stale subtask ids are forgotten as well.
func (s *Store) DeleteEpicByID(id int) bool {
	epic, ok := s.epics[id]
	if !ok {
		return false
	}
	delete(s.epics, id)
	for _, sid := range epic.SubtaskIDs {
		delete(s.subtasks, sid)
		s.history.Forget(sid)
	}
	s.history.Forget(id)
	return true
}

// DeleteSubtaskByID removes the subtask, unlinks it from its epic, re-derives
// the epic's status, and drops the history entry.
func (s *Store) DeleteSubtaskByID(id int) bool {
	st, ok := s.subtasks[id]
	if !ok {
		return false
	}
	delete(s.subtasks, id)
	if epic, ok := s.epics[st.EpicID]; ok {
		epic.RemoveSubtaskID(id)
		s.refreshEpicStatus(epic.ID)
	}
	s.history.Forget(id)
	return true
}

// DeleteAllTasks removes every task and its history entry.
func (s *Store) DeleteAllTasks() {
	for id := range s.tasks {
		s.history.Forget(id)
	}
	clear(s.tasks)
}

// DeleteAllEpics removes every epic and, with them, every subtask.
func (s *Store) DeleteAllEpics() {
	for id := range s.epics {
		s.history.Forget(id)
	}
	for id := range s.subtasks {
		s.history.Forget(id)
	}
	clear(s.epics)
	clear(s.subtasks)
}

// DeleteAllSubtasks removes every subtask and resets every epic to an empty
// subtask list with status NEW.
func (s *Store) DeleteAllSubtasks() {
	for id := range s.subtasks {
		s.history.Forget(id)
	}
	clear(s.subtasks)
	for id, epic := range s.epics {
		epic.ClearSubtaskIDs()
		s.refreshEpicStatus(id)
	}
}

// GetTaskByID returns a copy of the task and records it in the history.
func (s *Store) GetTaskByID(id int) (*types.Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	s.history.Record(t)
	return t.Clone().(*types.Task), true
}

// GetEpicByID returns a copy of the epic and records it in the history.
func (s *Store) GetEpicByID(id int) (*types.Epic, bool) {
	e, ok := s.epics[id]
	if !ok {
		return nil, false
	}
	s.history.Record(e)
	return e.Clone().(*types.Epic), true
}

// GetSubtaskByID returns a copy of the subtask and records it in the history.
func (s *Store) GetSubtaskByID(id int) (*types.Subtask, bool) {
	st, ok := s.subtasks[id]
	if !ok {
		return nil, false
	}
	s.history.Record(st)
	return st.Clone().(*types.Subtask), true
}

// GetTasks returns copies of all tasks ordered by id.
func (s *Store) GetTasks() []types.Task {
	out := make([]types.Task, 0, len(s.tasks))
	for _, id := range sortedKeys(s.tasks) {
		out = append(out, *s.tasks[id])
	}
	return out
}

// GetEpics returns copies of all epics ordered by id.
func (s *Store) GetEpics() []types.Epic {
	out := make([]types.Epic, 0, len(s.epics))
	for _, id := range sortedKeys(s.epics) {
		out = append(out, *s.epics[id].Clone().(*types.Epic))
	}
	return out
}

// GetSubtasks returns copies of all subtasks ordered by id.
func (s *Store) GetSubtasks() []types.Subtask {
	out := make([]types.Subtask, 0, len(s.subtasks))
	for _, id := range sortedKeys(s.subtasks) {
		out = append(out, *s.subtasks[id])
	}
	return out
}

// GetSubtasksByEpicID returns copies of the epic's subtasks in the epic's
// order, skipping ids that do not resolve. Unknown epics yield an empty slice.
func (s *Store) GetSubtasksByEpicID(epicID int) []types.Subtask {
	epic, ok := s.epics[epicID]
	if !ok {
		return []types.Subtask{}
	}
	out := make([]types.Subtask, 0, len(epic.SubtaskIDs))
	for _, sid := range epic.SubtaskIDs {
		if st, ok := s.subtasks[sid]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// GetHistory returns copies of the viewed entities, oldest first.
func (s *Store) GetHistory() []types.Entity {
	viewed := s.history.Snapshot()
	for i, e := range viewed {
		viewed[i] = e.Clone()
	}
	return viewed
}

// GetAllTasks returns copies of every entity: tasks, then epics, then
// subtasks, each group ordered by id.
func (s *Store) GetAllTasks() []types.Entity {
	out := make([]types.Entity, 0, len(s.tasks)+len(s.epics)+len(s.subtasks))
	for _, id := range sortedKeys(s.tasks) {
		out = append(out, s.tasks[id].Clone())
	}
	for _, id := range sortedKeys(s.epics) {
		out = append(out, s.epics[id].Clone())
	}
	for _, id := range sortedKeys(s.subtasks) {
		out = append(out, s.subtasks[id].Clone())
	}
	return out
}

// lookup resolves id against all three maps.
func (s *Store) lookup(id int) (types.Entity, bool) {
	if t, ok := s.tasks[id]; ok {
		return t, true
	}
	if e, ok := s.epics[id]; ok {
		return e, true
	}
	if st, ok := s.subtasks[id]; ok {
		return st, true
	}
	return nil, false
}

func sortedKeys[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}
