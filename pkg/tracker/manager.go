// Package tracker is the public API of the task tracker. It exposes the
// Manager interface with two implementations: an in-memory manager and a
// persistent manager that writes a full snapshot after every mutation and
// every get-by-id call.
//
// Example:
//
//	m, err := tracker.Open(ctx, types.Config{
//	    Backend: types.BackendFile,
//	    DataDir: ".tracker-db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//	id, err := m.CreateTask(types.Task{Name: "write docs"})
package tracker

import (
	"github.com/mesh-intelligence/tracker/internal/store"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Manager is the operation surface shared by both implementations.
//
// Operations on an absent id, and creating a subtask whose epic does not
// exist, are no-ops: creates return id 0, gets return nil, and the error is
// nil. A non-nil error always means the snapshot could not be saved; the
// in-memory change has already been applied when that happens.
type Manager interface {
	CreateTask(t types.Task) (int, error)
	UpdateTask(t types.Task) error
	DeleteTaskByID(id int) error
	DeleteAllTasks() error
	GetTaskByID(id int) (*types.Task, error)
	GetTasks() []types.Task

	CreateEpic(e types.Epic) (int, error)
	UpdateEpic(e types.Epic) error
	DeleteEpicByID(id int) error
	DeleteAllEpics() error
	GetEpicByID(id int) (*types.Epic, error)
	GetEpics() []types.Epic
	GetSubtasksByEpicID(id int) []types.Subtask

	CreateSubtask(s types.Subtask) (int, error)
	UpdateSubtask(s types.Subtask) error
	DeleteSubtaskByID(id int) error
	DeleteAllSubtasks() error
	GetSubtaskByID(id int) (*types.Subtask, error)
	GetSubtasks() []types.Subtask

	GetHistory() []types.Entity
	GetAllTasks() []types.Entity
}

// Compile-time interface checks.
var (
	_ Manager = (*InMemory)(nil)
	_ Manager = (*Persistent)(nil)
)

// InMemory is a Manager with no persistence. It is not safe for concurrent
// use.
type InMemory struct {
	store *store.Store
}

// NewInMemory returns an empty in-memory Manager.
func NewInMemory() *InMemory {
	return &InMemory{store: store.New()}
}

func (m *InMemory) CreateTask(t types.Task) (int, error) { return m.store.CreateTask(t), nil }
func (m *InMemory) UpdateTask(t types.Task) error         { m.store.UpdateTask(t); return nil }
func (m *InMemory) DeleteTaskByID(id int) error           { m.store.DeleteTaskByID(id); return nil }
func (m *InMemory) DeleteAllTasks() error                 { m.store.DeleteAllTasks(); return nil }
func (m *InMemory) GetTasks() []types.Task                { return m.store.GetTasks() }

func (m *InMemory) GetTaskByID(id int) (*types.Task, error) {
	t, _ := m.store.GetTaskByID(id)
	return t, nil
}

func (m *InMemory) CreateEpic(e types.Epic) (int, error) { return m.store.CreateEpic(e), nil }
func (m *InMemory) UpdateEpic(e types.Epic) error         { m.store.UpdateEpic(e); return nil }
func (m *InMemory) DeleteEpicByID(id int) error           { m.store.DeleteEpicByID(id); return nil }
func (m *InMemory) DeleteAllEpics() error                 { m.store.DeleteAllEpics(); return nil }
func (m *InMemory) GetEpics() []types.Epic                { return m.store.GetEpics() }

func (m *InMemory) GetEpicByID(id int) (*types.Epic, error) {
	e, _ := m.store.GetEpicByID(id)
	return e, nil
}

func (m *InMemory) GetSubtasksByEpicID(id int) []types.Subtask {
	return m.store.GetSubtasksByEpicID(id)
}

func (m *InMemory) CreateSubtask(s types.Subtask) (int, error) { return m.store.CreateSubtask(s), nil }
func (m *InMemory) UpdateSubtask(s types.Subtask) error         { m.store.UpdateSubtask(s); return nil }
func (m *InMemory) DeleteSubtaskByID(id int) error              { m.store.DeleteSubtaskByID(id); return nil }
func (m *InMemory) DeleteAllSubtasks() error                    { m.store.DeleteAllSubtasks(); return nil }
func (m *InMemory) GetSubtasks() []types.Subtask                { return m.store.GetSubtasks() }

func (m *InMemory) GetSubtaskByID(id int) (*types.Subtask, error) {
	s, _ := m.store.GetSubtaskByID(id)
	return s, nil
}

func (m *InMemory) GetHistory() []types.Entity  { return m.store.GetHistory() }
func (m *InMemory) GetAllTasks() []types.Entity { return m.store.GetAllTasks() }
