package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/tracker/internal/codec"
	"github.com/mesh-intelligence/tracker/internal/storage"
	"github.com/mesh-intelligence/tracker/internal/store"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Persistent is a Manager that rewrites the full snapshot to its backend
// after every mutation and every get-by-id call. List getters do not save.
//
// One mutex covers the store, the history, and the save, so every snapshot
// reflects a consistent state even when calls come from several goroutines.
//
// When a save fails the in-memory change stays applied and the call returns
// an error wrapping types.ErrSaveFailed alongside its normal result.
type Persistent struct {
	mu      sync.Mutex
	store   *store.Store
	backend types.Backend
	logger  *slog.Logger
	timeout time.Duration

	recomputeEpicStatus bool
}

// Option configures a Persistent manager.
type Option func(*Persistent)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Persistent) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTimeout bounds each backend read and write. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(p *Persistent) { p.timeout = d }
}

// WithRecomputeEpicStatus re-derives epic statuses after loading instead of
// trusting the persisted values.
func WithRecomputeEpicStatus(on bool) Option {
	return func(p *Persistent) { p.recomputeEpicStatus = on }
}

// Open validates cfg, opens the backend it names, and loads the current
// snapshot. Options given here override the matching Config fields.
func Open(ctx context.Context, cfg types.Config, opts ...Option) (*Persistent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s backend: %w", types.ErrLoadFailed, cfg.Backend, err)
	}
	opts = append([]Option{
		WithTimeout(cfg.Timeout),
		WithRecomputeEpicStatus(cfg.RecomputeEpicStatus),
	}, opts...)

	p, err := Load(ctx, backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return p, nil
}

// Load reads and decodes the backend's snapshot and restores a manager from
// it. An empty backend yields an empty manager. Read failures wrap
// types.ErrLoadFailed; malformed content, including ids repeated across
// records, fails with the codec's parse error sentinels.
// Load does not write to the backend.
func Load(ctx context.Context, backend types.Backend, opts ...Option) (*Persistent, error) {
	p := &Persistent{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	rctx, cancel := p.opContext(ctx)
	defer cancel()

	data, err := backend.Read(rctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrLoadFailed, err)
	}
	snap, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	s, report, err := store.Restore(snap, store.RestoreOptions{RecomputeEpicStatus: p.recomputeEpicStatus})
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	if len(report.OrphanSubtasks) > 0 {
		p.logger.Warn("tracker: dropped subtasks without an epic", "ids", report.OrphanSubtasks)
	}
	if len(report.SkippedHistory) > 0 {
		p.logger.Warn("tracker: skipped unresolvable history ids", "ids", report.SkippedHistory)
	}
	p.logger.Debug("tracker: loaded snapshot",
		"records", snap.Len(), "history", len(snap.History), "next_id", s.NextID())

	p.store = s
	return p, nil
}

// Close releases the backend.
func (p *Persistent) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backend.Close()
}

// Save writes the current snapshot. Every mutating call already does this;
// Save is for callers that want an explicit checkpoint.
func (p *Persistent) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.save()
}

// save encodes and writes the snapshot. The caller must hold p.mu.
func (p *Persistent) save() error {
	data := codec.Encode(p.store.Snapshot())

	ctx, cancel := p.opContext(context.Background())
	defer cancel()

	if err := p.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("%w: %w", types.ErrSaveFailed, err)
	}
	p.logger.Debug("tracker: saved snapshot", "bytes", len(data))
	return nil
}

func (p *Persistent) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(ctx, p.timeout)
	}
	return context.WithCancel(ctx)
}

// mutate runs fn under the lock and saves afterwards.
func (p *Persistent) mutate(fn func(s *store.Store)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.store)
	return p.save()
}

// CreateTask stores t and returns its id.
func (p *Persistent) CreateTask(t types.Task) (int, error) {
	var id int
	err := p.mutate(func(s *store.Store) { id = s.CreateTask(t) })
	return id, err
}

// UpdateTask replaces an existing task.
func (p *Persistent) UpdateTask(t types.Task) error {
	return p.mutate(func(s *store.Store) { s.UpdateTask(t) })
}

// DeleteTaskByID removes a task.
func (p *Persistent) DeleteTaskByID(id int) error {
	return p.mutate(func(s *store.Store) { s.DeleteTaskByID(id) })
}

// DeleteAllTasks removes every task.
func (p *Persistent) DeleteAllTasks() error {
	return p.mutate(func(s *store.Store) { s.DeleteAllTasks() })
}

// GetTaskByID returns a copy of the task, records the view, and saves.
func (p *Persistent) GetTaskByID(id int) (*types.Task, error) {
	var t *types.Task
	err := p.mutate(func(s *store.Store) { t, _ = s.GetTaskByID(id) })
	return t, err
}

// GetTasks returns copies of all tasks ordered by id.
func (p *Persistent) GetTasks() []types.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.GetTasks()
}

// CreateEpic stores e and returns its id.
func (p *Persistent) CreateEpic(e types.Epic) (int, error) {
	var id int
	err := p.mutate(func(s *store.Store) { id = s.CreateEpic(e) })
	return id, err
}

// UpdateEpic replaces an existing epic's name and description.
func (p *Persistent) UpdateEpic(e types.Epic) error {
	return p.mutate(func(s *store.Store) { s.UpdateEpic(e) })
}

// DeleteEpicByID removes an epic and its subtasks.
func (p *Persistent) DeleteEpicByID(id int) error {
	return p.mutate(func(s *store.Store) { s.DeleteEpicByID(id) })
}

// DeleteAllEpics removes every epic and subtask.
func (p *Persistent) DeleteAllEpics() error {
	return p.mutate(func(s *store.Store) { s.DeleteAllEpics() })
}

// GetEpicByID returns a copy of the epic, records the view, and saves.
func (p *Persistent) GetEpicByID(id int) (*types.Epic, error) {
	var e *types.Epic
	err := p.mutate(func(s *store.Store) { e, _ = s.GetEpicByID(id) })
	return e, err
}

// GetEpics returns copies of all epics ordered by id.
func (p *Persistent) GetEpics() []types.Epic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.GetEpics()
}

// GetSubtasksByEpicID returns copies of the epic's subtasks.
func (p *Persistent) GetSubtasksByEpicID(id int) []types.Subtask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.GetSubtasksByEpicID(id)
}

// CreateSubtask stores st under its epic and returns its id, or 0 when the
// epic does not exist. The snapshot is saved either way.
func (p *Persistent) CreateSubtask(st types.Subtask) (int, error) {
	var id int
	err := p.mutate(func(s *store.Store) { id = s.CreateSubtask(st) })
	return id, err
}

// UpdateSubtask replaces an existing subtask. An update naming a different
// epic than the stored one is ignored, since subtasks cannot move.
func (p *Persistent) UpdateSubtask(st types.Subtask) error {
	return p.mutate(func(s *store.Store) { s.UpdateSubtask(st) })
}

// DeleteSubtaskByID removes a subtask.
func (p *Persistent) DeleteSubtaskByID(id int) error {
	return p.mutate(func(s *store.Store) { s.DeleteSubtaskByID(id) })
}

// DeleteAllSubtasks removes every subtask.
func (p *Persistent) DeleteAllSubtasks() error {
	return p.mutate(func(s *store.Store) { s.DeleteAllSubtasks() })
}

// GetSubtaskByID returns a copy of the subtask, records the view, and saves.
func (p *Persistent) GetSubtaskByID(id int) (*types.Subtask, error) {
	var st *types.Subtask
	err := p.mutate(func(s *store.Store) { st, _ = s.GetSubtaskByID(id) })
	return st, err
}

// GetSubtasks returns copies of all subtasks ordered by id.
func (p *Persistent) GetSubtasks() []types.Subtask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.GetSubtasks()
}

// GetHistory returns copies of the viewed entities, oldest first.
func (p *Persistent) GetHistory() []types.Entity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.GetHistory()
}

// GetAllTasks returns copies of every entity.
func (p *Persistent) GetAllTasks() []types.Entity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.GetAllTasks()
}

// NextID returns the id the next create call will assign.
func (p *Persistent) NextID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.NextID()
}
