package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/internal/notify"
	"github.com/dailydo/backend/pkg/schedule"
	"github.com/dailydo/backend/repository"
)

// Snapshot is the in-memory state a user's engine exposes to readers. It is
// replaced wholesale on every successful refresh; readers must treat it as
// immutable.
type Snapshot struct {
	Tasks     []domain.TaskWithCompletion `json:"tasks"`
	Stats     domain.TaskStats            `json:"stats"`
	Loading   bool                        `json:"loading"`
	Version   uint64                      `json:"version"`
	FetchedAt time.Time                   `json:"fetched_at,omitzero"`
}

// Engine reconciles one user's in-memory task state with the store: every
// mutation and timer tick runs the same fetch -> enrich -> aggregate -> notify
// cycle. Refreshes are single-flighted, and each carries a sequence token so a
// slow response can never overwrite a fresher snapshot.
type Engine struct {
	userID      string
	tasks       repository.TaskRepository
	completions repository.CompletionRepository
	reminders   notify.ReminderScheduler
	logger      *zap.Logger
	clock       func() time.Time

	group singleflight.Group
	seq   atomic.Uint64

	mu   sync.RWMutex
	snap Snapshot
}

func NewEngine(
	userID string,
	tasks repository.TaskRepository,
	completions repository.CompletionRepository,
	reminders notify.ReminderScheduler,
	logger *zap.Logger,
) *Engine {
	if reminders == nil {
		reminders = notify.NopScheduler{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		userID:      userID,
		tasks:       tasks,
		completions: completions,
		reminders:   reminders,
		logger:      logger.With(zap.String("user_id", userID)),
		clock:       time.Now,
	}
}

// WithClock overrides the time source.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	if clock != nil {
		e.clock = clock
	}
	return e
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Stats returns the current aggregates without refetching.
func (e *Engine) Stats() domain.TaskStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Stats
}

// Refresh runs one reconciliation cycle. Concurrent callers share a single
// in-flight fetch. A failed refresh leaves the prior snapshot untouched.
func (e *Engine) Refresh(ctx context.Context) (Snapshot, error) {
	result, err, _ := e.group.Do("refresh", func() (interface{}, error) {
		return e.refresh(ctx)
	})
	if err != nil {
		return e.Snapshot(), err
	}
	return result.(Snapshot), nil
}

func (e *Engine) refresh(ctx context.Context) (Snapshot, error) {
	token := e.seq.Add(1)
	now := e.clock()
	today := schedule.DateOf(now)

	e.setLoading(true)
	defer e.setLoading(false)

	tasks, err := e.tasks.ListActive(ctx, e.userID)
	if err != nil {
		return Snapshot{}, err
	}
	completions, err := e.completions.ListForDate(ctx, e.userID, today)
	if err != nil {
		return Snapshot{}, err
	}

	enriched := Enrich(tasks, completions)
	stats := ComputeStats(enriched, now)

	e.mu.Lock()
	if token < e.snap.Version {
		// A later refresh already landed; keep the fresher snapshot.
		stale := e.snap
		e.mu.Unlock()
		return stale, nil
	}
	e.snap = Snapshot{
		Tasks:     enriched,
		Stats:     stats,
		Version:   token,
		FetchedAt: now,
	}
	snap := e.snap
	e.mu.Unlock()

	if err := e.reminders.ScheduleAll(ctx, e.userID, enriched); err != nil {
		// Reminder scheduling is best-effort and never fails the cycle.
		e.logger.Warn("reminder scheduling failed", zap.Error(err))
	}

	return snap, nil
}

// AddTask submits a new task owned by the engine's user and refetches.
// Boundary validation (non-empty title, weekly days) is the caller's job.
func (e *Engine) AddTask(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	task.UserID = e.userID

	if _, err := e.tasks.Create(ctx, task); err != nil {
		return err
	}
	_, err := e.Refresh(ctx)
	return err
}

// UpdateTask applies partial field changes and refetches.
func (e *Engine) UpdateTask(ctx context.Context, id string, patch repository.TaskPatch) error {
	if err := e.tasks.Patch(ctx, id, patch); err != nil {
		return err
	}
	_, err := e.Refresh(ctx)
	return err
}

// DeleteTask permanently removes the task row, cancels its pending reminder,
// and refetches.
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	if err := e.reminders.CancelTask(id); err != nil {
		e.logger.Warn("failed to cancel reminder for deleted task",
			zap.String("task_id", id), zap.Error(err))
	}
	if err := e.tasks.Delete(ctx, id); err != nil {
		return err
	}
	_, err := e.Refresh(ctx)
	return err
}

// ToggleCompletion marks the task complete or incomplete for today and
// refetches. Marking complete computes completed_on_time from the moment of
// the call; a task already completed today is left as is. Marking incomplete
// with no tracked completion id is a silent no-op.
func (e *Engine) ToggleCompletion(ctx context.Context, taskID string, markComplete bool) error {
	task, ok := e.findTask(taskID)
	if !ok {
		return domain.ErrTaskNotFound
	}

	now := e.clock()

	if markComplete {
		if !task.IsCompletedToday {
			completion := &domain.TaskCompletion{
				TaskID:          taskID,
				ScheduledFor:    schedule.DateOf(now),
				CompletedOnTime: !schedule.IsOverdue(task.ScheduledTime, task.ReminderOffset, false, now),
			}
			if _, err := e.completions.Create(ctx, completion); err != nil {
				return err
			}
		}
	} else if task.CompletionID != "" {
		if err := e.completions.Delete(ctx, task.CompletionID); err != nil {
			return err
		}
	}

	_, err := e.Refresh(ctx)
	return err
}

// ResetDaily re-runs a full reconciliation. It exists as a named operation for
// the day-rollover path; today it performs no extra work beyond Refresh.
func (e *Engine) ResetDaily(ctx context.Context) error {
	_, err := e.Refresh(ctx)
	return err
}

// RecomputeStats re-aggregates the current snapshot against the present time
// without refetching. Used by the periodic stats tick so overdue counts move
// as the clock does.
func (e *Engine) RecomputeStats() domain.TaskStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap.Stats = ComputeStats(e.snap.Tasks, e.clock())
	return e.snap.Stats
}

func (e *Engine) findTask(taskID string) (domain.TaskWithCompletion, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, task := range e.snap.Tasks {
		if task.ID == taskID {
			return task, true
		}
	}
	return domain.TaskWithCompletion{}, false
}

func (e *Engine) setLoading(loading bool) {
	e.mu.Lock()
	e.snap.Loading = loading
	e.mu.Unlock()
}
