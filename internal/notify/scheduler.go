package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/internal/infrastructure/reminderstore"
	"github.com/dailydo/backend/pkg/schedule"
)

// ReminderScheduler is the notification boundary consumed by the
// reconciliation engine. Implementations must treat failures as non-fatal.
type ReminderScheduler interface {
	// ScheduleAll replaces the user's pending reminders with one reminder per
	// not-yet-completed task, skipping deadlines already in the past.
	ScheduleAll(ctx context.Context, userID string, tasks []domain.TaskWithCompletion) error
	// CancelTask removes any pending reminder for the task.
	CancelTask(taskID string) error
}

// Scheduler persists reminders in the Bolt-backed store; the dispatcher
// delivers them when due.
type Scheduler struct {
	store  *reminderstore.Store
	clock  func() time.Time
	logger *zap.Logger
}

func NewScheduler(store *reminderstore.Store, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		store:  store,
		clock:  time.Now,
		logger: logger,
	}
}

// WithClock overrides the time source.
func (s *Scheduler) WithClock(clock func() time.Time) *Scheduler {
	if clock != nil {
		s.clock = clock
	}
	return s
}

func (s *Scheduler) ScheduleAll(_ context.Context, userID string, tasks []domain.TaskWithCompletion) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.CancelUser(userID); err != nil {
		return err
	}

	now := s.clock()
	for _, task := range tasks {
		if task.IsCompletedToday {
			continue
		}
		fireAt, err := schedule.ReminderAt(now, task.ScheduledTime, task.ReminderOffset)
		if err != nil {
			s.logger.Warn("skipping reminder with invalid schedule",
				zap.String("task_id", task.ID),
				zap.String("scheduled_time", task.ScheduledTime),
				zap.Error(err))
			continue
		}
		if !fireAt.After(now) {
			continue
		}

		reminder := reminderstore.Reminder{
			TaskID: task.ID,
			UserID: userID,
			Title:  "Task Reminder",
			Body:   fmt.Sprintf("Don't forget: %s", task.Title),
			FireAt: fireAt,
		}
		if err := s.store.Put(reminder); err != nil {
			return err
		}
		s.logger.Debug("reminder scheduled",
			zap.String("task_id", task.ID),
			zap.Time("fire_at", fireAt))
	}
	return nil
}

func (s *Scheduler) CancelTask(taskID string) error {
	if s.store == nil {
		return nil
	}
	return s.store.CancelTask(taskID)
}

// NopScheduler is used where local notifications are unsupported.
type NopScheduler struct{}

func (NopScheduler) ScheduleAll(context.Context, string, []domain.TaskWithCompletion) error {
	return nil
}

func (NopScheduler) CancelTask(string) error { return nil }
