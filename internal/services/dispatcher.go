package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dailydo/backend/internal/infrastructure/reminderstore"
	"github.com/dailydo/backend/internal/notify"
)

// DispatcherConfig controls how frequently due reminders are delivered.
type DispatcherConfig struct {
	Interval  time.Duration
	BatchSize int
}

// ReminderDispatcher drains due reminders from the store and hands them to the
// configured sender. Delivery failures are logged and the reminder is dropped;
// there is no retry policy.
type ReminderDispatcher struct {
	store  *reminderstore.Store
	sender notify.Sender
	logger *zap.Logger
	cron   *cron.Cron
	cfg    DispatcherConfig
	clock  func() time.Time
}

func NewReminderDispatcher(
	store *reminderstore.Store,
	sender notify.Sender,
	logger *zap.Logger,
	cfg DispatcherConfig,
) *ReminderDispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rd := &ReminderDispatcher{
		store:  store,
		sender: sender,
		logger: logger,
		cfg:    cfg,
		clock:  time.Now,
		cron:   cron.New(cron.WithSeconds()),
	}

	spec := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = rd.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := rd.Dispatch(ctx); err != nil {
			rd.logger.Error("reminder dispatch failed", zap.Error(err))
		}
	})

	return rd
}

// Start launches the cron scheduler.
func (rd *ReminderDispatcher) Start() {
	if rd == nil || rd.cron == nil {
		return
	}
	rd.cron.Start()
	rd.logger.Info("reminder dispatcher started")
}

// Stop gracefully stops the scheduler.
func (rd *ReminderDispatcher) Stop(ctx context.Context) {
	if rd == nil || rd.cron == nil {
		return
	}
	stopCtx := rd.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rd.logger.Info("reminder dispatcher stopped")
}

// Dispatch delivers every reminder whose fire time has passed.
func (rd *ReminderDispatcher) Dispatch(ctx context.Context) error {
	if rd == nil || rd.store == nil {
		return nil
	}

	due, err := rd.store.Due(rd.clock(), rd.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, reminder := range due {
		notification := notify.Notification{
			TaskID: reminder.TaskID,
			UserID: reminder.UserID,
			Title:  reminder.Title,
			Body:   reminder.Body,
		}
		if err := rd.sender.Send(ctx, notification); err != nil {
			rd.logger.Warn("reminder delivery failed",
				zap.String("task_id", reminder.TaskID),
				zap.Error(err))
		}
		if err := rd.store.Remove(reminder); err != nil {
			rd.logger.Warn("failed to purge delivered reminder", zap.Error(err))
		}
	}
	return nil
}
