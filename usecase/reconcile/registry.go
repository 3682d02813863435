package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dailydo/backend/internal/notify"
	"github.com/dailydo/backend/repository"
)

// RegistryConfig controls the shared reconciliation timers.
type RegistryConfig struct {
	// StatsInterval is how often snapshot aggregates are recomputed against
	// the current clock.
	StatsInterval time.Duration
	// Location is the time zone the day boundary is evaluated in.
	Location *time.Location
}

// Registry owns one Engine per user and drives the two shared timers: the
// periodic stats recompute and the midnight full refetch.
type Registry struct {
	cfg         RegistryConfig
	tasks       repository.TaskRepository
	completions repository.CompletionRepository
	reminders   notify.ReminderScheduler
	sender      notify.Sender
	logger      *zap.Logger

	mu      sync.Mutex
	engines map[string]*Engine
	cron    *cron.Cron
}

func NewRegistry(
	cfg RegistryConfig,
	tasks repository.TaskRepository,
	completions repository.CompletionRepository,
	reminders notify.ReminderScheduler,
	sender notify.Sender,
	logger *zap.Logger,
) *Registry {
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		cfg:         cfg,
		tasks:       tasks,
		completions: completions,
		reminders:   reminders,
		sender:      sender,
		logger:      logger,
		engines:     make(map[string]*Engine),
		cron:        cron.New(cron.WithLocation(cfg.Location), cron.WithSeconds()),
	}

	statsSpec := fmt.Sprintf("@every %ds", int(cfg.StatsInterval.Seconds()))
	_, _ = r.cron.AddFunc(statsSpec, r.recomputeAll)
	// Full refetch when the local day rolls over.
	_, _ = r.cron.AddFunc("0 0 0 * * *", r.rollover)

	return r
}

// Engine returns the user's engine, creating it on first use.
func (r *Registry) Engine(userID string) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if engine, ok := r.engines[userID]; ok {
		return engine
	}
	engine := NewEngine(userID, r.tasks, r.completions, r.reminders, r.logger)
	r.engines[userID] = engine
	return engine
}

// Start launches the shared timers.
func (r *Registry) Start() {
	r.cron.Start()
	r.logger.Info("reconciliation timers started",
		zap.Duration("stats_interval", r.cfg.StatsInterval),
		zap.String("location", r.cfg.Location.String()))
}

// Stop halts the timers, waiting for running jobs to finish.
func (r *Registry) Stop(ctx context.Context) {
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("reconciliation timers stopped")
}

func (r *Registry) recomputeAll() {
	for _, engine := range r.snapshotEngines() {
		engine.RecomputeStats()
	}
}

func (r *Registry) rollover() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for userID, engine := range r.snapshotEngines() {
		if err := engine.ResetDaily(ctx); err != nil {
			r.logger.Warn("midnight refresh failed",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		if r.sender == nil {
			continue
		}
		notice := notify.Notification{
			UserID: userID,
			Title:  "New Day, New Tasks!",
			Body:   "Your daily tasks have been reset",
		}
		if err := r.sender.Send(ctx, notice); err != nil {
			r.logger.Warn("daily reset notice failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
}

func (r *Registry) snapshotEngines() map[string]*Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	engines := make(map[string]*Engine, len(r.engines))
	for userID, engine := range r.engines {
		engines[userID] = engine
	}
	return engines
}
