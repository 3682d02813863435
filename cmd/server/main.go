package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/dailydo/backend/api/handler"
	"github.com/dailydo/backend/internal/config"
	"github.com/dailydo/backend/internal/infrastructure/monitor"
	pgInfra "github.com/dailydo/backend/internal/infrastructure/postgres"
	redisInfra "github.com/dailydo/backend/internal/infrastructure/redis"
	"github.com/dailydo/backend/internal/infrastructure/reminderstore"
	"github.com/dailydo/backend/internal/middleware"
	"github.com/dailydo/backend/internal/notify"
	"github.com/dailydo/backend/internal/router"
	"github.com/dailydo/backend/internal/services"
	"github.com/dailydo/backend/internal/services/lifecycle"
	"github.com/dailydo/backend/pkg/httpcontext"
	"github.com/dailydo/backend/pkg/logger"
	"github.com/dailydo/backend/repository"
	"github.com/dailydo/backend/repository/postgres"
	redisRepo "github.com/dailydo/backend/repository/redis"
	authUC "github.com/dailydo/backend/usecase/auth"
	historyUC "github.com/dailydo/backend/usecase/history"
	"github.com/dailydo/backend/usecase/reconcile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		FilePath:   cfg.Logger.FilePath,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	location, err := cfg.Location()
	if err != nil {
		zapLogger.Fatal("invalid time zone", zap.String("tz", cfg.Engine.Timezone), zap.Error(err))
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	reminderStore, err := reminderstore.Open(cfg.Reminders.StorePath, "reminders")
	if err != nil {
		zapLogger.Fatal("failed to open reminder store", zap.Error(err))
	}
	manager.Register("reminder_store", func(ctx context.Context) error {
		return reminderStore.Close()
	})

	mon := monitor.New(pool, redisClient, reminderStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	completionRepo := postgres.NewCompletionRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)

	sender, senderCleanup, err := buildSender(cfg, userRepo, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build reminder sender", zap.Error(err))
	}
	if senderCleanup != nil {
		manager.Register("reminder_sender", senderCleanup)
	}

	scheduler := notify.NewScheduler(reminderStore, zapLogger)

	dispatcher := services.NewReminderDispatcher(
		reminderStore,
		sender,
		zapLogger,
		services.DispatcherConfig{
			Interval:  cfg.Reminders.DispatchInterval,
			BatchSize: cfg.Reminders.BatchSize,
		},
	)
	dispatcher.Start()
	manager.Register("reminder_dispatcher", func(ctx context.Context) error {
		dispatcher.Stop(ctx)
		return nil
	})

	registry := reconcile.NewRegistry(
		reconcile.RegistryConfig{
			StatsInterval: cfg.Engine.StatsInterval,
			Location:      location,
		},
		taskRepo,
		completionRepo,
		scheduler,
		sender,
		zapLogger,
	)
	registry.Start()
	manager.Register("reconcile_registry", func(ctx context.Context) error {
		registry.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger)
	historyUseCase := historyUC.New(completionRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.Secret, cfg.JWT.Issuer, time.Hour),
		Task:    apiHandler.NewTaskHandler(registry, ctxAdapter, zapLogger),
		History: apiHandler.NewHistoryHandler(historyUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// buildSender picks the reminder delivery channel from configuration.
func buildSender(cfg *config.Config, users repository.UserRepository, zapLogger *zap.Logger) (notify.Sender, func(context.Context) error, error) {
	switch cfg.Reminders.Channel {
	case "webhook":
		return notify.NewWebhookSender(cfg.Reminders.WebhookURL, cfg.Reminders.WebhookTimeout, zapLogger), nil, nil
	case "nats":
		sender, err := notify.NewNATSSender(cfg.Reminders.NATSURL, cfg.Reminders.NATSSubject, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func(context.Context) error {
			sender.Close()
			return nil
		}
		return sender, cleanup, nil
	case "telegram":
		sender, err := notify.NewTelegramSender(cfg.Reminders.TelegramToken, users, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		return sender, nil, nil
	default:
		return notify.NewLogSender(zapLogger), nil, nil
	}
}
