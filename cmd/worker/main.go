package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/ticketdesk/pkg/app"
	"github.com/ghuser/ticketdesk/pkg/cache"
	"github.com/ghuser/ticketdesk/pkg/config"
	"github.com/ghuser/ticketdesk/pkg/database"
	"github.com/ghuser/ticketdesk/pkg/events"
	"github.com/ghuser/ticketdesk/pkg/logger"
	"github.com/ghuser/ticketdesk/pkg/telemetry"
	pkgworkflows "github.com/ghuser/ticketdesk/pkg/workflows"
	"github.com/ghuser/ticketdesk/services/ticket/application/subscribers"
	ticketworkflows "github.com/ghuser/ticketdesk/services/ticket/application/workflows"
	"github.com/ghuser/ticketdesk/services/ticket/infrastructure/persistence/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("refusing to start with unsafe production config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg).With("process", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker exited", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already ran
	}
}

// run consumes ticket events until ctx is cancelled. EventBus.Close, run by
// defer, waits for in-flight handlers before the process exits.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close() //nolint:errcheck

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		return fmt.Errorf("setup event bus: %w", err)
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close() //nolint:errcheck

	a := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	handlers := &subscribers.Handlers{
		Cache: cache.NewTicketCache(redisClient),
		Log:   log.With("component", "ticket_subscribers"),
	}

	if cfg.TemporalEnabled {
		temporalClient, err := pkgworkflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			return fmt.Errorf("dial temporal: %w", err)
		}
		defer temporalClient.Close()
		a.TemporalClient = temporalClient

		w := temporalClient.NewWorker(cfg.TemporalTaskQueue)
		ticketworkflows.Register(w, &ticketworkflows.Activities{
			Tickets:   postgres.NewTicketRepository(a.Db, a.EventBus),
			Publisher: a.EventBus,
		})
		if err := w.Start(); err != nil {
			return fmt.Errorf("start temporal worker: %w", err)
		}
		defer w.Stop()
		log.Info("temporal worker started", "task_queue", cfg.TemporalTaskQueue)

		handlers.Escalations = temporalClient.Client
		handlers.TaskQueue = cfg.TemporalTaskQueue
		handlers.EscalateAfter = cfg.TicketEscalationAfter
	}

	if err := handlers.Register(ctx, a.EventBus); err != nil {
		return fmt.Errorf("register subscribers: %w", err)
	}
	log.Info("worker running")

	<-ctx.Done()
	log.Info("shutting down worker")
	return nil
}
