package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/ticketdesk/docs/swagger"
	"github.com/ghuser/ticketdesk/pkg/app"
	"github.com/ghuser/ticketdesk/pkg/auth"
	"github.com/ghuser/ticketdesk/pkg/cache"
	"github.com/ghuser/ticketdesk/pkg/config"
	"github.com/ghuser/ticketdesk/pkg/database"
	"github.com/ghuser/ticketdesk/pkg/events"
	"github.com/ghuser/ticketdesk/pkg/httpx"
	"github.com/ghuser/ticketdesk/pkg/logger"
	"github.com/ghuser/ticketdesk/pkg/telemetry"
	"github.com/ghuser/ticketdesk/pkg/workflows"
	ticketApi "github.com/ghuser/ticketdesk/services/ticket/application/api"
)

const shutdownTimeout = 30 * time.Second

// @title					TicketDesk API
// @version				1.0
// @description			Multi-tenant ticket tracking API.
// @contact.name			API Support
// @contact.email			support@ticketdesk.dev
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
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

	log := logger.New(cfg).With("process", "api")
	log.Debug("configuration loaded", "config", config.Describe(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api exited", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already ran
	}
}

// run owns every resource of the API process. Deferred cleanups run on both
// startup failure and shutdown.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
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

	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		return fmt.Errorf("setup event bus: %w", err)
	}
	defer eventBus.Close() //nolint:errcheck
	if err := eventBus.StartForwarder(ctx); err != nil {
		return fmt.Errorf("start outbox forwarder: %w", err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close() //nolint:errcheck

	// Workflows are started by the worker; the API dials Temporal only to
	// report it in /health.
	var temporalClient *workflows.TemporalClient
	var temporalHealth httpx.HealthChecker
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			return fmt.Errorf("dial temporal: %w", err)
		}
		defer temporalClient.Close()
		temporalHealth = temporalClient
	}

	sessionStore := auth.NewSessionStore(
		redisClient.Client(),
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
	)

	a := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
		SessionStore:   sessionStore,
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		},
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		middleware.RequestID,
		otelhttp.NewMiddleware(cfg.ServiceName),
		logger.Middleware(log),
	)
	r.Get("/health", httpx.HealthHandler(httpx.HealthChecks{
		Database: pool,
		Redis:    redisClient,
		EventBus: eventBus,
		Temporal: temporalHealth,
	}))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		if cfg.Environment == config.EnvDevelopment {
			r.Post("/dev/session", auth.DevSessionHandler(sessionStore, log))
		}
		r.Post("/logout", auth.LogoutHandler(sessionStore, log))
		registerRoutes(r, a)
	})

	return serve(ctx, httpx.NewServer(cfg.HTTPAddr, r), log)
}

// serve blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func serve(ctx context.Context, srv *http.Server, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// registerRoutes mounts every bounded context under /api.
func registerRoutes(r chi.Router, a *app.Application) {
	ticketApi.TicketRoutes(r, a)
}
