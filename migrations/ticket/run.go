// Command ticket applies the ticket schema migrations.
package main

import (
	"context"
	"embed"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/ticketdesk/pkg/config"
	"github.com/ghuser/ticketdesk/pkg/logger"
	"github.com/ghuser/ticketdesk/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg).With("process", "migrate", "context", "ticket")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrator.Up(ctx, cfg.DefinitionDatabaseURL, MigrationsFS, log); err != nil {
		log.Error("ticket migrations failed", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already ran
	}
}
