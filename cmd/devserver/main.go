// devserver runs a local bid authority for development: the REST
// endpoints plus the /ws push channel, backed by an in-memory store or
// PostgreSQL when devserver.database.enabled is set.
//
// Usage: go run ./cmd/devserver --config configs/bidwatch.example.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openbid/bidwatch/internal/config"
	"github.com/openbid/bidwatch/internal/devserver"
	"github.com/openbid/bidwatch/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bidwatch.example.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if len(cfg.DevServer.Products) == 0 {
		logger.Error("no products configured under devserver.products")
		os.Exit(1)
	}

	logger.Info("devserver starting", "version", version.String())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store devserver.Store
	if cfg.DevServer.Database.Enabled {
		pg, err := devserver.NewPGStore(ctx, cfg.DevServer.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		logger.Info("using postgres store",
			"host", cfg.DevServer.Database.Host,
			"database", cfg.DevServer.Database.Name,
		)
		store = pg
	} else {
		logger.Info("using in-memory store")
		store = devserver.NewMemStore()
	}
	defer store.Close()

	srv := devserver.New(cfg.DevServer, store, logger)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("devserver exited", "error", err)
		os.Exit(1)
	}
	logger.Info("devserver stopped")
}
