package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/volantvm/bridgectl/internal/app"
	"github.com/volantvm/bridgectl/internal/config"
	"github.com/volantvm/bridgectl/internal/controller"
	"github.com/volantvm/bridgectl/internal/db/sqlite"
	"github.com/volantvm/bridgectl/internal/eventbus/memory"
	"github.com/volantvm/bridgectl/internal/httpapi"
	"github.com/volantvm/bridgectl/internal/network"
	"github.com/volantvm/bridgectl/internal/shared/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logging.New("bridgectld")

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("open journal", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	manager, err := network.New(cfg.Backend, network.Options{
		SysfsRoot: cfg.SysfsRoot,
		Logger:    logger.With("component", "network"),
	})
	if err != nil {
		logger.Error("initialize network backend", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer manager.Close()

	bus := memory.New()
	ctrl := controller.New(manager, store.Journal(), bus, logger.With("component", "controller"))
	handler := httpapi.New(ctrl, bus, logger.With("component", "httpapi"))
	daemon := app.New(cfg, logger, handler)

	logger.Info("starting", "addr", cfg.HTTPListen, "backend", cfg.Backend, "db", cfg.DatabasePath)
	if err := daemon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon exit", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete", "addr", cfg.HTTPListen)
}
