package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ccheshirecat/routeassist/internal/app"
	"github.com/ccheshirecat/routeassist/internal/config"
	"github.com/ccheshirecat/routeassist/internal/controller"
	"github.com/ccheshirecat/routeassist/internal/hostcheck"
	"github.com/ccheshirecat/routeassist/internal/httpapi"
	"github.com/ccheshirecat/routeassist/internal/routes"
	"github.com/ccheshirecat/routeassist/internal/shared/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromEnv()
	if err != nil {
		logging.New("routeassistd").Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewWithOptions("routeassistd", logging.Options{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})

	var store routes.Store = routes.NewMemoryStore(routes.Config{})
	if cfg.ConfigPath != "" {
		fileStore, err := routes.NewFileStore(cfg.ConfigPath)
		if err != nil {
			logger.Error("init route store", "path", cfg.ConfigPath, "error", err)
			os.Exit(1)
		}
		store = fileStore
	} else {
		logger.Warn("no configuration path set, serving an empty configuration")
	}

	ctrl := controller.New(store, hostcheck.NetResolver{})
	handler := httpapi.New(ctrl, httpapi.Options{
		Logger:        logger,
		Origin:        cfg.Origin,
		Debounce:      cfg.Debounce,
		LookupTimeout: cfg.LookupTimeout,
		APIKey:        cfg.APIKey,
	})
	daemon := app.New(cfg, logger, handler)

	if err := daemon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon exit", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete", "addr", cfg.HTTPListen)
}
