package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/events"
	applog "budget/internal/log"
	"budget/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to load .env file", applog.FieldError, err)
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err == nil {
		err = cfg.ValidateSync()
	}
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg, false, os.Stderr)
	if err := run(cfg, logger); err != nil {
		logger.Error("Sync worker stopped", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	logger.Info("Starting budget-sync",
		"primary", cfg.Backend,
		"mirror", cfg.SyncBackend,
		"events", cfg.EventsBackend,
		"interval", cfg.SyncInterval)

	ctx, cancel := cli.GracefulShutdown(logger, nil)
	defer cancel()

	factory := backend.NewFactory(logger)

	primary, err := openStore(ctx, factory, cfg, cfg.Backend)
	if err != nil {
		return fmt.Errorf("open primary store: %w", err)
	}
	defer closeWith(logger, "primary store", primary.Cleanup)

	mirror, err := openStore(ctx, factory, cfg, cfg.SyncBackend)
	if err != nil {
		return fmt.Errorf("open mirror store: %w", err)
	}
	defer closeWith(logger, "mirror store", mirror.Cleanup)

	bcfg, err := backend.FromAppConfig(cfg, cfg.Backend)
	if err != nil {
		return err
	}

	var consumer events.Consumer
	if bcfg.Events == backend.NoEvents || bcfg.Events == "" {
		logger.Info("No events backend configured, syncing on interval only")
	} else {
		res, err := factory.CreateConsumer(ctx, bcfg)
		if err != nil {
			return fmt.Errorf("initialize event consumer: %w", err)
		}
		defer closeWith(logger, "event consumer", res.Cleanup)
		consumer = res.Consumer
	}

	w := worker.NewSyncWorker(primary.Store, mirror.Store, logger)
	if err := w.Run(ctx, consumer, cfg.SyncInterval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, f backend.Factory, cfg *config.Config, backendType string) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg, backendType)
	if err != nil {
		return nil, err
	}
	return f.CreateStore(ctx, bcfg)
}

func closeWith(logger *applog.Logger, what string, cleanup backend.CleanupFunc) {
	if cleanup == nil {
		return
	}
	if err := cleanup(); err != nil {
		logger.Warn("Failed to close "+what, applog.FieldError, err)
	}
}
