package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dariemcarlosdev/secure-clean-api/internal/config"
	"github.com/dariemcarlosdev/secure-clean-api/internal/infrastructure/db"
	appinit "github.com/dariemcarlosdev/secure-clean-api/internal/init"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := cfg.Logger
	defer logger.Sync()

	logger.Info("Starting auth service",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("fast_tier", cfg.Blacklist.FastTier),
		zap.Bool("durable_enabled", cfg.Blacklist.DurableEnabled),
	)

	infrastructure, err := db.NewInfrastructure(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize infrastructure", zap.Error(err))
	}
	defer infrastructure.Close()

	if err := db.AutoMigrate(infrastructure.DB); err != nil {
		logger.Fatal("Database migration failed", zap.Error(err))
	}

	app, err := appinit.NewApp(cfg, infrastructure, nil)
	if err != nil {
		logger.Fatal("Failed to wire application", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrs, err := app.Start(ctx)
	if err != nil {
		logger.Fatal("Failed to start application", zap.Error(err))
	}
	logger.Info("Auth service started", zap.String("instance_id", app.InstanceID))

	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case err := <-serverErrs:
		logger.Error("Server stopped unexpectedly", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown finished with errors", zap.Error(err))
		return
	}
	logger.Info("Auth service stopped")
}
