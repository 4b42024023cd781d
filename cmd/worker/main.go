// Package main runs the background worker that sweeps expired submission tokens.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/config"
	"github.com/xynexis/speaker-registration/internal/observability"
	"github.com/xynexis/speaker-registration/internal/tokens"
	"github.com/xynexis/speaker-registration/internal/worker"
	"github.com/xynexis/speaker-registration/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := observability.NewLogger(cfg.Log.Level)
	defer logger.Sync()

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	sweeper := worker.NewSweeper(tokens.NewRepository(pool), cfg.Tokens.TTL, cfg.Tokens.SweepInterval, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweeper.Run(workerCtx)
	}()
	logger.Info("token sweeper started",
		zap.Duration("ttl", cfg.Tokens.TTL),
		zap.Duration("interval", cfg.Tokens.SweepInterval),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-done:
	}

	cancel()
	<-done
	logger.Info("worker stopped")
}
