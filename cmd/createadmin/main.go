// Package main creates or resets a dashboard admin account.
//
//	createadmin -email admin@example.com -password 'long-enough-secret'
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/config"
	"github.com/xynexis/speaker-registration/internal/auth"
	"github.com/xynexis/speaker-registration/internal/observability"
	"github.com/xynexis/speaker-registration/pkg/database"
	"github.com/xynexis/speaker-registration/pkg/utils"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (or ADMIN_PASSWORD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	logger := observability.NewLogger(cfg.Log.Level)
	defer logger.Sync()

	addr := strings.ToLower(strings.TrimSpace(*email))
	if addr == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		logger.Fatal("hash password", zap.Error(err), zap.Int("min_length", utils.MinPasswordLength))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	admin, err := auth.NewRepository(pool).Upsert(ctx, addr, hash)
	if err != nil {
		logger.Fatal("save admin", zap.Error(err))
	}
	logger.Info("admin saved", zap.String("id", admin.ID.String()), zap.String("email", admin.Email))
}
