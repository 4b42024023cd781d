// Package main runs the speaker registration HTTP API with graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/config"
	"github.com/xynexis/speaker-registration/internal/auth"
	"github.com/xynexis/speaker-registration/internal/middleware"
	"github.com/xynexis/speaker-registration/internal/observability"
	"github.com/xynexis/speaker-registration/internal/registrations"
	"github.com/xynexis/speaker-registration/internal/router"
	"github.com/xynexis/speaker-registration/internal/tokens"
	"github.com/xynexis/speaker-registration/pkg/database"
	"github.com/xynexis/speaker-registration/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := observability.NewLogger(cfg.Log.Level)
	defer logger.Sync()

	ctx := context.Background()

	// The store handle is created once here and shared read-only by every request.
	// Without a database the API still starts and answers 500 Server Configuration Error.
	var pool *pgxpool.Pool
	if cfg.Database.Configured() {
		pool, err = database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
	} else {
		logger.Warn("DATABASE_URL not set; token and submission endpoints will report a configuration error")
	}

	var limiter middleware.WindowCounter
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	switch {
	case errors.Is(err, redis.ErrDisabled):
		logger.Info("REDIS_ADDR not set; rate limiting disabled")
	case err != nil:
		logger.Warn("redis unavailable; rate limiting disabled", zap.Error(err))
	default:
		defer rdb.Close()
		limiter = rdb
	}

	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET not set; admin login disabled")
	}

	if cfg.Metrics.Enabled {
		observability.MustRegister()
	}

	timeout := cfg.Database.StoreTimeout

	// Tokens
	tokenRepo := tokens.NewRepository(pool)
	tokenStore := tokens.NewStore(tokenRepo, cfg.Tokens.TTL, timeout, logger)
	tokenHandler := tokens.NewHandler(tokenStore, logger)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	registrationSvc := registrations.NewService(tokenStore, registrationRepo, timeout, logger)
	registrationHandler := registrations.NewHandler(registrationSvc, logger)

	// Admin
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Deps{
		Logger:             logger,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		TrustedProxies:     cfg.Server.TrustedProxies,
		Tokens:             tokenHandler,
		Registrations:      registrationHandler,
		Auth:               authHandler,
		JWT:                jwtService,
		Limiter:            limiter,
		RateLimitPerMinute: cfg.RateLimit.PerMinute,
		MetricsEnabled:     cfg.Metrics.Enabled,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
