// Package router assembles the gin engine for the registration API.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/internal/auth"
	"github.com/xynexis/speaker-registration/internal/middleware"
	"github.com/xynexis/speaker-registration/internal/registrations"
	"github.com/xynexis/speaker-registration/internal/tokens"
	"github.com/xynexis/speaker-registration/pkg/response"
)

// Deps are the handlers and settings the router wires together.
type Deps struct {
	Logger             *zap.Logger
	CORSAllowedOrigins string
	TrustedProxies     []string // empty: client IP is the TCP peer
	Tokens             *tokens.Handler
	Registrations      *registrations.Handler
	Auth               *auth.Handler
	JWT                *auth.JWTService
	Limiter            middleware.WindowCounter // nil disables throttling
	RateLimitPerMinute int
	MetricsEnabled     bool
}

// New builds the engine. Routes answer other methods with 405.
func New(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies; trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.HandleMethodNotAllowed = true
	r.NoMethod(response.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "Not Found") })

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(d.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	if d.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/csrf", middleware.RateLimit(d.Limiter, "csrf", d.RateLimitPerMinute, logger), d.Tokens.Issue)
		api.POST("/submit", middleware.RateLimit(d.Limiter, "submit", d.RateLimitPerMinute, logger), d.Registrations.Submit)

		admin := api.Group("/admin")
		admin.POST("/login", middleware.RateLimit(d.Limiter, "login", d.RateLimitPerMinute, logger), d.Auth.Login)
		admin.GET("/speakers", middleware.JWT(d.JWT), d.Registrations.List)
	}
	return r
}
