package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/internal/observability"
	"github.com/xynexis/speaker-registration/pkg/apperror"
	"github.com/xynexis/speaker-registration/pkg/response"
)

const rateWindow = time.Minute

// WindowCounter counts hits on a key within an expiring window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit returns a fixed-window per-IP limiter for one route. A nil counter
// or a non-positive limit disables it. Counter errors let the request through.
func RateLimit(counter WindowCounter, route string, limit int, logger *zap.Logger) gin.HandlerFunc {
	if counter == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		now := time.Now()
		window := now.Unix() / int64(rateWindow.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%s:%d", route, c.ClientIP(), window)

		count, err := counter.IncrWindow(c.Request.Context(), key, rateWindow)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("route", route), zap.Error(err))
			c.Next()
			return
		}
		if count > int64(limit) {
			observability.RateLimitedTotal.WithLabelValues(route).Inc()
			retryAfter := rateWindow - now.Sub(time.Unix(window*int64(rateWindow.Seconds()), 0))
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			response.AbortError(c, apperror.New(apperror.KindRateLimited, apperror.MsgRateLimited))
			return
		}
		c.Next()
	}
}
