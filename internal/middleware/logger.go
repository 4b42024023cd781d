package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/internal/observability"
)

// HeaderRequestID carries the request ID in and out.
const HeaderRequestID = "X-Request-ID"

// ContextRequestID is the key for the request ID in gin context.
const ContextRequestID = "request_id"

// Logger returns a zap-based request logging middleware that also records
// request metrics and assigns a request ID.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		label := methodLabel(method)
		observability.HTTPRequestsTotal.WithLabelValues(label, route, strconv.Itoa(status)).Inc()
		observability.HTTPRequestDurationSeconds.WithLabelValues(label, route).Observe(latency.Seconds())

		logger.Info("request",
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestID),
		)
	}
}

// methodLabel keeps the metric label set bounded; clients may send any method.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodOptions:
		return method
	default:
		return "other"
	}
}
