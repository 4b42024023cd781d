package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xynexis/speaker-registration/internal/auth"
	"github.com/xynexis/speaker-registration/pkg/apperror"
	"github.com/xynexis/speaker-registration/pkg/response"
)

const (
	// ContextAdminID is the key for the admin ID in gin context.
	ContextAdminID = "admin_id"
	// ContextAdminEmail is the key for the admin email in gin context.
	ContextAdminEmail = "admin_email"
)

// JWT returns a middleware that validates the admin bearer token and sets claims in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortError(c, apperror.New(apperror.KindUnauthorized, "missing authorization header"))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.AbortError(c, apperror.New(apperror.KindUnauthorized, "invalid authorization header"))
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.AbortError(c, apperror.New(apperror.KindUnauthorized, "invalid or expired token"))
			return
		}
		c.Set(ContextAdminID, claims.AdminID)
		c.Set(ContextAdminEmail, claims.Email)
		c.Next()
	}
}
