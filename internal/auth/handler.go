package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/internal/models"
	"github.com/xynexis/speaker-registration/pkg/apperror"
	"github.com/xynexis/speaker-registration/pkg/database"
	"github.com/xynexis/speaker-registration/pkg/response"
	"github.com/xynexis/speaker-registration/pkg/utils"
)

const msgBadCredentials = "Invalid email or password"

// AdminFinder looks up admins for login.
type AdminFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// LoginRequest is the body for POST /api/admin/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string             `json:"token"`
	Admin models.AdminPublic `json:"admin"`
}

// Handler handles admin auth endpoints.
type Handler struct {
	repo   AdminFinder
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo AdminFinder, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.New(apperror.KindBadRequest, "Email and password are required"))
		return
	}

	admin, err := h.repo.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	switch {
	case errors.Is(err, ErrAdminNotFound):
		response.Error(c, apperror.New(apperror.KindUnauthorized, msgBadCredentials))
		return
	case errors.Is(err, database.ErrNotConfigured):
		h.logger.Error("admin login without database", zap.Error(err))
		response.Error(c, apperror.Configuration(err))
		return
	case err != nil:
		h.logger.Error("admin lookup failed", zap.Error(err))
		response.Error(c, apperror.Storage(err))
		return
	}

	if !utils.CheckPassword(req.Password, admin.Password) {
		response.Error(c, apperror.New(apperror.KindUnauthorized, msgBadCredentials))
		return
	}

	token, err := h.jwt.Generate(admin.ID, admin.Email)
	if err != nil {
		h.logger.Error("generate admin token failed", zap.Error(err))
		response.Error(c, apperror.Configuration(err))
		return
	}

	response.OK(c, TokenResponse{Token: token, Admin: admin.ToPublic()})
}
