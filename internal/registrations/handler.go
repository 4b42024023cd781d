package registrations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/internal/models"
	"github.com/xynexis/speaker-registration/pkg/apperror"
	"github.com/xynexis/speaker-registration/pkg/response"
)

// MaxSubmitBytes caps the POST /api/submit body.
const MaxSubmitBytes = 16 << 10

// SubmitRequest is the body for POST /api/submit.
type SubmitRequest struct {
	FullName         string  `json:"full_name" binding:"required"`
	CompanyName      string  `json:"company_name" binding:"required"`
	Email            string  `json:"email" binding:"required"`
	PhoneNumber      *string `json:"phone_number"`
	Position         string  `json:"position" binding:"required"`
	PrivacyConsent   bool    `json:"privacy_consent"`
	MarketingConsent bool    `json:"marketing_consent"`
	Token            string  `json:"token" binding:"required"`
}

// ListResponse is the body for GET /api/admin/speakers.
type ListResponse struct {
	Speakers []models.SpeakerRegistration `json:"speakers"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Submit handles POST /api/submit.
func (h *Handler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSubmitBytes)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Error(c, apperror.MissingFields())
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.New(apperror.KindBodyTooLarge, apperror.MsgBodyTooLarge))
			return
		}
		response.Error(c, apperror.New(apperror.KindBadRequest, apperror.MsgInvalidBody))
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), Submission{
		FullName:         req.FullName,
		CompanyName:      req.CompanyName,
		Position:         req.Position,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		PrivacyConsent:   req.PrivacyConsent,
		MarketingConsent: req.MarketingConsent,
		Token:            req.Token,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res.Message)
}

// List handles GET /api/admin/speakers. Requires an authenticated admin.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list speakers failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, ListResponse{Speakers: list})
}
