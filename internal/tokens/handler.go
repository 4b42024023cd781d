package tokens

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/pkg/response"
)

// IssueResponse is the body of GET /api/csrf.
type IssueResponse struct {
	Token string `json:"token"`
}

// Handler serves token issuance.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a tokens handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Issue handles GET /api/csrf. No request body; every call mints a fresh token.
func (h *Handler) Issue(c *gin.Context) {
	token, err := h.store.Issue(c.Request.Context())
	if err != nil {
		h.logger.Error("issue submission token failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, IssueResponse{Token: token})
}
