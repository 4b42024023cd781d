package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xynexis/speaker-registration/pkg/apperror"
)

// Message is the body of every non-data response.
type Message struct {
	Message string `json:"message"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Success sends 200 {"message": msg}.
func Success(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Message{Message: msg})
}

// Error sends the status and client-safe message of err. Unknown errors
// become 500 with a generic message.
func Error(c *gin.Context, err error) {
	appErr := apperror.From(err)
	c.JSON(appErr.Status(), Message{Message: appErr.Message})
}

// AbortError sends the error response and stops the handler chain.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// MethodNotAllowed sends 405.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, Message{Message: apperror.MsgMethodNotAllowed})
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Message{Message: msg})
}
