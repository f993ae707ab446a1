package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicematch/internal/logger"
	"servicematch/internal/pkg/apperr"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError renders a service error. Typed errors keep their code and user-facing message;
// anything else is logged and reported as a generic internal error.
func FromError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		logger.CtxWithError(c.Request.Context(), "unhandled error", err, "path", c.FullPath())
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, apperr.ErrInternal.Code, apperr.ErrInternal.Message)
		return
	}

	status := apperr.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		logger.CtxWithError(c.Request.Context(), "request failed", err, "code", appErr.Code, "path", c.FullPath())
		_ = c.Error(err)
	}
	if appErr.Retryable {
		c.Header("Retry-After", "1")
	}
	Error(c, status, appErr.Code, appErr.Message)
}

func BadRequest(c *gin.Context, code, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

func ValidationFailed(c *gin.Context, details map[string]string) {
	ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", details)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
}
