package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"servicematch/internal/logger"
	"servicematch/internal/pkg/response"
)

const requestIDHeader = "X-Request-ID"

// RequestContext tags the request with an id (reusing a sane inbound one) and
// bounds it with a timeout so store calls see a cancelled context.
func RequestContext(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// AccessLog writes one line per request; level follows the status class.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.Int("size_bytes", c.Writer.Size()),
		}
		// the auth middleware swaps the request, so read user_id from gin as well
		if uid := c.GetInt64("user_id"); uid != 0 {
			fields = append(fields, slog.Int64("user_id", uid))
		}
		log := logger.FromContext(c.Request.Context())
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}

// ErrorLogger recovers panics and logs gin errors attached by handlers.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.FromContext(c.Request.Context()).Error("panic recovered",
					"error", fmt.Sprintf("%v", recovered),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				c.Abort()
				return
			}
			for _, err := range c.Errors {
				logger.FromContext(c.Request.Context()).Error("request error",
					"type", fmt.Sprintf("%v", err.Type),
					"error", err.Error(),
					"path", c.Request.URL.Path,
					"status", c.Writer.Status(),
				)
			}
		}()
		c.Next()
	}
}
