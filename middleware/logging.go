package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"PetPal/pkg/logger"
)

// RequestLogger injects a request scoped logger and logs one line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		reqLog := log.With(
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("remote_addr", c.ClientIP()),
		)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{"status", status, "latency_ms", time.Since(start).Milliseconds()}
		if uid := CurrentUserID(c); uid != 0 {
			attrs = append(attrs, "user_id", uid)
		}
		switch {
		case status >= 500:
			reqLog.Error("http - request - failed", attrs...)
		case status >= 400:
			reqLog.Warn("http - request - rejected", attrs...)
		default:
			reqLog.Info("http - request - served", attrs...)
		}
	}
}
