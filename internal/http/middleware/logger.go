package middleware

import (
	"time"

	"shell_game/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger tags each request with an id, stores a request-scoped logger in
// the request context and logs the result.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()[:8]
		}
		c.Header("X-Request-ID", reqID)

		l := logger.With("request_id", reqID)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), l))

		c.Next()

		l.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
