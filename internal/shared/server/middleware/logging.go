package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if docID, ok := c.Get("documentId"); ok {
			fields["document_id"] = docID
		}
		if key := APIKeyFromContext(c); key != "" {
			fields["api_key"] = maskKey(key)
		}

		telemetry.Info("request.complete", fields)
	}
}

// maskKey keeps the first four characters of an API key for correlation
// without logging the credential itself.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}
