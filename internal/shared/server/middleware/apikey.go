package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/server/respond"
)

const apiKeyCtxKey = "apiKey"

// APIKeyAuth validates the X-API-Key header against the configured keys.
// A missing key and a wrong key are distinct failures: clients that forgot
// the header get 401, clients holding a revoked or mistyped key get 403.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	keys := make([]string, 0, len(validKeys))
	for _, k := range validKeys {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		supplied := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if supplied == "" {
			respond.Error(c, http.StatusUnauthorized, respond.CodeMissingAPIKey, "API key is required")
			return
		}

		for _, k := range keys {
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(k)) == 1 {
				c.Set(apiKeyCtxKey, supplied)
				c.Next()
				return
			}
		}

		respond.Error(c, http.StatusForbidden, respond.CodeInvalidAPIKey, "Invalid API key")
	}
}

// APIKeyFromContext fetches the key validated by APIKeyAuth, if any.
func APIKeyFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(apiKeyCtxKey)
	if key, ok := val.(string); ok {
		return key
	}
	return ""
}
