package respond

import (
	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/telemetry"
)

// Error codes shared across both layers. The gateway re-codes backend
// failures into this set before they reach an external client.
const (
	CodeMissingAPIKey      = "MISSING_API_KEY"
	CodeInvalidAPIKey      = "INVALID_API_KEY"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeNoFile             = "NO_FILE"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// ErrorResponse wraps the error body. Every failure, at either layer,
// serializes to this one shape.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response carrying the request id.
func Error(c *gin.Context, status int, code, message string) {
	reqID := c.GetString("requestId")
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": reqID,
	})

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			RequestID: reqID,
		},
	})
}
