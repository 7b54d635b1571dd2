package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/ingest/documents"
	"docscan-backend/internal/shared/server/middleware"
	"docscan-backend/internal/shared/server/respond"
)

// OCRHealthChecker reports whether the extraction worker is reachable.
type OCRHealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter constructs the backend's gin engine. The backend surface is
// flat and unversioned; only the gateway consumes it.
func NewRouter(handler *documents.Handler, ocrHealth OCRHealthChecker) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)

	started := time.Now()
	r.GET("/health", func(c *gin.Context) {
		ocrStatus := "ok"
		if ocrHealth != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ocrHealth.Health(ctx); err != nil {
				ocrStatus = "unreachable"
			}
		}
		respond.OK(c, gin.H{
			"status":        "ok",
			"ocr":           ocrStatus,
			"uptimeSeconds": int64(time.Since(started).Seconds()),
		})
	})

	handler.RegisterRoutes(r)
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
