package gateway

import (
	"time"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/server/middleware"
)

// RouterConfig carries the gateway's policy knobs.
type RouterConfig struct {
	APIKeys         []string
	AllowedOrigins  []string
	RateLimitWindow time.Duration
	RateLimitMax    int
	Limiter         *middleware.RateLimiter
}

// NewRouter constructs the gateway's gin engine. All document routes live
// under the versioned prefix and require a valid API key; the key check
// runs before the rate limiter so unauthenticated probes never consume a
// caller's budget. Health is open.
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.AllowedOrigins),
	)

	v1 := r.Group(externalPrefix)
	v1.GET("/health", handler.Health)

	authed := v1.Group("")
	authed.Use(
		middleware.APIKeyAuth(cfg.APIKeys),
		middleware.RateLimit(middleware.RateLimitConfig{
			Window:  cfg.RateLimitWindow,
			Max:     cfg.RateLimitMax,
			Limiter: cfg.Limiter,
		}),
	)
	handler.RegisterRoutes(authed)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":4000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
