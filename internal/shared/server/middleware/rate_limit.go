package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/shared/server/respond"
)

// RateLimitConfig configures the fixed-window limiter middleware.
type RateLimitConfig struct {
	Window  time.Duration
	Max     int
	Limiter *RateLimiter
}

// RateLimiter counts requests per key within fixed windows. State is
// per-process; a multi-instance deployment needs a shared counter store
// for the ceiling to hold across instances.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time
}

type rateWindow struct {
	start time.Time
	count int
}

// NewRateLimiter constructs a limiter with an injectable clock for tests.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		windows: make(map[string]*rateWindow),
		now:     now,
	}
}

// Reset drops all counters, starting every key on a fresh window.
func (l *RateLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*rateWindow)
}

// Allow records one request for key and reports whether it fits inside
// the current window, along with the remaining budget and the window end.
func (l *RateLimiter) Allow(key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time) {
	if max <= 0 || window <= 0 {
		return true, 0, l.now()
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= window {
		w = &rateWindow{start: now}
		l.windows[key] = w
	}
	reset = w.start.Add(window)

	if w.count >= max {
		return false, 0, reset
	}
	w.count++
	return true, max - w.count, reset
}

// RateLimit enforces a fixed-window ceiling keyed by API key, falling back
// to client address when no key was presented. Limit headers are set on
// every response, rejected ones included.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if key == "" {
			key = strings.TrimSpace(c.ClientIP())
		}

		allowed, remaining, reset := cfg.Limiter.Allow(key, cfg.Window, cfg.Max)

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			respond.Error(c, http.StatusTooManyRequests, respond.CodeRateLimitExceeded, "Too many requests, try again later")
			return
		}
		c.Next()
	}
}
