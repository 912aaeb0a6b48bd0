package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterStore holds keyed rate limiters with automatic cleanup.
type limiterStore struct {
	limiters sync.Map // map[string]*limiterEntry
	rps      float64
	burst    int
}

// limiterEntry holds a rate limiter and last access time for cleanup.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	store := &limiterStore{rps: rps, burst: burst}

	// Start cleanup goroutine for stale limiters (every 5 minutes)
	go store.cleanupStale(context.Background(), 5*time.Minute)

	return store
}

// RateLimitMiddleware enforces rate limiting per credential on authenticated requests.
//
// MUST be used after one of the authentication middlewares. Requests are keyed by session
// so each delegated application of a user has its own budget; anonymous requests fall back
// to the client IP.
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		store.limit(c, credentialKey(c), logger)
	}
}

// IPRateLimitMiddleware enforces per-IP rate limiting on unauthenticated endpoints such as
// the handshake request and exchange.
//
// Uses c.ClientIP() which honours X-Forwarded-For and X-Real-IP from trusted proxies.
func IPRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		store.limit(c, "ip:"+c.ClientIP(), logger)
	}
}

func credentialKey(c *gin.Context) string {
	auth, ok := GetAuth(c.Request.Context())
	switch {
	case !ok || auth.IsAnonymous():
		return "ip:" + c.ClientIP()
	case auth.Session != nil:
		return "session:" + auth.Session.JTI
	default:
		return "user:" + auth.User.ID.String()
	}
}

func (s *limiterStore) limit(c *gin.Context, key string, logger *slog.Logger) {
	limiter := s.getLimiter(key)

	if !limiter.Allow() {
		reservation := limiter.Reserve()
		retryAfter := int(reservation.Delay().Seconds())
		reservation.Cancel()

		logger.Debug("rate limit exceeded",
			slog.String("key", key),
			slog.Int("retry_after", retryAfter))

		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": "Too many requests. Please retry after the specified delay.",
		})
		c.Abort()
		return
	}

	c.Next()
}

// getLimiter retrieves or creates the rate limiter for key.
func (s *limiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}
	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

// cleanupStale removes rate limiters that haven't been accessed in the last hour.
func (s *limiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value interface{}) bool {
				entry := value.(*limiterEntry)
				entry.mu.Lock()
				shouldDelete := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if shouldDelete {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
