package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/splitlyapp/splitly/pkg/response"
)

// userLimiter pairs a token bucket with the last time it was touched.
type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter enforces a per-user request rate. Entries for idle users are
// evicted by a background cleanup loop.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	cleanup time.Duration

	mu       sync.Mutex
	limiters map[string]*userLimiter

	stopCh chan struct{}
}

// NewRateLimiter creates a rate limiter allowing requestsPerMin requests per
// minute per user and starts its cleanup loop.
func NewRateLimiter(requestsPerMin int) *RateLimiter {
	rl := &RateLimiter{
		limit:    rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    requestsPerMin,
		cleanup:  5 * time.Minute,
		limiters: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop terminates the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware returns the per-user rate limiting middleware. It must sit
// after the auth middleware so a user ID is on the context.
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}

			if !rl.allow(userID) {
				retryAfter := int(math.Ceil(1.0 / float64(rl.limit)))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				response.TooManyRequests(w, "Too many requests. Please try again later.")
				slog.Warn("rate limit exceeded", "user_id", userID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(userID string) bool {
	rl.mu.Lock()
	ul, exists := rl.limiters[userID]
	if !exists {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[userID] = ul
	}
	ul.lastAccess = time.Now()
	rl.mu.Unlock()

	return ul.limiter.Allow()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopCh:
			return
		}
	}
}

// evictIdle drops entries untouched for twice the cleanup interval.
func (rl *RateLimiter) evictIdle() {
	ttl := rl.cleanup * 2
	now := time.Now()

	rl.mu.Lock()
	for userID, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > ttl {
			delete(rl.limiters, userID)
		}
	}
	rl.mu.Unlock()
}
