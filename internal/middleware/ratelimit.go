package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/forgo/jobtrack/internal/model"
)

// RateLimiter implements fixed-window rate limiting keyed by an arbitrary
// string, usually the client address.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // Requests per window
	period   time.Duration // Window length
	cleanup  time.Duration // Cleanup interval for expired windows
	now      func() time.Time
	stopOnce sync.Once
	stopChan chan struct{}
}

type window struct {
	count int
	start time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Limit   int           // Requests per window (default 10)
	Window  time.Duration // Window length (default 15 minutes)
	Cleanup time.Duration // Cleanup interval (default 5 minutes)
}

// NewRateLimiter creates a new rate limiter and starts its cleanup loop
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	rl := &RateLimiter{
		windows:  make(map[string]*window),
		limit:    cfg.Limit,
		period:   cfg.Window,
		cleanup:  cfg.Cleanup,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the rate limiter cleanup goroutine. It is safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupExpired()
		case <-rl.stopChan:
			return
		}
	}
}

func (rl *RateLimiter) cleanupExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.period)
	for key, w := range rl.windows {
		if !w.start.After(cutoff) {
			delete(rl.windows, key)
		}
	}
}

// Allow records a request for key and reports whether it fits in the
// current window, how many requests remain and when the window resets.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, resetTime time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.windows[key]
	if !exists || !now.Before(w.start.Add(rl.period)) {
		w = &window{start: now}
		rl.windows[key] = w
	}

	resetTime = w.start.Add(rl.period)
	if w.count >= rl.limit {
		return false, 0, resetTime
	}

	w.count++
	return true, rl.limit - w.count, resetTime
}

// Limit returns the number of requests allowed per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// RateLimit returns a middleware that limits requests per client address.
// trustProxy selects whether X-Forwarded-For identifies the client.
func RateLimit(limiter *RateLimiter, trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r, trustProxy)

			allowed, remaining, resetTime := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				retryAfter := int(resetTime.Sub(limiter.now()).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				model.NewRateLimitError().WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
