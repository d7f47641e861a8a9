// Package ratelimit implements a fixed-window request limiter keyed by
// client IP, with the standard X-RateLimit response headers.
package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Route presets, ordered from cheap reads to destructive operations.
func Read() *Limiter     { return New(60, time.Minute) }
func Write() *Limiter    { return New(30, time.Minute) }
func Generate() *Limiter { return New(5, time.Minute) }
func Destroy() *Limiter  { return New(2, time.Hour) }

// Limiter counts requests per key inside fixed windows. When a window
// expires the count resets; there is no sliding or token refill.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count      int
	windowFrom time.Time
}

// New creates a limiter allowing limit requests per window per key.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: map[string]*bucket{},
	}
}

// Result describes one admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// Allow records one request for key and reports whether it is admitted.
func (l *Limiter) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowFrom) >= l.window {
		b = &bucket{windowFrom: now}
		l.buckets[key] = b
	}

	reset := b.windowFrom.Add(l.window)
	if b.count >= l.limit {
		return Result{
			Limit:      l.limit,
			Reset:      reset,
			RetryAfter: reset.Sub(now),
		}
	}

	b.count++
	return Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - b.count,
		Reset:     reset,
	}
}

// Prune drops buckets whose window has expired. Called periodically so
// the map does not grow with every client IP ever seen.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		if now.Sub(b.windowFrom) >= l.window {
			delete(l.buckets, key)
		}
	}
}

// Middleware wraps the limiter as gin middleware. Rejected requests get
// a 429 with a Retry-After header; admitted ones carry the remaining
// quota in the response headers.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := l.Allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", res.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", res.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", res.Reset.Unix()))

		if !res.Allowed {
			retryAfter := int(res.RetryAfter.Seconds() + 0.999)
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
