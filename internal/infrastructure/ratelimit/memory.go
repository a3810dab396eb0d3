// Package ratelimit provides the process-local fixed-window rate limiter.
// It approximates the per-origin contract within a single instance; the
// Redis-backed limiter in infrastructure/db/redis gives the exact shared
// behaviour for multi-instance deployments.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/citymove/identity-service/internal/core/ports"
)

const (
	// DefaultLimit and DefaultWindow implement the 5-per-60s contract.
	DefaultLimit  = 5
	DefaultWindow = 60 * time.Second
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a concurrent fixed-window counter keyed by origin.
// Windows are reset lazily on the first call after expiry; a denial never
// increments the counter.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	origins map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter(limit int, windowSize time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}
	return &MemoryLimiter{
		limit:   limit,
		window:  windowSize,
		origins: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow performs the check-and-increment for one origin.
func (l *MemoryLimiter) Allow(_ context.Context, origin string) (ports.RateLimitDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.origins[origin]
	if w == nil || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.origins[origin] = w
	}

	if w.count >= l.limit {
		return ports.RateLimitDecision{Allowed: false, Remaining: 0, ResetAt: w.resetAt}, nil
	}

	w.count++
	return ports.RateLimitDecision{
		Allowed:   true,
		Remaining: l.limit - w.count,
		ResetAt:   w.resetAt,
	}, nil
}
