package ports

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of a single check-and-increment call.
type RateLimitDecision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter bounds registration attempts per caller origin. A denial must
// not increment the counter. Implementations may be process-local
// (approximate across instances) or backed by a shared store (exact); the
// contract is the same either way.
type RateLimiter interface {
	Allow(ctx context.Context, origin string) (RateLimitDecision, error)
}
