package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/citymove/identity-service/internal/core/ports"
)

// Check-and-increment in one round trip. The counter is only incremented
// when the request is allowed, so denied calls leave the window untouched;
// the expiry is set when the window's first call creates the key.
var allowScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[1]) then
  return {0, current, redis.call("PTTL", KEYS[1])}
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return {1, current, redis.call("PTTL", KEYS[1])}
`)

// RateLimiter is the shared fixed-window limiter backed by Redis. Unlike the
// in-process limiter it is exact across instances.
// Key format: ratelimit:register:<origin>
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow performs the check-and-increment for one origin.
func (l *RateLimiter) Allow(ctx context.Context, origin string) (ports.RateLimitDecision, error) {
	res, err := allowScript.Run(ctx, l.client, []string{l.key(origin)}, l.limit, l.window.Milliseconds()).Slice()
	if err != nil {
		return ports.RateLimitDecision{}, fmt.Errorf("rate limit check: %w", err)
	}
	if len(res) != 3 {
		return ports.RateLimitDecision{}, fmt.Errorf("rate limit check: unexpected reply %v", res)
	}

	allowed, _ := res[0].(int64)
	current, _ := res[1].(int64)
	ttlMillis, _ := res[2].(int64)

	remaining := l.limit - int(current)
	if remaining < 0 {
		remaining = 0
	}
	resetAt := time.Now().Add(l.window)
	if ttlMillis > 0 {
		resetAt = time.Now().Add(time.Duration(ttlMillis) * time.Millisecond)
	}

	return ports.RateLimitDecision{
		Allowed:   allowed == 1,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func (l *RateLimiter) key(origin string) string {
	return fmt.Sprintf("ratelimit:register:%s", origin)
}
