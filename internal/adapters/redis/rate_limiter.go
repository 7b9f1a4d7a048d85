package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/target/hiring-api/internal/core"
)

// The counter's expiry is set only on the first hit so the window is fixed,
// not sliding.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RateLimiter is a fixed-window counter shared by every API replica.
type RateLimiter struct {
	client redis.UniversalClient
	prefix string
	script *redis.Script
}

var _ core.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter creates a RateLimiter whose keys start with "ratelimit:".
func NewRateLimiter(client redis.UniversalClient) *RateLimiter {
	return &RateLimiter{client: client, prefix: "ratelimit:", script: redis.NewScript(fixedWindowScript)}
}

// Allow counts one hit for key and reports whether it fits within limit.
// A disabled limit always allows without touching Redis.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit core.RateLimit) (bool, error) {
	if !limit.Enabled() {
		return true, nil
	}
	if key == "" {
		return false, errors.New("rate limit key is required")
	}
	ttl := max(limit.Window.Milliseconds(), 1)
	res, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, limit.Limit).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return res == 1, nil
}
