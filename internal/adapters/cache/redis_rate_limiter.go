package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWithTTL bumps the counter and arms its expiry in one server-side step.
// A key found without a TTL gets one, so a counter can never outlive its window.
var incrWithTTL = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisRateLimiter is a fixed-window counter per key.
type RedisRateLimiter struct {
	client redis.Scripter
	prefix string
}

func NewRedisRateLimiter(client redis.Scripter, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "campaign-bot:ratelimit:"
	}
	return &RedisRateLimiter{client: client, prefix: prefix}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	count, err := incrWithTTL.Run(ctx, l.client, []string{l.prefix + key}, ttl).Int64()
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}
