package middleware

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard-backend/internal/shared/telemetry"
)

// Fixed window counter. Returns {allowed, pttl}.
const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if current > tonumber(ARGV[2]) then
  return {0, ttl}
end
return {1, ttl}
`

// RedisLimiter shares rate limit windows across API instances. It fails open on Redis errors.
type RedisLimiter struct {
	client  redis.Scripter
	script  *redis.Script
	prefix  string
	timeout time.Duration
}

func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:  client,
		script:  redis.NewScript(rateLimitScript),
		prefix:  prefix,
		timeout: 250 * time.Millisecond,
	}
}

// Allow maps the token bucket rule onto a window of Burst requests per Burst/Rate seconds.
func (l *RedisLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.client == nil {
		return true, 0
	}
	if key == "" || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	window := windowFor(rule)
	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	res, err := l.script.Run(ctx, l.client, []string{redisKey}, window.Milliseconds(), rule.Burst).Int64Slice()
	if err != nil || len(res) != 2 {
		telemetry.Warn("ratelimit.redis.unavailable", map[string]any{
			"key":   redisKey,
			"error": errString(err),
		})
		return true, 0
	}
	if res[0] == 1 {
		return true, 0
	}
	retry := time.Duration(res[1]) * time.Millisecond
	if retry <= 0 {
		retry = window
	}
	return false, retry
}

func windowFor(rule RateLimitRule) time.Duration {
	ms := math.Ceil(float64(rule.Burst) / rule.Rate * 1000)
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

func errString(err error) string {
	if err == nil {
		return "unexpected script result"
	}
	return err.Error()
}

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = (*RedisLimiter)(nil)
)
