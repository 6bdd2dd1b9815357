package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisRateLimitPrefix = "compass:ratelimit:"

// RedisRateLimiter is a fixed-window limiter shared across instances. Each
// window admits Burst requests and lasts Burst/Rate seconds.
type RedisRateLimiter struct {
	client redis.Cmdable
	prefix string
}

// NewRedisRateLimiter wraps an existing client.
func NewRedisRateLimiter(client redis.Cmdable) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, prefix: redisRateLimitPrefix}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration, error) {
	if l == nil || rule.disabled() {
		return true, 0, nil
	}
	window := rule.window()
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("incr %s: %w", k, err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, k, window).Err(); err != nil {
			return false, 0, fmt.Errorf("pexpire %s: %w", k, err)
		}
	}
	if count <= int64(rule.Burst) {
		return true, 0, nil
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("pttl %s: %w", k, err)
	}
	if ttl < 0 {
		// Key lost its expiry; restore it so the window can close.
		_ = l.client.PExpire(ctx, k, window).Err()
		ttl = window
	}
	return false, ttl, nil
}

func (r RateLimitRule) window() time.Duration {
	ms := math.Ceil(float64(r.Burst) / r.Rate * 1000.0)
	if ms < 1 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}
