// Package ratelimit throttles signin attempts per login using Redis.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rl:signin:"

// Limiter counts attempts per key within a one-minute window. A nil client
// disables limiting, and cache errors fail open: availability of signin is
// worth more than the throttle.
type Limiter struct {
	cache *redis.Client
	max   int64
}

// New builds a limiter allowing maxPerMin attempts per key per minute.
func New(cache *redis.Client, maxPerMin int) *Limiter {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return &Limiter{cache: cache, max: int64(maxPerMin)}
}

// Allow reports whether another attempt for key is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.cache == nil {
		return true
	}

	cacheKey := keyPrefix + key
	cnt, err := l.cache.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true
	}
	if cnt == 1 {
		l.cache.Expire(ctx, cacheKey, time.Minute)
	}
	return cnt <= l.max
}
