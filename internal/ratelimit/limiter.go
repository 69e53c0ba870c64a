// Package ratelimit bounds abusive request patterns on the auth surface.
// Counters live in Redis as fixed windows when available, otherwise in a
// per-key token bucket kept in process memory.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter answers whether one more event is allowed for a key and, when
// denied, how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// NewLimiter builds a Redis-backed fixed-window limiter when a client is
// provided, otherwise an in-memory token bucket limiter.
func NewLimiter(client *redis.Client, scope string, limit int, window time.Duration) Limiter {
	if client != nil {
		return &redisLimiter{client: client, scope: scope, limit: limit, window: window}
	}
	return newMemoryLimiter(limit, window)
}

type redisLimiter struct {
	client *redis.Client
	scope  string
	limit  int
	window time.Duration
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", l.scope, key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, err
		}
	}
	if count <= int64(l.limit) {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl, nil
}

// memoryLimiter keeps one token bucket per key. Idle buckets are dropped
// periodically to bound memory.
type memoryLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
}

func newMemoryLimiter(limit int, window time.Duration) *memoryLimiter {
	return &memoryLimiter{
		limiters:    make(map[string]*rate.Limiter),
		rate:        rate.Limit(float64(limit) / window.Seconds()),
		burst:       limit,
		lastCleanup: time.Now(),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	l.maybeCleanupLocked()
	l.mu.Unlock()

	if limiter.Allow() {
		return true, 0, nil
	}

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()
	if delay < time.Second {
		delay = time.Second
	}
	return false, delay, nil
}

func (l *memoryLimiter) maybeCleanupLocked() {
	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}
	l.lastCleanup = time.Now()
	for key, limiter := range l.limiters {
		// A full bucket means the key has been idle for at least one window.
		if limiter.Tokens() >= float64(l.burst) {
			delete(l.limiters, key)
		}
	}
}
