package services

import (
	"context"
	"sync"
	"time"

	"github.com/lajospolya/popular-vote/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// KeyedRateLimiter keeps one token bucket per key, so a single citizen
// hammering an endpoint cannot starve the others.
type KeyedRateLimiter struct {
	limit   rate.Limit
	burst   int
	mutex   sync.Mutex
	buckets map[string]*bucket
	logger  *logging.SafeLogger
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedRateLimiter allows perMinute events per key, with bursts of the
// same size.
func NewKeyedRateLimiter(perMinute int, logger *logging.SafeLogger) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		buckets: make(map[string]*bucket),
		logger:  logger,
	}
}

// Allow consumes a token from key's bucket
func (rl *KeyedRateLimiter) Allow(ctx context.Context, key string) bool {
	rl.mutex.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	rl.mutex.Unlock()

	if b.limiter.Allow() {
		return true
	}

	rl.logger.Warn("rate limiter rejected request",
		zap.String("key", key),
		zap.Int("burst", rl.burst))
	return false
}

// Cleanup drops buckets idle for longer than olderThan and returns how many
// were removed. A dropped bucket comes back full.
func (rl *KeyedRateLimiter) Cleanup(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	removed := 0
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
			removed++
		}
	}
	if removed > 0 {
		rl.logger.Debug("cleaned up idle rate limit buckets", zap.Int("removed", removed))
	}
	return removed
}

// Run cleans up idle buckets every interval until ctx is done
func (rl *KeyedRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(interval)
		}
	}
}

// Size returns the number of tracked keys
func (rl *KeyedRateLimiter) Size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}
