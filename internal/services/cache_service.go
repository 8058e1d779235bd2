package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/observability"
	"github.com/lajospolya/popular-vote/internal/redisclient"
	"github.com/lajospolya/popular-vote/internal/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache keys
const geoDataCacheKey = "geo:data"

func pollCacheKey(policyID int64) string {
	return fmt.Sprintf("poll:%d", policyID)
}

// Cache is the read-through JSON cache shared by the services. A failed
// cache call is logged and treated as a miss; it never fails a request.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
}

// CacheService implements Cache over the traced Redis client
type CacheService struct {
	client *redisclient.Client
	logger *logging.SafeLogger
}

// NewCacheService returns a Redis-backed cache. A nil client yields a cache
// that always misses.
func NewCacheService(client *redisclient.Client, logger *logging.SafeLogger) *CacheService {
	return &CacheService{client: client, logger: logger}
}

// GetJSON decodes the cached value into dest and reports a hit
func (s *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if s.client == nil {
		return false
	}

	ctx, span := utils.TraceCacheGet(ctx, key)
	defer span.End()

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		observability.CacheHits.WithLabelValues(cacheOperation(key), "miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		s.Invalidate(ctx, key)
		observability.CacheHits.WithLabelValues(cacheOperation(key), "miss").Inc()
		return false
	}

	observability.CacheHits.WithLabelValues(cacheOperation(key), "hit").Inc()
	s.logger.Debug("cache hit", zap.String("key", key))
	return true
}

// SetJSON stores value encoded as JSON for ttl
func (s *CacheService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.client == nil {
		return
	}

	ctx, span := utils.TraceCacheSet(ctx, key, ttl)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate deletes the given keys
func (s *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if s.client == nil || len(keys) == 0 {
		return
	}

	ctx, span := utils.TraceCacheInvalidation(ctx, strings.Join(keys, ","))
	defer span.End()

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// cacheOperation labels metrics by key family rather than by key
func cacheOperation(key string) string {
	family, _, _ := strings.Cut(key, ":")
	return family
}
