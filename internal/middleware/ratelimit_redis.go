package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRateLimitPrefix namespaces rate limit keys in Redis.
const redisRateLimitPrefix = "ratelimit:"

// RedisRateLimitStore implements RateLimitStore on Redis using a fixed
// window counter (INCR with a window-length expiry). Rate limit state is
// shared across instances, unlike the in-memory store.
//
// A Redis failure fails open: the request is allowed and the error is
// counted, because dropping traffic on a cache outage is worse than
// briefly losing the limit.
type RedisRateLimitStore struct {
	client  *redis.Client
	metrics *Metrics
}

// NewRedisRateLimitStore creates a Redis-backed rate limit store.
// metrics may be nil to skip fail-open accounting.
func NewRedisRateLimitStore(client *redis.Client, metrics *Metrics) *RedisRateLimitStore {
	return &RedisRateLimitStore{
		client:  client,
		metrics: metrics,
	}
}

// Allow checks if a request from the given key should be allowed.
// Implements the RateLimitStore interface.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, int) {
	redisKey := redisRateLimitPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// Refreshing the expiry on every hit would let a steady trickle hold
	// the window open forever; only the first hit sets it.
	pipe.ExpireNX(ctx, redisKey, config.WindowDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("rate limit check failed, allowing request", "error", err)
		if s.metrics != nil {
			s.metrics.IncRateLimitRedisErrors()
		}
		return true, 0
	}

	if incr.Val() <= int64(config.RequestsPerWindow) {
		return true, 0
	}

	ttl, err := s.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = config.WindowDuration
	}
	retryAfter := int(ttl / time.Second)
	if retryAfter <= 0 {
		retryAfter = 1
	}
	return false, retryAfter
}
