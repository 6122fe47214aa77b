package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces per-key request quotas
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RedisRateLimiter implements RateLimiter with a fixed window counter in Redis
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisRateLimiter creates a Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, prefix string) RateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: prefix,
	}
}

// Allow increments the window counter for key and reports whether the
// request fits the limit. The window TTL is set on first increment.
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucket := fmt.Sprintf("%sratelimit:%s:%d", r.prefix, key, time.Now().Unix()/int64(window.Seconds()))

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter redis error: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}

// InMemoryRateLimiter implements RateLimiter without Redis, used when
// caching is disabled and in tests.
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

type memoryBucket struct {
	count   int
	resetAt time.Time
}

// NewInMemoryRateLimiter creates a process-local rate limiter
func NewInMemoryRateLimiter() RateLimiter {
	return &InMemoryRateLimiter{
		buckets: make(map[string]*memoryBucket),
	}
}

func (r *InMemoryRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	bucket, ok := r.buckets[key]
	if !ok || now.After(bucket.resetAt) {
		bucket = &memoryBucket{resetAt: now.Add(window)}
		r.buckets[key] = bucket
	}

	bucket.count++
	return bucket.count <= limit, nil
}
