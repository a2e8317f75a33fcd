// Package viewcache holds per-viewer read models (my applications, job list, job detail)
// that the lifecycle endpoints invalidate after a write.
package viewcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded views.
type Cache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func MyApplicationsKey(jobSeekerID int64) string {
	return fmt.Sprintf("view:applications:js:%d", jobSeekerID)
}

// OpenJobsKey holds the first page of open jobs shared by every viewer.
func OpenJobsKey() string {
	return "view:jobs:open"
}

// JobListKey holds a job seeker's per-job states merged into job listings.
func JobListKey(jobSeekerID int64) string {
	return fmt.Sprintf("view:jobs:js:%d", jobSeekerID)
}

func JobDetailKey(jobSeekerID, jobID int64) string {
	return fmt.Sprintf("view:job:%d:js:%d", jobID, jobSeekerID)
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisFromURL parses a redis:// URL and returns the cache with its client.
func NewRedisFromURL(url string) (*RedisCache, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	return NewRedisCache(client), client, nil
}

func (r *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached view %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode view %s: %w", key, err)
	}
	return r.client.Set(ctx, key, raw, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

var (
	_ Cache = (*RedisCache)(nil)
	_ Cache = (*MemoryCache)(nil)
	_ Cache = Nop{}
)
