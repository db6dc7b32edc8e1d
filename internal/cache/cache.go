// Package cache is an optional query-result cache in front of the backend
// client, using a nil-safe Redis Get/Set-JSON idiom: a nil client degrades
// to always-miss rather than branching at every call site.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mimirsbrunn/internal/logger"
	"mimirsbrunn/internal/metrics"
)

// Cache wraps a possibly-nil *redis.Client so callers never need a nil
// check of their own.
type Cache struct {
	rc  *redis.Client
	ttl time.Duration
}

// OpenFromEnv builds a Cache from REDIS_HOST/REDIS_PORT/REDIS_PASS/
// REDIS_DB/QUERY_CACHE_TTL_SECONDS. An empty REDIS_HOST disables caching
// (Get always misses, Set is a no-op).
func OpenFromEnv() *Cache {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return &Cache{ttl: defaultTTL()}
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	rc := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASS"),
		DB:       db,
	})
	return &Cache{rc: rc, ttl: defaultTTL()}
}

func defaultTTL() time.Duration {
	ttl := 60 * time.Second
	if v := os.Getenv("QUERY_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	return ttl
}

// Get decodes a cached value into dst, reporting whether it was found. A
// nil underlying client or any decode error is treated as a miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if c.rc == nil {
		return false
	}
	s, err := c.rc.Get(ctx, key).Result()
	if err != nil || s == "" {
		metrics.CacheMissesTotal.Inc()
		return false
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		logger.L().Warn("cache_decode_error", "key", key, "err", err)
		metrics.CacheMissesTotal.Inc()
		return false
	}
	metrics.CacheHitsTotal.Inc()
	return true
}

// Set stores v under key with the configured TTL. Errors are logged and
// swallowed: the cache is strictly an optimization, never load-bearing.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	if c.rc == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		logger.L().Warn("cache_encode_error", "key", key, "err", err)
		return
	}
	if err := c.rc.Set(ctx, key, string(b), c.ttl).Err(); err != nil {
		logger.L().Warn("cache_set_error", "key", key, "err", err)
	}
}
