package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores JSON-encoded values in Redis so multiple instances can
// share one cache. It satisfies the same Cache interface as the in-process
// LRU; lookup and decode failures read as cache misses.
type RedisCache[T any] struct {
	client *redis.Client
	ctx    context.Context
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to the given address. Keys are namespaced with the
// prefix to keep unrelated caches apart on a shared instance.
func NewRedisCache[T any](addr, prefix string, ttl time.Duration) *RedisCache[T] {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache[T]{
		client: rdb,
		ctx:    context.Background(),
		prefix: prefix,
		ttl:    ttl,
	}
}

// Ping verifies connectivity.
func (r *RedisCache[T]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get retrieves and decodes a value; any failure is a miss.
func (r *RedisCache[T]) Get(key string) (T, bool) {
	var zero T
	val, err := r.client.Get(r.ctx, r.prefix+key).Bytes()
	if err != nil {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(val, &out); err != nil {
		slog.Warn("Discarding undecodable cache entry", "key", key, "error", err)
		return zero, false
	}
	return out, true
}

// Set encodes and stores a value with the configured TTL.
func (r *RedisCache[T]) Set(key string, data T) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := r.client.Set(r.ctx, r.prefix+key, body, r.ttl).Err(); err != nil {
		slog.Warn("Failed to store cache entry", "key", key, "error", err)
	}
}

// Delete removes a key.
func (r *RedisCache[T]) Delete(key string) {
	if err := r.client.Del(r.ctx, r.prefix+key).Err(); err != nil {
		slog.Warn("Failed to delete cache entry", "key", key, "error", err)
	}
}

// Close releases the client connection.
func (r *RedisCache[T]) Close() error {
	return r.client.Close()
}
