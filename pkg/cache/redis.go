package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"drama-gateway-go/pkg/logging"
)

// Redis is a Store backed by a Redis instance. Capacity bounds are delegated
// to the server's own maxmemory policy; TTL handling uses native expiry.
type Redis struct {
	client *redis.Client
	log    *logging.Logger
}

// NewRedis creates a Redis store from a redis:// URL.
func NewRedis(redisURL string, log *logging.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Redis{
		client: redis.NewClient(opts),
		log:    log.WithComponent("cache-redis"),
	}, nil
}

// Get returns the value for key, or false on miss or connection failure.
// A failing Redis degrades to cache misses rather than failing requests.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.log.Warn("redis get failed", "key", key, "error", err)
		return nil, false
	}
	return raw, true
}

// Set stores value under key with the given TTL.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.log.Warn("redis set failed", "key", key, "error", err)
	}
}

// Ping verifies connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = (*Redis)(nil)
