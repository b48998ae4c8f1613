// Package cache provides a TTL response cache for extraction results.
//
// Values are stored as JSON documents so that the in-memory store and the
// Redis-backed store behave identically and cache hits replay the exact
// payload that was originally computed.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is a bounded key/value store with per-entry TTL.
type Store interface {
	// Get returns the unexpired value for key, or false on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the given TTL, evicting the oldest
	// inserted entry if the store is at capacity.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// GetOrCompute returns the cached value for key, or invokes compute, stores
// the result, and returns it. The second return value reports whether the
// value came from cache.
//
// Concurrent misses on the same key may each invoke compute; there is no
// single-flight de-duplication. Expected concurrency is low and upstream
// calls are idempotent, so the duplicated work is accepted.
func GetOrCompute[T any](ctx context.Context, s Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, bool, error) {
	if raw, ok := s.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, true, nil
		}
		// Undecodable entry: treat as a miss and recompute.
	}

	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if raw, err := json.Marshal(v); err == nil {
		s.Set(ctx, key, raw, ttl)
	}
	return v, false, nil
}
