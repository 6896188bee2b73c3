// Package cache defines the cache interface and type constants.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for the shared key/value store. Besides plain
// keys with TTL (the credential store) it covers ordered lists (session
// history logs, per-session metrics) and score-ordered sets (metric time
// series). Single-key operations are atomic on the store side; the design
// relies on no multi-key transactions.
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns nil if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the default TTL is used.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// RPush appends values to the tail of the list at key.
	RPush(ctx context.Context, key string, values ...string) error

	// LPush prepends values to the head of the list at key.
	LPush(ctx context.Context, key string, values ...string) error

	// LRange returns the list elements between start and stop inclusive.
	// Negative indexes address elements from the tail of the list.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// LLen returns the length of the list at key.
	LLen(ctx context.Context, key string) (int64, error)

	// ZAdd adds a member with the given score to the sorted set at key.
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZRangeByScore returns members of the sorted set at key with scores in
	// [min, max], ordered by ascending score.
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)

	// Ping checks if the cache connection is alive.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
