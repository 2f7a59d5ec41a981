// Package cache provides pluggable byte caches for HTTP response caching.
//
// The [Cache] interface abstracts over storage backends so the registry
// clients don't care where responses live:
//
//   - [FileCache]: directory of hashed files, the CLI default
//   - [NullCache]: no-op, for tests and --no-cache runs
//   - [RedisCache]: Redis-backed, for shared deployments
//   - [MongoCache]: MongoDB-backed, for shared deployments
//
// Only fetched registry responses are cached. Dependency graphs, cycle
// reports, and install orders are always recomputed per run.
package cache

import (
	"context"
	"time"
)

// Cache stores raw byte values under string keys with per-entry TTLs.
//
// Implementations must treat an expired or missing entry as a miss, never
// an error. All methods must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was found (and not expired).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of zero means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
