// Package cache provides pluggable byte caching for registry metadata.
//
// Three backends are available:
//   - file: directory-backed cache for single-machine CLI usage
//   - redis: Redis-backed cache for shared CI environments
//   - null: no-op cache for testing or when caching is disabled
//
// Keys are arbitrary strings; backends are responsible for making them safe
// for their storage (the file backend hashes keys, Redis stores them as-is).
// A TTL of 0 means entries never expire.
package cache

import (
	"context"
	"time"
)

// Cache stores raw bytes under string keys with per-entry expiration.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was found and fresh; expired or missing entries return false.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 disables expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
