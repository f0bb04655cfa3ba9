// Package cache stores derived artifacts, such as serialized tree layouts,
// keyed by content.
//
// Backends:
//   - [NullCache]: never stores anything; the default when no backend is
//     configured
//   - [RedisCache]: Redis-backed storage shared by several server instances
//
// Wrap a backend with [Instrument] to report hits and misses through the
// observability cache hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps the entry until it is
	// deleted or evicted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
