// Package cache stores rendered rasters between batches.
//
// A render is a pure function of (engine, SVG bytes, scale), so the pipeline
// keys entries on exactly those three values. A hit hands the cached PNG and
// its dimensions to the variant without contacting the engine at all.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry below a directory (CLI default)
//   - [RedisCache]: shared cache for several build machines
//   - [MongoCache]: shared cache with TTL-index expiry
//
// Cache errors never fail a batch; callers log them and render normally.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered rasters stay cached when no TTL is
// configured.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases connections held by the backend.
	Close() error
}
