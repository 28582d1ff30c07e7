// Package cache stores derived roadmap data: computed layouts and rendered
// artifacts. Graph metrics are never cached.
//
// Every value is keyed by a content hash of its input, so a cached entry is
// never stale; TTLs only bound disk and memory use. Backends:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [BadgerCache]: embedded key/value store, on disk or in memory
//   - [RedisCache]: shared cache for several server instances
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer]; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// NullCache never stores anything. Runners use it when caching is off.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
