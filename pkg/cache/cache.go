// Package cache provides caching for solve results and rendered artifacts.
//
// Solving the same model with the same options is fully deterministic, so a
// finished solve can be replayed from cache byte-for-byte. Keys are derived
// from the model content hash plus the solve options (see [Keyer]); values
// are opaque byte slices, typically JSON-encoded solve results or rendered
// tree artifacts.
//
// Four backends ship with the package:
//   - [FileCache]: directory-backed, for CLI usage
//   - [RedisCache]: shared cache for the API server
//   - [MongoCache]: durable result store with the same interface
//   - [NullCache]: disables caching entirely
package cache

import (
	"context"
	"time"
)

// Default time-to-live per value class. Solve results are pure functions of
// model and options, so they could live forever; the TTLs bound disk and
// memory growth, not staleness.
const (
	TTLSolve    = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the backend-neutral storage interface.
//
// Get returns (nil, false, nil) on a miss; an error means the backend
// failed, not that the key is absent. A zero ttl on Set stores the entry
// without expiration; a negative ttl marks it expired on arrival, so the
// write is at most a tombstone and the next Get misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
