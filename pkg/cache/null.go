package cache

import (
	"context"
	"time"
)

// NullCache drops every write and misses every read. Passing --no-cache on
// the CLI (or running the API without a backend) swaps it in, so the
// pipeline's code path is identical with caching off.
type NullCache struct{}

// NewNullCache returns the no-op backend.
func NewNullCache() Cache { return NullCache{} }

// Get always misses.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set drops the value.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete is a no-op.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close is a no-op.
func (NullCache) Close() error { return nil }

// Ensure NullCache implements Cache.
var _ Cache = NullCache{}
