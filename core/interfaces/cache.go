// Package interfaces defines the core interfaces used throughout the application.
// These interfaces allow for dependency injection and make the code testable.
package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache: key not found")

// Cache defines the interface for a byte-oriented cache tier.
// Implementations are go-cache (memory), files on disk, SQLite or Redis.
//
// Example usage:
//
//	// Store a value
//	err := cache.Set(ctx, "https://example.com/news", payload, 24*time.Hour)
//
//	// Retrieve a value
//	data, err := cache.Get(ctx, "https://example.com/news")
//	if errors.Is(err, interfaces.ErrCacheMiss) {
//		// not cached
//	}
type Cache interface {
	// Get retrieves a value from the cache by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given key and TTL.
	// If ttl is 0, the value should be stored indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}
