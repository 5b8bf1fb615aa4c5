// ABOUTME: In-memory cache tier backed by patrickmn/go-cache
// ABOUTME: Holds encoded results for the current process with optional per-entry expiry

package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"newswire-api/core/interfaces"
)

// MemoryCache implements the Cache interface on top of go-cache
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory tier. cleanupInterval controls how often
// expired entries are purged; 0 disables the janitor.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get retrieves a copy of the stored bytes
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, ok := c.items.Get(key)
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, nil
}

// Set stores a copy of value. A zero ttl keeps the entry until it is overwritten.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	expiration := ttl
	if ttl <= 0 {
		expiration = gocache.NoExpiration
	}
	c.items.Set(key, stored, expiration)
	return nil
}

// Delete removes a key from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.items.Delete(key)
	return nil
}

// Len reports the number of entries, including expired ones not yet purged
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
