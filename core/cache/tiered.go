// ABOUTME: Two-tier result cache: memory first, then a persistent store with promotion on hit
// ABOUTME: Freshness is decided from the stored timestamp; stale entries are ignored, not deleted

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"newswire-api/core/domain"
	"newswire-api/core/interfaces"
)

// Entry is the cached envelope for one result
type Entry struct {
	Payload  domain.FetchResult `json:"payload"`
	StoredAt time.Time          `json:"storedAt"`
}

// Options configures freshness and memory retention
type Options struct {
	// TTL is how long an entry counts as fresh
	TTL time.Duration

	// MemoryRetention drops memory entries this long after they were stored.
	// 0 keeps them for the process lifetime.
	MemoryRetention time.Duration
}

// TieredCache implements interfaces.ResultCache
type TieredCache struct {
	memory interfaces.Cache
	store  interfaces.Cache
	logger interfaces.Logger
	opts   Options
	now    func() time.Time
}

// NewTieredCache creates the cache. store may be nil for a memory-only setup.
func NewTieredCache(memory, store interfaces.Cache, logger interfaces.Logger, opts Options) *TieredCache {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &TieredCache{
		memory: memory,
		store:  store,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// TTL returns the configured freshness window
func (c *TieredCache) TTL() time.Duration {
	return c.opts.TTL
}

// Get returns a fresh cached result for url, tagged with the tier it came from
func (c *TieredCache) Get(ctx context.Context, url string) (domain.FetchResult, bool) {
	if entry, _, ok := c.load(ctx, c.memory, url, domain.TierMemory); ok && c.fresh(entry) {
		return tagged(entry, domain.TierMemory), true
	}

	if c.store == nil {
		return domain.FetchResult{}, false
	}

	entry, raw, ok := c.load(ctx, c.store, url, domain.TierFile)
	if !ok || !c.fresh(entry) {
		return domain.FetchResult{}, false
	}

	if ttl, keep := c.memoryTTL(entry.StoredAt); keep {
		if err := c.memory.Set(ctx, url, raw, ttl); err != nil {
			c.logger.Warn("Failed to promote cache entry", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
		}
	}
	return tagged(entry, domain.TierFile), true
}

// Put stores result in memory, then best-effort in the persistent store
func (c *TieredCache) Put(ctx context.Context, url string, result domain.FetchResult) {
	payload := result.Clone()
	payload.FromCache = ""
	entry := Entry{Payload: payload, StoredAt: c.now()}

	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("Failed to encode cache entry", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return
	}

	ttl, _ := c.memoryTTL(entry.StoredAt)
	if err := c.memory.Set(ctx, url, raw, ttl); err != nil {
		c.logger.Error("Failed to write memory cache", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}

	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, url, raw, 0); err != nil {
		c.logger.Warn("Failed to write persistent cache", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
	}
}

func (c *TieredCache) load(ctx context.Context, tier interfaces.Cache, url string, name domain.CacheTier) (Entry, []byte, bool) {
	raw, err := tier.Get(ctx, url)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			c.logger.Warn("Cache read failed", map[string]interface{}{
				"url":   url,
				"tier":  string(name),
				"error": err.Error(),
			})
		}
		return Entry{}, nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{
			"url":   url,
			"tier":  string(name),
			"error": err.Error(),
		})
		return Entry{}, nil, false
	}
	entry.Payload.Normalize()
	return entry, raw, true
}

func (c *TieredCache) fresh(e Entry) bool {
	return c.now().Sub(e.StoredAt) < c.opts.TTL
}

// memoryTTL returns the memory-tier expiry for an entry stored at storedAt.
// keep is false when the retention window has already passed.
func (c *TieredCache) memoryTTL(storedAt time.Time) (time.Duration, bool) {
	if c.opts.MemoryRetention <= 0 {
		return 0, true
	}
	remaining := c.opts.MemoryRetention - c.now().Sub(storedAt)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

func tagged(e Entry, tier domain.CacheTier) domain.FetchResult {
	out := e.Payload.Clone()
	out.FromCache = tier
	return out
}
