// Package infrastructure provides concrete implementations of the interfaces
// defined in core/interfaces. These implementations handle external concerns
// such as caching, HTTP communication, and logging.
//
// The infrastructure package is organized by technical concern:
//
//   - cache/memory: in-process tier backed by patrickmn/go-cache
//   - cache/file: default persistent tier, one JSON file per URL
//   - cache/sqlite: persistent tier in a single SQLite database
//   - cache/redis: persistent tier shared between processes
//   - http/standard: single-attempt GET over net/http with optional proxy
//   - logger/structured: logrus logger with optional rotating file output
//
// Every cache tier stores opaque bytes under a key with a TTL and reports a
// miss as interfaces.ErrCacheMiss. Freshness of stored results is decided by
// core/cache from the timestamp inside the stored entry, not by tier TTLs.
//
// # Cache Implementations
//
// Memory tier:
//
//	mem := memory.NewMemoryCache(10 * time.Minute)
//	err := mem.Set(ctx, url, payload, 24*time.Hour)
//
// Redis tier:
//
//	store, err := redis.NewRedisCache(config.RedisConfig{
//	    Address:   "localhost:6379",
//	    KeyPrefix: "newswire:",
//	})
//
// # HTTP Client
//
// The HTTP client makes exactly one request per call; retries, backoff and
// rate limiting live in core/fetch so they apply to every transport.
package infrastructure
