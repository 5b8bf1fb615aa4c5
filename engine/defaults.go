// ABOUTME: Default implementations for engine dependencies
// ABOUTME: Builds caches, HTTP transport and logger from application configuration

package engine

import (
	"os"
	"path/filepath"
	"time"

	"newswire-api/core/extract"
	"newswire-api/core/fetch"
	"newswire-api/core/interfaces"
	"newswire-api/core/registry"
	"newswire-api/core/workers"
	"newswire-api/infrastructure/cache/file"
	"newswire-api/infrastructure/cache/memory"
	"newswire-api/infrastructure/cache/redis"
	"newswire-api/infrastructure/cache/sqlite"
	httpInfra "newswire-api/infrastructure/http/standard"
	"newswire-api/infrastructure/logger/structured"
	"newswire-api/pkg/config"
)

const cleanupInterval = 10 * time.Minute

// DefaultHTTPClient creates the standard transport. proxyURL may be empty.
func DefaultHTTPClient(timeout time.Duration, proxyURL string) (interfaces.HTTPClient, error) {
	return httpInfra.NewStandardHTTPClient(timeout, httpInfra.WithProxy(proxyURL))
}

// DefaultMemoryCache creates the go-cache backed memory tier
func DefaultMemoryCache() interfaces.Cache {
	return memory.NewMemoryCache(cleanupInterval)
}

// DefaultLogger creates a logrus logger from configuration
func DefaultLogger(cfg config.LogConfig) interfaces.Logger {
	return structured.New(structured.Options{
		Level:  cfg.Level,
		Format: cfg.Format,
		File:   cfg.File,
	})
}

// WithStoreBackend opens the persistent tier named by cfg.Backend
func WithStoreBackend(cfg config.CacheConfig) Option {
	return func(c *Config) error {
		switch cfg.Backend {
		case config.BackendFile:
			store, err := file.NewStore(cfg.Dir)
			if err != nil {
				return NewError(ErrorTypeConfiguration, "cannot open file cache").WithCause(err)
			}
			c.Store = store
		case config.BackendSQLite:
			if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return NewError(ErrorTypeConfiguration, "cannot create sqlite directory").WithCause(err)
				}
			}
			store, err := sqlite.NewSQLiteCache(cfg.SQLitePath, cleanupInterval)
			if err != nil {
				return NewError(ErrorTypeConfiguration, "cannot open sqlite cache").WithCause(err)
			}
			c.Store = store
			c.closers = append(c.closers, store)
		case config.BackendRedis:
			store, err := redis.NewRedisCache(cfg.Redis)
			if err != nil {
				return NewError(ErrorTypeConfiguration, "cannot connect to redis").WithCause(err)
			}
			c.Store = store
			c.closers = append(c.closers, store)
		case config.BackendNone, "":
			c.Store = nil
		default:
			return NewError(ErrorTypeConfiguration, "invalid cache backend").
				WithContext("backend", cfg.Backend)
		}
		return nil
	}
}

// FromConfig translates application configuration into client options
func FromConfig(cfg *config.Config, logger interfaces.Logger) ([]Option, error) {
	reg := registry.Default()
	if cfg.SourcesFile != "" {
		loaded, err := registry.LoadFile(cfg.SourcesFile)
		if err != nil {
			return nil, NewError(ErrorTypeConfiguration, "cannot load sources file").
				WithCause(err).
				WithContext("path", cfg.SourcesFile)
		}
		reg = loaded
	}

	// the transport timeout only backs up the per-attempt timeout
	client, err := DefaultHTTPClient(2*cfg.Fetch.Timeout, cfg.Fetch.ProxyURL)
	if err != nil {
		return nil, NewError(ErrorTypeConfiguration, "invalid proxy").WithCause(err)
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.Fetch.Timeout
	fetchOpts.MaxRetries = cfg.Fetch.MaxRetries
	fetchOpts.RetryBaseDelay = cfg.Fetch.RetryBaseDelay
	fetchOpts.MaxBodyBytes = cfg.Fetch.MaxBodyBytes
	fetchOpts.RequestsPerSecond = cfg.Fetch.RequestsPerSecond

	return []Option{
		WithLogger(logger),
		WithRegistry(reg),
		WithHTTPClient(client),
		WithMemoryCache(DefaultMemoryCache()),
		WithStoreBackend(cfg.Cache),
		WithCacheTTL(cfg.Cache.TTL, cfg.Cache.MemoryRetention),
		WithFetchOptions(fetchOpts),
		WithQueueConfig(workers.QueueConfig{
			ConcurrencyLimit: cfg.Queue.Concurrency,
			Retention:        cfg.Queue.Retention,
			MaxPending:       cfg.Queue.MaxPending,
		}),
		WithExtractOptions(extract.Options{MaxArticles: cfg.Fetch.MaxArticles}),
		WithKeepRawPayload(cfg.Fetch.KeepRawPayload),
		WithArchiveDir(cfg.Schedule.ArchiveDir),
		WithSchedules(cfg.Schedule.RefreshCron, cfg.Schedule.ArchiveCron),
	}, nil
}
