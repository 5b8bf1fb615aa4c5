// ABOUTME: Configuration options for the newswire engine client
// ABOUTME: Provides functional options pattern for flexible client configuration

package engine

import (
	"io"
	"time"

	"newswire-api/core/cache"
	"newswire-api/core/extract"
	"newswire-api/core/fetch"
	"newswire-api/core/interfaces"
	"newswire-api/core/news"
	"newswire-api/core/registry"
	"newswire-api/core/workers"
)

// Option is a functional option for configuring the client
type Option func(*Config) error

// Config holds the configuration for the client
type Config struct {
	// MemoryCache is the hot tier
	MemoryCache interfaces.Cache

	// Store is the persistent tier; nil runs memory-only
	Store interfaces.Cache

	// HTTPClient performs single GET attempts
	HTTPClient interfaces.HTTPClient

	Logger interfaces.Logger

	// Registry lists sources and their extraction rules
	Registry *registry.Registry

	Fetch   fetch.Options
	Cache   cache.Options
	Queue   workers.QueueConfig
	Extract extract.Options

	// KeepRawPayload keeps page bodies on results
	KeepRawPayload bool

	// SyncConcurrency caps FetchAll
	SyncConcurrency int

	// ArchiveDir enables the daily markdown archive
	ArchiveDir string

	// RefreshCron and ArchiveCron enable the scheduler. Empty disables a job.
	RefreshCron string
	ArchiveCron string

	closers []io.Closer
}

// WithMemoryCache sets the memory tier
func WithMemoryCache(c interfaces.Cache) Option {
	return func(cfg *Config) error {
		cfg.MemoryCache = c
		return nil
	}
}

// WithStore sets the persistent tier
func WithStore(c interfaces.Cache) Option {
	return func(cfg *Config) error {
		cfg.Store = c
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client interfaces.HTTPClient) Option {
	return func(cfg *Config) error {
		cfg.HTTPClient = client
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger interfaces.Logger) Option {
	return func(cfg *Config) error {
		cfg.Logger = logger
		return nil
	}
}

// WithRegistry sets the source registry
func WithRegistry(r *registry.Registry) Option {
	return func(cfg *Config) error {
		if r == nil {
			return NewError(ErrorTypeConfiguration, "registry cannot be nil")
		}
		cfg.Registry = r
		return nil
	}
}

// WithFetchOptions sets retry, timeout and politeness settings
func WithFetchOptions(opts fetch.Options) Option {
	return func(cfg *Config) error {
		cfg.Fetch = opts
		return nil
	}
}

// WithCacheTTL sets freshness and memory retention
func WithCacheTTL(ttl, memoryRetention time.Duration) Option {
	return func(cfg *Config) error {
		if ttl <= 0 {
			return NewError(ErrorTypeValidation, "cache TTL must be positive").
				WithContext("ttl", ttl.String())
		}
		cfg.Cache = cache.Options{TTL: ttl, MemoryRetention: memoryRetention}
		return nil
	}
}

// WithQueueConfig sets the background queue configuration
func WithQueueConfig(q workers.QueueConfig) Option {
	return func(cfg *Config) error {
		cfg.Queue = q
		return nil
	}
}

// WithExtractOptions sets extraction limits
func WithExtractOptions(opts extract.Options) Option {
	return func(cfg *Config) error {
		cfg.Extract = opts
		return nil
	}
}

// WithKeepRawPayload keeps decoded page bodies on results
func WithKeepRawPayload(keep bool) Option {
	return func(cfg *Config) error {
		cfg.KeepRawPayload = keep
		return nil
	}
}

// WithArchiveDir enables the markdown archive
func WithArchiveDir(dir string) Option {
	return func(cfg *Config) error {
		cfg.ArchiveDir = dir
		return nil
	}
}

// WithSchedules sets cron expressions for refresh and archive jobs
func WithSchedules(refreshCron, archiveCron string) Option {
	return func(cfg *Config) error {
		cfg.RefreshCron = refreshCron
		cfg.ArchiveCron = archiveCron
		return nil
	}
}

// WithQuietMode configures the client to suppress all log output
func WithQuietMode() Option {
	return func(cfg *Config) error {
		cfg.Logger = interfaces.NopLogger{}
		return nil
	}
}

// RequestOption tunes a single GetAllNews call
type RequestOption = news.Option

// WithForceRefresh also queues a refetch for sources served from cache
func WithForceRefresh() RequestOption {
	return news.WithForceRefresh()
}

// defaultConfig returns the default client configuration
func defaultConfig() Config {
	return Config{
		Logger:          interfaces.NopLogger{},
		Registry:        registry.Default(),
		Fetch:           fetch.DefaultOptions(),
		Cache:           cache.Options{TTL: time.Hour, MemoryRetention: 24 * time.Hour},
		Queue:           workers.DefaultQueueConfig(),
		SyncConcurrency: 5,
	}
}
