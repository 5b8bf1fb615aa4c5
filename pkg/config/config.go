// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Defines configuration structures for server, logging, cache, fetching, queue and schedules

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"newswire-api/pkg/utils/duration"
)

// Cache backends for the persistent tier
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Log contains logger configuration
	Log LogConfig

	// Cache contains cache configuration
	Cache CacheConfig

	// Fetch contains fetcher and extraction configuration
	Fetch FetchConfig

	// Queue contains background task queue configuration
	Queue QueueConfig

	// Schedule contains cron schedules and the archive location
	Schedule ScheduleConfig

	// SourcesFile is an optional YAML registry; empty uses the built-in sources
	SourcesFile string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// RateLimitRPS is the per-client request rate. 0 disables rate limiting.
	RateLimitRPS float64

	// RateLimitBurst is the per-client burst size
	RateLimitBurst int

	// AllowUnregisteredSources lets clients name sources outside the registry
	AllowUnregisteredSources bool

	// MaxSourcesPerRequest caps the sources one request may name
	MaxSourcesPerRequest int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string

	// File, when set, receives a rotated copy of the log
	File string
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Backend selects the persistent tier (file/sqlite/redis/none)
	Backend string

	// Dir is the file tier directory
	Dir string

	// TTL is how long a cached result counts as fresh
	TTL time.Duration

	// MemoryRetention bounds how long entries stay in memory. 0 keeps them.
	MemoryRetention time.Duration

	// SQLitePath is the sqlite tier database file
	SQLitePath string

	// Redis contains Redis-specific configuration
	Redis RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int

	// KeyPrefix namespaces result keys
	KeyPrefix string
}

// FetchConfig holds fetcher configuration
type FetchConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	MaxBodyBytes      int64
	RequestsPerSecond float64
	ProxyURL          string

	// KeepRawPayload keeps page bodies on results
	KeepRawPayload bool

	// MaxArticles caps articles per page. 0 means unlimited.
	MaxArticles int
}

// QueueConfig holds background task queue configuration
type QueueConfig struct {
	Concurrency int
	Retention   time.Duration
	MaxPending  int
}

// ScheduleConfig holds cron expressions. An empty expression disables the job.
type ScheduleConfig struct {
	RefreshCron string
	ArchiveCron string
	ArchiveDir  string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:                     getEnvOrDefault("PORT", "8000"),
			RateLimitRPS:             getEnvAsFloatOrDefault("RATE_LIMIT_RPS", 10),
			RateLimitBurst:           getEnvAsIntOrDefault("RATE_LIMIT_BURST", 20),
			AllowUnregisteredSources: getEnvAsBoolOrDefault("ALLOW_UNREGISTERED_SOURCES", false),
			MaxSourcesPerRequest:     getEnvAsIntOrDefault("MAX_SOURCES_PER_REQUEST", 50),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
			File:   getEnvOrDefault("LOG_FILE", ""),
		},
		Cache: CacheConfig{
			Backend:         strings.ToLower(getEnvOrDefault("CACHE_BACKEND", BackendFile)),
			Dir:             getEnvOrDefault("CACHE_DIR", "./cache"),
			TTL:             getEnvAsDurationOrDefault("CACHE_TTL", time.Hour),
			MemoryRetention: getEnvAsDurationOrDefault("MEMORY_RETENTION", 24*time.Hour),
			SQLitePath:      getEnvOrDefault("SQLITE_PATH", "./cache/results.db"),
			Redis: RedisConfig{
				Address:   getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password:  getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:        getEnvAsIntOrDefault("REDIS_DB", 0),
				KeyPrefix: getEnvOrDefault("REDIS_KEY_PREFIX", ""),
			},
		},
		Fetch: FetchConfig{
			Timeout:           getEnvAsDurationOrDefault("FETCH_TIMEOUT", 10*time.Second),
			MaxRetries:        getEnvAsIntOrDefault("FETCH_MAX_RETRIES", 2),
			RetryBaseDelay:    getEnvAsDurationOrDefault("FETCH_RETRY_BASE_DELAY", time.Second),
			MaxBodyBytes:      int64(getEnvAsIntOrDefault("FETCH_MAX_BODY_BYTES", 5<<20)),
			RequestsPerSecond: getEnvAsFloatOrDefault("FETCH_RPS", 0),
			ProxyURL:          getEnvOrDefault("PROXY_URL", ""),
			KeepRawPayload:    getEnvAsBoolOrDefault("KEEP_RAW_PAYLOAD", false),
			MaxArticles:       getEnvAsIntOrDefault("MAX_ARTICLES", 0),
		},
		Queue: QueueConfig{
			Concurrency: getEnvAsIntOrDefault("QUEUE_CONCURRENCY", 5),
			Retention:   getEnvAsDurationOrDefault("QUEUE_RETENTION", 60*time.Second),
			MaxPending:  getEnvAsIntOrDefault("QUEUE_MAX_PENDING", 1000),
		},
		Schedule: ScheduleConfig{
			RefreshCron: getEnvOrDefault("REFRESH_CRON", "0 6 * * *"),
			ArchiveCron: getEnvOrDefault("ARCHIVE_CRON", "0 0 * * *"),
			ArchiveDir:  getEnvOrDefault("ARCHIVE_DIR", "./news-archives"),
		},
		SourcesFile: getEnvOrDefault("SOURCES_FILE", ""),
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts seconds, Go durations or clock forms
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := duration.Parse(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Server.RateLimitRPS < 0 {
		return errors.New("rate limit cannot be negative")
	}

	if c.Server.MaxSourcesPerRequest < 1 {
		return errors.New("max sources per request must be at least 1")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return errors.New("log format must be 'json' or 'text'")
	}

	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Dir == "" {
			return errors.New("cache dir cannot be empty when using file cache")
		}
	case BackendSQLite:
		if c.Cache.SQLitePath == "" {
			return errors.New("sqlite path cannot be empty when using sqlite cache")
		}
	case BackendRedis:
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	case BackendNone:
	default:
		return fmt.Errorf("cache backend must be one of file, sqlite, redis, none; got %q", c.Cache.Backend)
	}

	if c.Cache.TTL <= 0 {
		return errors.New("cache TTL must be positive")
	}

	if c.Cache.MemoryRetention < 0 || (c.Cache.MemoryRetention > 0 && c.Cache.MemoryRetention < c.Cache.TTL) {
		return errors.New("memory retention must be 0 or at least the cache TTL")
	}

	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}

	if c.Fetch.MaxRetries < 0 {
		return errors.New("fetch max retries cannot be negative")
	}

	if c.Queue.Concurrency < 1 {
		return errors.New("queue concurrency must be at least 1")
	}

	if c.Queue.MaxPending < 1 {
		return errors.New("queue max pending must be at least 1")
	}

	return nil
}
