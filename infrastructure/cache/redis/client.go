// ABOUTME: Redis-backed persistent cache tier using go-redis
// ABOUTME: One key per source URL under a configurable prefix, with native TTL support

package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"newswire-api/core/interfaces"
	"newswire-api/pkg/config"
)

// DefaultKeyPrefix namespaces result keys
const DefaultKeyPrefix = "newswire:result:"

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &RedisCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisCache) key(url string) string {
	return c.prefix + url
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, url string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value in Redis. A zero ttl means no expiration.
func (c *RedisCache) Set(ctx context.Context, url string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(url), value, ttl).Err()
}

// Delete removes a key from Redis. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, url string) error {
	return c.client.Del(ctx, c.key(url)).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
