package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisCache].
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
}

// RedisCache stores entries in Redis so several server instances share
// cost records. TTLs map directly onto Redis expirations.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis %s: %v", ErrNetwork, cfg.Addr, err)
	}
	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return data, true, nil
}

// Set stores a value in Redis.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return nil
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// clearPatterns match every key the default keyer produces.
var clearPatterns = []string{"http:*", "cost:*", "pkg:*"}

// Clear deletes the netscore entries written under prefix (see
// [KeyerFor]) from the current database and returns how many were
// removed. Entries under other prefixes are kept.
func (c *RedisCache) Clear(ctx context.Context, prefix string) (int, error) {
	count := 0
	for _, pattern := range clearPatterns {
		iter := c.client.Scan(ctx, 0, prefix+pattern, 500).Iterator()
		for iter.Next(ctx) {
			n, err := c.client.Del(ctx, iter.Val()).Result()
			if err != nil {
				return count, fmt.Errorf("%w: %v", ErrNetwork, err)
			}
			count += int(n)
		}
		if err := iter.Err(); err != nil {
			return count, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	}
	return count, nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
