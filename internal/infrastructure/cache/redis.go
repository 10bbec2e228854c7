package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/myboiiPrime/AI-food/internal/infrastructure/config"
)

// RedisCache is a CacheRepository backed by Redis, for deployments with more
// than one API instance sharing nutrition lookups.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg *config.Config, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis cache connected", zap.String("addr", cfg.RedisAddr()))

	return &RedisCache{
		client: client,
		logger: logger.Named("redis-cache"),
	}, nil
}

// Get returns the cached value, or nil when the key is absent.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Set stores a value with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Exists reports whether a key is present.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return count > 0, nil
}

// Close closes the underlying connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
