package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-webclient/internal/usecase/user"
)

// ResponseCache defines the interface for caching API responses.
type ResponseCache interface {
	// Get retrieves a response from cache by key.
	// Returns nil if the key is not found in cache.
	Get(ctx context.Context, key string) (*user.Response, error)

	// Set stores a response in cache with the configured TTL.
	Set(ctx context.Context, key string, resp *user.Response) error

	// Delete removes a response from cache by key.
	Delete(ctx context.Context, key string) error

	// DeleteMultiple removes multiple responses from cache by key.
	DeleteMultiple(ctx context.Context, keys ...string) error
}

// Key builds the cache key of a templated request.
func Key(method, template, param string) string {
	return fmt.Sprintf("resp:%s:%s:%s", method, template, param)
}

// RedisResponseCache implements ResponseCache using Redis as the backing store.
type RedisResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisResponseCache creates a new Redis-backed response cache.
func NewRedisResponseCache(client *redis.Client, ttl time.Duration, log *zap.Logger) ResponseCache {
	return &RedisResponseCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Get retrieves a response from Redis cache.
func (c *RedisResponseCache) Get(ctx context.Context, key string) (*user.Response, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Cache miss - not an error
		c.log.Debug("cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	var resp user.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.log.Error("failed to unmarshal cached response", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("key", key))
	return &resp, nil
}

// Set stores a response in Redis cache with TTL.
func (c *RedisResponseCache) Set(ctx context.Context, key string, resp *user.Response) error {
	if resp == nil {
		return fmt.Errorf("cannot cache nil response")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		c.log.Error("failed to marshal response for cache", zap.String("key", key), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.log.Debug("cached response", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a response from Redis cache.
func (c *RedisResponseCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("key", key))
	return nil
}

// DeleteMultiple removes multiple responses from Redis cache.
func (c *RedisResponseCache) DeleteMultiple(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to delete multiple from cache", zap.Int("count", len(keys)), zap.Error(err))
		return err
	}

	c.log.Debug("deleted multiple from cache", zap.Int("count", len(keys)))
	return nil
}
