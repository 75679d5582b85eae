package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the shared cache with a Redis server, making counters
// and cached payloads visible across server processes.
type Redis struct {
	client *redis.Client
	ctx    context.Context
}

var _ Cache = (*Redis)(nil)

// NewRedis creates a new Redis cache client
func NewRedis(addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Debug("Connected to Redis", "addr", addr)

	return &Redis{
		client: client,
		ctx:    ctx,
	}, nil
}

// Get retrieves a value from cache
func (c *Redis) Get(key string) (string, bool, error) {
	val, err := c.client.Get(c.ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores a value in cache with TTL
func (c *Redis) Set(key string, value interface{}, ttl time.Duration) error {
	var data []byte
	var err error

	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		data, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
		}
	}

	if err := c.client.Set(c.ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}

// Delete removes a key from cache
func (c *Redis) Delete(key string) error {
	if err := c.client.Del(c.ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Increment bumps the counter at key, binding the TTL on first hit
// only. Returns the post-increment count and the window expiry.
func (c *Redis) Increment(key string, ttl time.Duration) (int64, time.Time, error) {
	count, err := c.client.Incr(c.ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment key %s: %w", key, err)
	}

	if count == 1 {
		if err := c.client.Expire(c.ctx, key, ttl).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to set expiry for key %s: %w", key, err)
		}
		return count, time.Now().Add(ttl), nil
	}

	remaining, err := c.client.TTL(c.ctx, key).Result()
	if err != nil || remaining < 0 {
		// Counter created without an expiry (e.g. a crashed writer);
		// rebind the window so the key cannot live forever.
		c.client.Expire(c.ctx, key, ttl)
		remaining = ttl
	}

	return count, time.Now().Add(remaining), nil
}

// Close closes the Redis connection
func (c *Redis) Close() error {
	return c.client.Close()
}
