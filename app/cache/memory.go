package cache

import (
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache used when no Redis address is
// configured. Counters are then only meaningful for a single server
// process, which is the documented single-node degradation.
type Memory struct {
	store *gocache.Cache
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an in-process cache
func NewMemory() *Memory {
	return &Memory{
		store: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Get retrieves a value from cache
func (c *Memory) Get(key string) (string, bool, error) {
	val, ok := c.store.Get(key)
	if !ok {
		return "", false, nil
	}

	switch v := val.(type) {
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	case int64:
		return fmt.Sprintf("%d", v), true, nil
	default:
		return "", false, fmt.Errorf("unexpected value type for key %s", key)
	}
}

// Set stores a value in cache with TTL
func (c *Memory) Set(key string, value interface{}, ttl time.Duration) error {
	switch v := value.(type) {
	case string:
		c.store.Set(key, v, ttl)
	case []byte:
		c.store.Set(key, string(v), ttl)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
		}
		c.store.Set(key, string(data), ttl)
	}
	return nil
}

// Delete removes a key from cache
func (c *Memory) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

// Increment bumps the counter at key. The TTL binds when the counter
// is created; later hits keep the original window expiry.
func (c *Memory) Increment(key string, ttl time.Duration) (int64, time.Time, error) {
	c.store.Add(key, int64(0), ttl)

	count, err := c.store.IncrementInt64(key, 1)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment key %s: %w", key, err)
	}

	_, expiry, _ := c.store.GetWithExpiration(key)
	if expiry.IsZero() {
		expiry = time.Now().Add(ttl)
	}

	return count, expiry, nil
}

// Close is a no-op for the in-process cache
func (c *Memory) Close() error {
	return nil
}
