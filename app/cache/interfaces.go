package cache

import "time"

// Cache is the shared key/value store with TTL semantics. The rate
// limiter relies on Increment being atomic with reset-on-first-hit
// expiry: the TTL is bound when the counter is created and subsequent
// hits never extend it.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
	Increment(key string, ttl time.Duration) (int64, time.Time, error)
	Close() error
}
