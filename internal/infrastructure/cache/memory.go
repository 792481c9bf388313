package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// cleanupInterval is how often expired scan results are swept out
const cleanupInterval = 10 * time.Minute

// entry is a single cached value with its expiry
type entry struct {
	value   interface{}
	expires time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support, used for
// per-canonical-name scan results when no Redis is configured.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]entry
	stop chan struct{}
}

// NewMemoryCache creates a new in-memory cache and starts its sweeper
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]entry),
		stop: make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || time.Now().After(e.expires) {
		return nil, domain.ErrCacheMiss
	}
	return e.value, nil
}

// Set stores a value with a TTL. The value is round-tripped through JSON so
// callers see the same shape regardless of whether the backend is memory or
// Redis.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var stored interface{}
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry{value: stored, expires: time.Now().Add(ttl)}
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Exists checks if a key exists and has not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	return ok && !time.Now().After(e.expires), nil
}

// Size returns the current number of entries (including not-yet-swept
// expired ones); for monitoring only.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Close stops the background sweeper
func (c *MemoryCache) Close() {
	close(c.stop)
}

// sweep periodically removes expired entries
func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.data {
				if now.After(e.expires) {
					delete(c.data, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
