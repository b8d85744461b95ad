// Package cache is the in-process L1 cache shared by the rate and zone
// lookups, backed by dgraph-io/ristretto.
package cache

// #region imports
import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// #endregion

// #region cache

// Cache is a typed TTL cache. Every entry costs 1, so maxItems bounds the
// number of live entries.
type Cache[V any] struct {
	c   *ristretto.Cache[string, V]
	ttl time.Duration
}

// New creates a cache holding up to maxItems entries for ttl each.
func New[V any](maxItems int64, ttl time.Duration) (*Cache[V], error) {
	if maxItems <= 0 {
		maxItems = 1024
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxItems * 10, // ~10x expected items
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache[V]{c: c, ttl: ttl}, nil
}

// Get retrieves a value.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.c.Get(key)
}

// Set stores a value. Writes are buffered; call Wait to make them visible
// immediately.
func (c *Cache[V]) Set(key string, v V) {
	if c.ttl > 0 {
		c.c.SetWithTTL(key, v, 1, c.ttl)
		return
	}
	c.c.Set(key, v, 1)
}

// Delete removes a value.
func (c *Cache[V]) Delete(key string) {
	c.c.Del(key)
}

// Wait blocks until buffered writes are applied.
func (c *Cache[V]) Wait() {
	c.c.Wait()
}

// Close releases the cache's goroutines.
func (c *Cache[V]) Close() {
	c.c.Close()
}

// #endregion
