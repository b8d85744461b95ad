package zone

// #region imports
import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielpatrickdp/rate-advisor/internal/cache"
)

// #endregion

// #region cached

// Resolver is anything that maps location text to a zone.
type Resolver interface {
	Resolve(ctx context.Context, text string) (Resolution, error)
}

type entry struct {
	res          Resolution
	unresolvable bool
}

// Cached memoizes a Resolver, including negative answers. Context errors
// are never cached.
type Cached struct {
	next  Resolver
	cache *cache.Cache[entry]
}

// NewCached wraps next with an L1 cache.
func NewCached(next Resolver, maxItems int64, ttl time.Duration) (*Cached, error) {
	c, err := cache.New[entry](maxItems, ttl)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

// Resolve returns the cached answer or asks the wrapped resolver.
func (c *Cached) Resolve(ctx context.Context, text string) (Resolution, error) {
	key := strings.ToLower(cleanLocation(text))
	if e, ok := c.cache.Get(key); ok {
		if e.unresolvable {
			return Resolution{}, ErrUnresolvable
		}
		return e.res, nil
	}

	res, err := c.next.Resolve(ctx, text)
	switch {
	case err == nil:
		c.cache.Set(key, entry{res: res})
	case errors.Is(err, ErrUnresolvable):
		c.cache.Set(key, entry{unresolvable: true})
	}
	return res, err
}

// Wait flushes buffered cache writes.
func (c *Cached) Wait() { c.cache.Wait() }

// Close releases the cache.
func (c *Cached) Close() { c.cache.Close() }

// #endregion
