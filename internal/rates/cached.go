package rates

// #region imports
import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/danielpatrickdp/rate-advisor/internal/cache"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region service

// Service is the rate lookup contract.
type Service interface {
	QueryRates(ctx context.Context, zone int, weightLb float64) ([]shipping.RateRow, error)
}

// #endregion

// #region cached

// Cached fronts a Service with an L1 cache and collapses concurrent
// identical lookups into one backend call. Rate rows are immutable, so
// empty results are cached too.
type Cached struct {
	next  Service
	cache *cache.Cache[[]shipping.RateRow]
	group singleflight.Group
}

// NewCached wraps next.
func NewCached(next Service, maxItems int64, ttl time.Duration) (*Cached, error) {
	c, err := cache.New[[]shipping.RateRow](maxItems, ttl)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

// QueryRates returns cached rows or asks the wrapped service once per key.
func (c *Cached) QueryRates(ctx context.Context, zone int, weightLb float64) ([]shipping.RateRow, error) {
	w, err := validate(zone, weightLb)
	if err != nil {
		return nil, err
	}
	k := fmt.Sprintf("%d:%d", zone, w)
	if rows, ok := c.cache.Get(k); ok {
		return cloneRows(rows), nil
	}

	ch := c.group.DoChan(k, func() (any, error) {
		rows, err := c.next.QueryRates(context.WithoutCancel(ctx), zone, float64(w))
		if err != nil {
			return nil, err
		}
		c.cache.Set(k, rows)
		return rows, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneRows(res.Val.([]shipping.RateRow)), nil
	}
}

// Wait flushes buffered cache writes.
func (c *Cached) Wait() { c.cache.Wait() }

// Close releases the cache.
func (c *Cached) Close() { c.cache.Close() }

func cloneRows(rows []shipping.RateRow) []shipping.RateRow {
	out := make([]shipping.RateRow, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// #endregion
