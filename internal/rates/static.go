package rates

// #region imports
import (
	"context"
	"sync/atomic"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region static

type key struct{ zone, weight int }

// Static serves rows from memory. Used by replay fixtures and tests; it
// counts calls so callers can assert that no query happened.
type Static struct {
	rows  map[key][]shipping.RateRow
	calls atomic.Int64
}

// NewStatic indexes rows by zone and whole-pound weight.
func NewStatic(rows ...shipping.RateRow) *Static {
	s := &Static{rows: make(map[key][]shipping.RateRow)}
	for _, r := range rows {
		k := key{r.Zone, r.WeightLb}
		s.rows[k] = append(s.rows[k], r)
	}
	return s
}

// QueryRates returns matching rows, or an empty slice.
func (s *Static) QueryRates(ctx context.Context, zone int, weightLb float64) ([]shipping.RateRow, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, err := validate(zone, weightLb)
	if err != nil {
		return nil, err
	}
	src := s.rows[key{zone, w}]
	out := make([]shipping.RateRow, len(src))
	for i, r := range src {
		out[i] = r.Clone()
	}
	return out, nil
}

// Calls returns how many queries were made.
func (s *Static) Calls() int { return int(s.calls.Load()) }

// #endregion
