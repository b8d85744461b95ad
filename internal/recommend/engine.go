package recommend

// #region imports
import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region errors

// ErrNoRatesFound means no priced service matched the zone and weight.
var ErrNoRatesFound = errors.New("no rates found")

// #endregion

// #region policy

// Policy carries the tunables the engine must not hardcode.
type Policy struct {
	HighCostThreshold    float64
	AutoEscalateHighCost bool
}

// DefaultPolicy flags shipments of $1000 or more.
func DefaultPolicy() Policy {
	return Policy{HighCostThreshold: 1000, AutoEscalateHighCost: true}
}

// #endregion

// #region outcome

// Outcome is the engine's answer for one parameter set.
type Outcome struct {
	Primary      shipping.Recommendation
	Secondary    *shipping.Recommendation  // cheapest in-budget option when Primary is over budget
	Options      []shipping.Recommendation // every priced service, cheapest first
	TierFallback bool                      // stated tier had no priced service
}

// #endregion

// #region engine

// Engine selects a service from rate rows. Stateless and safe to share.
type Engine struct {
	policy Policy
}

// NewEngine creates an engine with the given policy.
func NewEngine(p Policy) *Engine {
	return &Engine{policy: p}
}

// Recommend picks the primary service. A stated urgency wins over cost:
// the cheapest service inside the tier is chosen even when a cheaper one
// exists elsewhere. A budget never changes the primary; it only marks it
// over budget and surfaces the cheapest option that fits.
func (e *Engine) Recommend(params shipping.ShippingParameters, rows []shipping.RateRow) (Outcome, error) {
	opts := Options(rows)
	if len(opts) == 0 {
		return Outcome{}, ErrNoRatesFound
	}

	out := Outcome{Options: opts}
	tier := params.Urgency
	byTier := params.UrgencyStated && tier != "" && tier != shipping.UrgencyNone

	var primary shipping.Recommendation
	if byTier {
		if pick, ok := cheapestInTier(opts, tier); ok {
			primary = pick
			primary.Rationale = fmt.Sprintf("You asked for %s delivery, so I picked the lowest-cost %s service: %s.",
				TierLabel(tier), TierLabel(tier), Describe(pick))
		} else {
			out.TierFallback = true
			primary = opts[0]
			primary.Rationale = fmt.Sprintf("No %s service is priced for this shipment, so the lowest-cost option is %s.",
				TierLabel(tier), Describe(primary))
		}
	} else {
		primary = opts[0]
		primary.Rationale = fmt.Sprintf("%s is the lowest-cost option.", Describe(primary))
	}

	if b := params.BudgetUSD; b != nil && primary.CostUSD > *b {
		primary.OverBudget = true
		primary.Rationale += fmt.Sprintf(" It is $%.2f over your $%.2f budget.", primary.CostUSD-*b, *b)
		if alt, ok := Cheapest(opts, primary.Service, b); ok {
			alt.Rationale = fmt.Sprintf("Cheapest option within your $%.2f budget: %s.", *b, Describe(alt))
			out.Secondary = &alt
		}
	}

	primary.EscalationRequired = e.HighCost(primary.CostUSD)
	out.Primary = primary
	return out, nil
}

// HighCost reports whether cost trips the automatic escalation policy.
func (e *Engine) HighCost(cost float64) bool {
	return e.policy.AutoEscalateHighCost && cost >= e.policy.HighCostThreshold
}

// #endregion

// #region options

// Options flattens rows into one recommendation per priced service, sorted
// by cost, then delivery speed, then name. Duplicate services keep their
// lowest price.
func Options(rows []shipping.RateRow) []shipping.Recommendation {
	best := make(map[string]float64)
	for _, r := range rows {
		for name, price := range r.Prices {
			if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
				continue
			}
			svc := shipping.ServiceInfo(name).Name
			if cur, ok := best[svc]; !ok || price < cur {
				best[svc] = price
			}
		}
	}

	out := make([]shipping.Recommendation, 0, len(best))
	for name, cost := range best {
		out = append(out, option(name, cost))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CostUSD != out[j].CostUSD {
			return out[i].CostUSD < out[j].CostUSD
		}
		ri, rj := shipping.ServiceInfo(out[i].Service).Rank, shipping.ServiceInfo(out[j].Service).Rank
		if ri != rj {
			return ri < rj
		}
		return out[i].Service < out[j].Service
	})
	return out
}

func option(name string, cost float64) shipping.Recommendation {
	info := shipping.ServiceInfo(name)
	return shipping.Recommendation{
		Service:        info.Name,
		CostUSD:        cost,
		DeliveryDays:   info.DeliveryDays,
		DeliveryWindow: info.DeliveryWindow,
		Tier:           info.Tier,
	}
}

// Cheapest returns the lowest-cost option other than exclude, optionally
// capped at maxCost. opts must be sorted as returned by Options.
func Cheapest(opts []shipping.Recommendation, exclude string, maxCost *float64) (shipping.Recommendation, bool) {
	for _, o := range opts {
		if o.Service == exclude {
			continue
		}
		if maxCost != nil && o.CostUSD > *maxCost {
			continue
		}
		return o, true
	}
	return shipping.Recommendation{}, false
}

// Alternatives returns up to n options other than exclude, cheapest first.
func Alternatives(opts []shipping.Recommendation, exclude string, n int) []shipping.Recommendation {
	out := make([]shipping.Recommendation, 0, n)
	for _, o := range opts {
		if len(out) == n {
			break
		}
		if o.Service == exclude {
			continue
		}
		out = append(out, o)
	}
	return out
}

func cheapestInTier(opts []shipping.Recommendation, tier shipping.Urgency) (shipping.Recommendation, bool) {
	for _, o := range opts {
		if o.Tier == tier {
			return o, true
		}
	}
	return shipping.Recommendation{}, false
}

// #endregion

// #region describe

// Describe renders a recommendation as "Display at $X (window)".
func Describe(r shipping.Recommendation) string {
	info := shipping.ServiceInfo(r.Service)
	if r.DeliveryWindow != "" {
		return fmt.Sprintf("%s at $%.2f (%s)", info.Display, r.CostUSD, r.DeliveryWindow)
	}
	return fmt.Sprintf("%s at $%.2f", info.Display, r.CostUSD)
}

// TierLabel is the human label for an urgency tier.
func TierLabel(t shipping.Urgency) string {
	switch t {
	case shipping.UrgencyOvernight:
		return "overnight"
	case shipping.UrgencyTwoDay:
		return "2-day"
	case shipping.UrgencyEconomy:
		return "economy"
	}
	return string(t)
}

// #endregion
