package orchestrator

// #region imports
import (
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/rate-advisor/internal/recommend"
	"github.com/danielpatrickdp/rate-advisor/internal/session"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region check-names

const (
	CheckZoneResolved  = "zone_resolved"
	CheckPriceMatches  = "price_matches_table"
	CheckTierHonoured  = "tier_honoured"
	CheckCheapestScope = "cheapest_in_scope"
	CheckWithinBudget  = "within_budget"
	priceTolerance     = 0.005
)

// #endregion

// #region reflector

// Reflector re-examines the stored recommendation against the stored
// parameters and rate rows. It never queries rates.
type Reflector struct {
	engine *recommend.Engine
}

// NewReflector creates a reflector that recomputes with engine.
func NewReflector(engine *recommend.Engine) *Reflector {
	return &Reflector{engine: engine}
}

// Reflect verifies st.LastRecommendation. The original is always carried
// in the result; a differing recomputation is reported as a correction.
func (r *Reflector) Reflect(st session.State, s Sentiment) shipping.ReflectionResult {
	rec := *st.LastRecommendation
	var params shipping.ShippingParameters
	if st.LastParameters != nil {
		params = *st.LastParameters
	}
	opts := recommend.Options(st.LastRows)

	res := shipping.ReflectionResult{Original: rec}
	recomputed, recErr := r.engine.Recommend(params, st.LastRows)

	res.Checks = []shipping.Check{
		zoneCheck(params),
		priceCheck(rec, opts),
		tierCheck(rec, params, opts),
		cheapestCheck(rec, recomputed, recErr),
		budgetCheck(rec, params),
	}

	passed := 0
	for _, c := range res.Checks {
		if c.Passed {
			passed++
		}
	}
	allPassed := passed == len(res.Checks)
	res.Confidence = float64(passed) / float64(len(res.Checks))

	if recErr == nil && !sameChoice(rec, recomputed.Primary) {
		corr := recomputed.Primary
		res.Correction = &corr
	}
	if next, ok := recommend.Cheapest(opts, rec.Service, nil); ok {
		res.NextBest = &next
	}
	if cheaper, ok := cheaperInBudget(rec, params, opts); ok {
		res.CheaperInBudget = &cheaper
	}

	res.Verified = allPassed && res.Correction == nil
	switch s {
	case SentimentUnsure:
		res.EscalationRequired = !allPassed
	case SentimentDissatisfied:
		res.EscalationRequired = !allPassed || res.CheaperInBudget != nil
	}
	res.Explanation = explainReflection(res, params, s)
	return res
}

// #endregion

// #region checks

func zoneCheck(p shipping.ShippingParameters) shipping.Check {
	c := shipping.Check{Name: CheckZoneResolved, Passed: p.Destination.Resolved()}
	if c.Passed {
		c.Detail = fmt.Sprintf("%s is zone %d", p.Destination.Display(), p.Zone())
	} else {
		c.Detail = "destination has no zone"
	}
	return c
}

func priceCheck(rec shipping.Recommendation, opts []shipping.Recommendation) shipping.Check {
	c := shipping.Check{Name: CheckPriceMatches}
	for _, o := range opts {
		if o.Service == rec.Service {
			c.Passed = math.Abs(o.CostUSD-rec.CostUSD) < priceTolerance
			c.Detail = fmt.Sprintf("table price $%.2f, quoted $%.2f", o.CostUSD, rec.CostUSD)
			return c
		}
	}
	c.Detail = rec.Service + " is not priced in the table"
	return c
}

func tierCheck(rec shipping.Recommendation, p shipping.ShippingParameters, opts []shipping.Recommendation) shipping.Check {
	c := shipping.Check{Name: CheckTierHonoured, Passed: true, Detail: "no delivery speed requested"}
	if !p.UrgencyStated || p.Urgency == shipping.UrgencyNone {
		return c
	}
	if shipping.InTier(rec.Service, p.Urgency) {
		c.Detail = fmt.Sprintf("%s is a %s service", rec.Service, recommend.TierLabel(p.Urgency))
		return c
	}
	for _, o := range opts {
		if o.Tier == p.Urgency {
			c.Passed = false
			c.Detail = fmt.Sprintf("%s is not %s but %s is", rec.Service, recommend.TierLabel(p.Urgency), o.Service)
			return c
		}
	}
	c.Detail = fmt.Sprintf("no %s service is priced", recommend.TierLabel(p.Urgency))
	return c
}

func cheapestCheck(rec shipping.Recommendation, out recommend.Outcome, err error) shipping.Check {
	c := shipping.Check{Name: CheckCheapestScope}
	if err != nil {
		c.Detail = "stored rates could not be re-evaluated"
		return c
	}
	c.Passed = sameChoice(rec, out.Primary)
	if c.Passed {
		c.Detail = "lowest price within the requested speed"
	} else {
		c.Detail = fmt.Sprintf("recomputed choice is %s", recommend.Describe(out.Primary))
	}
	return c
}

// budgetCheck passes when the price fits or the overrun was disclosed.
func budgetCheck(rec shipping.Recommendation, p shipping.ShippingParameters) shipping.Check {
	c := shipping.Check{Name: CheckWithinBudget, Passed: true, Detail: "no budget given"}
	if p.BudgetUSD == nil {
		return c
	}
	b := *p.BudgetUSD
	switch {
	case rec.CostUSD <= b:
		c.Detail = fmt.Sprintf("$%.2f is within $%.2f", rec.CostUSD, b)
	case rec.OverBudget:
		c.Detail = fmt.Sprintf("$%.2f over budget, already disclosed", rec.CostUSD-b)
	default:
		c.Passed = false
		c.Detail = fmt.Sprintf("$%.2f exceeds $%.2f without warning", rec.CostUSD, b)
	}
	return c
}

func sameChoice(a, b shipping.Recommendation) bool {
	return a.Service == b.Service && math.Abs(a.CostUSD-b.CostUSD) < priceTolerance
}

func cheaperInBudget(rec shipping.Recommendation, p shipping.ShippingParameters, opts []shipping.Recommendation) (shipping.Recommendation, bool) {
	limit := rec.CostUSD - priceTolerance
	if p.BudgetUSD != nil && *p.BudgetUSD < limit {
		limit = *p.BudgetUSD
	}
	return recommend.Cheapest(opts, rec.Service, &limit)
}

// #endregion

// #region explain

func explainReflection(res shipping.ReflectionResult, p shipping.ShippingParameters, s Sentiment) string {
	var b strings.Builder
	rec := res.Original

	switch {
	case res.Verified:
		fmt.Fprintf(&b, "I double-checked: %s", recommend.Describe(rec))
		if p.Destination.Resolved() && p.WeightLb != nil {
			fmt.Fprintf(&b, " for %g lb to %s (zone %d)", *p.WeightLb, p.Destination.Display(), p.Zone())
		}
		b.WriteString(" matches the rate table.")
	default:
		b.WriteString("I re-checked and found a problem:")
		for _, c := range res.Checks {
			if !c.Passed {
				fmt.Fprintf(&b, " %s.", c.Detail)
			}
		}
	}

	if res.Correction != nil {
		fmt.Fprintf(&b, " The correct choice is %s.", recommend.Describe(*res.Correction))
	}
	if res.NextBest != nil {
		diff := res.NextBest.CostUSD - rec.CostUSD
		if diff >= 0 {
			fmt.Fprintf(&b, " The next best option is %s, $%.2f more.", recommend.Describe(*res.NextBest), diff)
		} else {
			fmt.Fprintf(&b, " %s is $%.2f cheaper but slower or outside the speed you asked for.",
				recommend.Describe(*res.NextBest), -diff)
		}
	}
	if s == SentimentDissatisfied && res.CheaperInBudget != nil && res.CheaperInBudget.Service != serviceOf(res.NextBest) {
		fmt.Fprintf(&b, " A cheaper option is %s.", recommend.Describe(*res.CheaperInBudget))
	}
	fmt.Fprintf(&b, " Confidence %.0f%%.", res.Confidence*100)
	return b.String()
}

func serviceOf(r *shipping.Recommendation) string {
	if r == nil {
		return ""
	}
	return r.Service
}

// #endregion
