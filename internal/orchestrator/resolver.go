package orchestrator

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
	"github.com/danielpatrickdp/rate-advisor/internal/zone"
)

// #endregion

// #region resolved

const (
	FieldDestination = "destination"
	FieldWeight      = "weight"
)

// Resolved is the parameter resolver's output. Exactly one of Restricted,
// a non-empty Missing, or a queryable Params holds.
type Resolved struct {
	Params       shipping.ShippingParameters
	Missing      []string
	Unresolvable string // destination text that could not be placed
	Restricted   *shipping.Restriction
	ItemHint     string
	Notes        []string
}

// #endregion

// #region resolver

// Resolver turns an extraction into shipping parameters.
type Resolver struct {
	zones ZoneResolver
}

// NewResolver creates a resolver over zones.
func NewResolver(zones ZoneResolver) *Resolver {
	return &Resolver{zones: zones}
}

// Resolve fills parameters for a new request. Only context and backend
// failures are returned as errors; everything else is reported in Resolved.
func (r *Resolver) Resolve(ctx context.Context, cl Classification) (Resolved, error) {
	if cl.Restriction.Detected {
		restr := cl.Restriction
		return Resolved{Restricted: &restr}, nil
	}

	ex := cl.Extraction
	out := Resolved{ItemHint: ex.ItemHint}
	p := &out.Params

	if ex.WeightLb != nil && *ex.WeightLb > 0 && !math.IsInf(*ex.WeightLb, 0) {
		w := *ex.WeightLb
		p.WeightLb = &w
	}

	p.Urgency = shipping.UrgencyNone
	if ex.Urgency != "" && ex.Urgency != shipping.UrgencyNone {
		p.Urgency = ex.Urgency
		p.UrgencyStated = true
	}

	if ex.BudgetText != "" {
		if b, ok := ParseBudget(ex.BudgetText); ok {
			p.BudgetUSD = &b
		} else {
			out.Notes = append(out.Notes, NoteMalformedBudget)
		}
	}

	dest, err := r.destination(ctx, ex)
	switch {
	case errors.Is(err, zone.ErrUnresolvable):
		out.Unresolvable = destinationText(ex)
	case err != nil:
		return Resolved{}, err
	default:
		p.Destination = dest
	}

	if ex.OriginText != "" {
		origin, err := r.locate(ctx, ex.OriginText)
		switch {
		case errors.Is(err, zone.ErrUnresolvable):
			p.Origin = &shipping.LocationRef{RawText: ex.OriginText}
			out.Notes = append(out.Notes, NoteOriginUnresolved)
		case err != nil:
			return Resolved{}, err
		default:
			p.Origin = origin
		}
	}

	if !p.Destination.Resolved() {
		out.Missing = append(out.Missing, FieldDestination)
	}
	if p.WeightLb == nil {
		out.Missing = append(out.Missing, FieldWeight)
	}
	return out, nil
}

// destination returns nil, nil when no destination was mentioned.
func (r *Resolver) destination(ctx context.Context, ex shipping.Extraction) (*shipping.LocationRef, error) {
	if ex.DestinationText != "" {
		return r.locate(ctx, ex.DestinationText)
	}
	if ex.Zone != nil {
		z := *ex.Zone
		if z < 2 || z > 8 {
			return nil, fmt.Errorf("zone %d: %w", z, zone.ErrUnresolvable)
		}
		return &shipping.LocationRef{RawText: fmt.Sprintf("zone %d", z), Zone: &z}, nil
	}
	return nil, nil
}

func (r *Resolver) locate(ctx context.Context, text string) (*shipping.LocationRef, error) {
	res, err := r.zones.Resolve(ctx, text)
	if err != nil {
		return nil, err
	}
	z := res.Zone
	return &shipping.LocationRef{
		RawText:       text,
		CorrectedText: res.CorrectedText,
		State:         res.State,
		Zone:          &z,
	}, nil
}

func destinationText(ex shipping.Extraction) string {
	if ex.DestinationText != "" {
		return ex.DestinationText
	}
	if ex.Zone != nil {
		return fmt.Sprintf("zone %d", *ex.Zone)
	}
	return ""
}

// #endregion

// #region budget

// ParseBudget strips currency marks and thousands separators. Anything
// that is not a non-negative finite number is rejected.
func ParseBudget(text string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimSuffix(s, "dollars")
	s = strings.TrimSuffix(s, "usd")
	s = strings.TrimPrefix(s, "usd")
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// #endregion
