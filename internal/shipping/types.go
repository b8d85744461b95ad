package shipping

// #region imports
import (
	"time"
)

// #endregion

// #region urgency

// Urgency is the delivery-speed class a user asked for.
type Urgency string

const (
	UrgencyNone      Urgency = "none"
	UrgencyOvernight Urgency = "overnight"
	UrgencyTwoDay    Urgency = "twoDay"
	UrgencyEconomy   Urgency = "economy"
)

// #endregion

// #region satisfaction

// Satisfaction is the last known user sentiment about a recommendation.
type Satisfaction string

const (
	SatisfactionUnknown      Satisfaction = "unknown"
	SatisfactionSatisfied    Satisfaction = "satisfied"
	SatisfactionUnsure       Satisfaction = "unsure"
	SatisfactionDissatisfied Satisfaction = "dissatisfied"
)

// #endregion

// #region turn

// Turn is one user utterance. Never mutated after creation.
type Turn struct {
	Seq  int       `json:"seq"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// #endregion

// #region location

// LocationRef is a location mention and, once resolved, its zone.
// Zone is only set after successful resolution.
type LocationRef struct {
	RawText       string `json:"rawText"`
	CorrectedText string `json:"correctedText,omitempty"`
	State         string `json:"state,omitempty"`
	Zone          *int   `json:"zone,omitempty"`
}

// Resolved reports whether the location carries a usable zone.
func (l *LocationRef) Resolved() bool {
	return l != nil && l.Zone != nil
}

// Display returns the best human-readable form of the location.
func (l *LocationRef) Display() string {
	if l == nil {
		return ""
	}
	if l.CorrectedText != "" {
		if l.State != "" {
			return l.CorrectedText + ", " + l.State
		}
		return l.CorrectedText
	}
	return l.RawText
}

func (l *LocationRef) clone() *LocationRef {
	if l == nil {
		return nil
	}
	c := *l
	c.Zone = cloneInt(l.Zone)
	return &c
}

// #endregion

// #region parameters

// ShippingParameters is the resolved slot set for one shipment.
// Destination and WeightLb are required before a rate query.
type ShippingParameters struct {
	Origin        *LocationRef `json:"origin,omitempty"`
	Destination   *LocationRef `json:"destination,omitempty"`
	WeightLb      *float64     `json:"weightLb,omitempty"`
	Urgency       Urgency      `json:"urgency"`
	UrgencyStated bool         `json:"urgencyStated"`
	BudgetUSD     *float64     `json:"budgetUsd,omitempty"`
}

// Queryable reports whether the parameters carry enough to query rates.
func (p ShippingParameters) Queryable() bool {
	return p.Destination.Resolved() && p.WeightLb != nil && *p.WeightLb > 0
}

// Zone returns the destination zone or 0 when unresolved.
func (p ShippingParameters) Zone() int {
	if p.Destination.Resolved() {
		return *p.Destination.Zone
	}
	return 0
}

// Clone returns a copy that shares no pointers with p.
func (p ShippingParameters) Clone() ShippingParameters {
	p.Origin = p.Origin.clone()
	p.Destination = p.Destination.clone()
	p.WeightLb = cloneFloat(p.WeightLb)
	p.BudgetUSD = cloneFloat(p.BudgetUSD)
	return p
}

// #endregion

// #region extraction

// Extraction is the partial parameter set a TextUnderstander pulled from
// free text. Budget is kept raw; normalization belongs to the resolver.
type Extraction struct {
	OriginText      string   `json:"originText,omitempty"`
	DestinationText string   `json:"destinationText,omitempty"`
	Zone            *int     `json:"zone,omitempty"`
	WeightLb        *float64 `json:"weightLb,omitempty"`
	Urgency         Urgency  `json:"urgency,omitempty"`
	BudgetText      string   `json:"budgetText,omitempty"`
	ItemHint        string   `json:"itemHint,omitempty"`
}

// Clone returns a copy that shares no pointers with e.
func (e Extraction) Clone() Extraction {
	e.Zone = cloneInt(e.Zone)
	e.WeightLb = cloneFloat(e.WeightLb)
	return e
}

// HasDestination reports a destination mention or a direct zone.
func (e Extraction) HasDestination() bool {
	return e.DestinationText != "" || e.Zone != nil
}

// HasWeight reports whether a weight was found.
func (e Extraction) HasWeight() bool {
	return e.WeightLb != nil
}

// HasShipmentDetails reports whether the text carried any new shipment slot.
func (e Extraction) HasShipmentDetails() bool {
	return e.HasDestination() || e.HasWeight()
}

// Merge overlays next on top of e. Fields present in next win.
func (e Extraction) Merge(next Extraction) Extraction {
	out := e
	if next.OriginText != "" {
		out.OriginText = next.OriginText
	}
	if next.DestinationText != "" {
		out.DestinationText = next.DestinationText
		out.Zone = next.Zone
	} else if next.Zone != nil {
		out.Zone = next.Zone
	}
	if next.WeightLb != nil {
		out.WeightLb = next.WeightLb
	}
	if next.Urgency != "" {
		out.Urgency = next.Urgency
	}
	if next.BudgetText != "" {
		out.BudgetText = next.BudgetText
	}
	if next.ItemHint != "" {
		out.ItemHint = next.ItemHint
	}
	return out
}

// #endregion

// #region cues

// Cue is a conversational signal detected in a turn.
type Cue string

const (
	CueReference  Cue = "reference"
	CueVerify     Cue = "verify"
	CueReject     Cue = "reject"
	CueSatisfied  Cue = "satisfied"
	CueSupervisor Cue = "supervisor"
)

// FollowUpSignal is the TextUnderstander verdict on a turn's relation to
// the previous answer.
type FollowUpSignal struct {
	IsFollowUp bool  `json:"isFollowUp"`
	Cues       []Cue `json:"cues"`
}

// Has reports whether cue was detected.
func (f FollowUpSignal) Has(cue Cue) bool {
	for _, c := range f.Cues {
		if c == cue {
			return true
		}
	}
	return false
}

// #endregion

// #region restriction

// RestrictionCategory groups goods the carrier will not accept on a
// standard rate.
type RestrictionCategory string

const (
	RestrictionPerishable RestrictionCategory = "perishable"
	RestrictionHazardous  RestrictionCategory = "hazardous"
	RestrictionLiving     RestrictionCategory = "living"
)

// Restriction is the restricted-goods verdict for a turn.
type Restriction struct {
	Detected bool                `json:"detected"`
	Category RestrictionCategory `json:"category,omitempty"`
	Terms    []string            `json:"terms,omitempty"`
}

// #endregion

// #region screen

// Screen is the verdict of the input screen that runs before any
// understanding backend sees the text.
type Screen string

const (
	ScreenClear     Screen = ""
	ScreenInjection Screen = "prompt_injection"
	ScreenOffTopic  Screen = "off_topic"
)

// #endregion

// #region rate-row

// RateRow is one rate-table row. Immutable once returned by a rate service.
type RateRow struct {
	Zone     int                `json:"zone"`
	WeightLb int                `json:"weightLb"`
	Prices   map[string]float64 `json:"prices"`
}

// Clone returns a copy with its own price map.
func (r RateRow) Clone() RateRow {
	prices := make(map[string]float64, len(r.Prices))
	for k, v := range r.Prices {
		prices[k] = v
	}
	r.Prices = prices
	return r
}

// #endregion

// #region recommendation

// Recommendation is a selected service with its cost and rationale.
type Recommendation struct {
	Service            string  `json:"service"`
	CostUSD            float64 `json:"costUsd"`
	DeliveryDays       int     `json:"deliveryDays"`
	DeliveryWindow     string  `json:"deliveryWindow,omitempty"`
	Tier               Urgency `json:"tier"`
	Rationale          string  `json:"rationale"`
	EscalationRequired bool    `json:"escalationRequired"`
	OverBudget         bool    `json:"overBudget"`
}

// #endregion

// #region reflection

// Check is one named verification check run during reflection.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// ReflectionResult is the outcome of re-examining a recommendation.
// Transient; never stored past the turn that produced it.
type ReflectionResult struct {
	Verified           bool            `json:"verified"`
	Explanation        string          `json:"explanation"`
	EscalationRequired bool            `json:"escalationRequired"`
	Confidence         float64         `json:"confidence"`
	Checks             []Check         `json:"checks"`
	Original           Recommendation  `json:"original"`
	Correction         *Recommendation `json:"correction,omitempty"`
	NextBest           *Recommendation `json:"nextBest,omitempty"`
	CheaperInBudget    *Recommendation `json:"cheaperInBudget,omitempty"`
}

// #endregion

// #region escalation

// Decision is the supervisory verdict on an escalated case.
type Decision string

const (
	DecisionApproved         Decision = "approved"
	DecisionModified         Decision = "modified"
	DecisionEscalatedFurther Decision = "escalatedFurther"
)

// EscalationReason records why a case reached escalation.
type EscalationReason string

const (
	ReasonReflection        EscalationReason = "reflection"
	ReasonSupervisorRequest EscalationReason = "supervisor_request"
	ReasonHighCost          EscalationReason = "high_cost"
)

// EscalationDecision is the terminal artifact of an escalated turn.
type EscalationDecision struct {
	Decision     Decision         `json:"decision"`
	Reason       EscalationReason `json:"reason"`
	Final        *Recommendation  `json:"final,omitempty"`
	Alternatives []Recommendation `json:"alternatives"`
	FinalMessage string           `json:"finalMessage"`
}

// #endregion

// #region clone-helpers

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// #endregion
