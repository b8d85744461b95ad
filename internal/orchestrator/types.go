package orchestrator

// #region imports
import (
	"context"
	"time"

	"github.com/danielpatrickdp/rate-advisor/internal/recommend"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
	"github.com/danielpatrickdp/rate-advisor/internal/zone"
)

// #endregion

// #region collaborators

// TextUnderstander reads cues, slots and restricted goods out of free text.
type TextUnderstander interface {
	ClassifyFollowUp(ctx context.Context, text, priorSummary string) (shipping.FollowUpSignal, error)
	ExtractParameters(ctx context.Context, text string) (shipping.Extraction, error)
	DetectRestrictedGoods(ctx context.Context, text string) (shipping.Restriction, error)
}

// Screener vets raw text before any understanding backend sees it.
type Screener interface {
	Screen(text string) shipping.Screen
}

// ZoneResolver maps location text to a zone or zone.ErrUnresolvable.
type ZoneResolver interface {
	Resolve(ctx context.Context, text string) (zone.Resolution, error)
}

// RateQueryService returns rate rows; no data is an empty slice.
type RateQueryService interface {
	QueryRates(ctx context.Context, zone int, weightLb float64) ([]shipping.RateRow, error)
}

// #endregion

// #region intent

// Intent is the classifier's verdict on a turn.
type Intent string

const (
	IntentNewRequest       Intent = "new_request"
	IntentFollowUp         Intent = "follow_up"
	IntentInsufficientInfo Intent = "insufficient_info"
)

// Sentiment is the follow-up satisfaction estimate.
type Sentiment string

const (
	SentimentNeutral      Sentiment = "neutral"
	SentimentUnsure       Sentiment = "unsure"
	SentimentDissatisfied Sentiment = "dissatisfied"
)

// Classification is everything the classifier learned about a turn. The
// extraction already includes any pending partial request.
type Classification struct {
	Intent      Intent
	Sentiment   Sentiment
	Signal      shipping.FollowUpSignal
	Extraction  shipping.Extraction
	Restriction shipping.Restriction
}

// #endregion

// #region kind

// Kind is the outcome category of a turn.
type Kind string

const (
	KindRecommended      Kind = "recommended"
	KindReflected        Kind = "reflected"
	KindEscalated        Kind = "escalated"
	KindInsufficientInfo Kind = "insufficient_info"
	KindUnresolvable     Kind = "unresolvable"
	KindNoRatesFound     Kind = "no_rates_found"
	KindRestrictedGoods  Kind = "restricted_goods"
	KindBlocked          Kind = "blocked"
	KindOffTopic         Kind = "off_topic"
	KindTimeout          Kind = "timeout"
	KindUnavailable      Kind = "unavailable"
	KindSessionFailed    Kind = "session_failed"
)

// Failed reports whether the turn was rolled back.
func (k Kind) Failed() bool {
	return k == KindTimeout || k == KindUnavailable || k == KindSessionFailed
}

// Notes attached to a turn that did not change its kind.
const (
	NoteMalformedBudget   = "malformed_budget"
	NoteOriginUnresolved  = "origin_unresolved"
	NoteTierFallback      = "tier_fallback"
	NoteHighCost          = "high_cost"
	NoteVerifyRequested   = "verify_requested"
	NoteSupervisorRequest = "supervisor_request"
)

// #endregion

// #region result

// StepTiming is the wall time of one pipeline step.
type StepTiming struct {
	Step     string        `json:"step"`
	Duration time.Duration `json:"durationNs"`
}

// TurnResult is the only thing ProcessTurn hands back. It never carries a
// raw collaborator error.
type TurnResult struct {
	SessionID      string                       `json:"sessionId"`
	Seq            int                          `json:"seq,omitempty"`
	ReplyText      string                       `json:"replyText"`
	Kind           Kind                         `json:"kind"`
	Recommendation *shipping.Recommendation     `json:"recommendation,omitempty"`
	Secondary      *shipping.Recommendation     `json:"secondary,omitempty"`
	Parameters     *shipping.ShippingParameters `json:"parameters,omitempty"`
	Missing        []string                     `json:"missing,omitempty"`
	Restriction    *shipping.Restriction        `json:"restriction,omitempty"`
	Reflection     *shipping.ReflectionResult   `json:"reflection,omitempty"`
	Escalation     *shipping.EscalationDecision `json:"escalation,omitempty"`
	Timing         []StepTiming                 `json:"timing"`
	Total          time.Duration                `json:"totalNs"`
	Path           []State                      `json:"path"`
	Notes          []string                     `json:"notes,omitempty"`
	Retryable      bool                         `json:"retryable"`
}

// HasNote reports whether note was attached.
func (r TurnResult) HasNote(note string) bool {
	for _, n := range r.Notes {
		if n == note {
			return true
		}
	}
	return false
}

// #endregion

// #region config

// Mode controls whether the high-cost flag escalates on its own.
type Mode string

const (
	// ModeInteractive treats the high-cost flag as informational.
	ModeInteractive Mode = "interactive"
	// ModeAutomatic escalates high-cost recommendations without being asked.
	ModeAutomatic Mode = "automatic"
)

// Config tunes the orchestrator.
type Config struct {
	TurnTimeout time.Duration
	Mode        Mode
	Policy      recommend.Policy
}

// DefaultConfig is interactive with a 10s turn budget.
func DefaultConfig() Config {
	return Config{
		TurnTimeout: 10 * time.Second,
		Mode:        ModeInteractive,
		Policy:      recommend.DefaultPolicy(),
	}
}

// Observer sees every finished turn, after the session lock is released.
type Observer interface {
	ObserveTurn(ctx context.Context, text string, res TurnResult)
}

// #endregion
