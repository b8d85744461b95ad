package session

// #region imports
import (
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region errors

var (
	// ErrNotFound is returned by strict lookups for unknown sessions.
	ErrNotFound = errors.New("session not found")
	// ErrSessionCorrupted means a turn left the session unusable; the
	// session has been discarded.
	ErrSessionCorrupted = errors.New("session corrupted")
)

// #endregion

// #region state

// State is everything one conversation remembers between turns.
type State struct {
	History              []shipping.Turn              `json:"history"`
	LastParameters       *shipping.ShippingParameters `json:"lastParameters,omitempty"`
	LastRecommendation   *shipping.Recommendation     `json:"lastRecommendation,omitempty"`
	LastRows             []shipping.RateRow           `json:"lastRows,omitempty"`
	Satisfaction         shipping.Satisfaction        `json:"satisfaction"`
	PendingClarification string                       `json:"pendingClarification,omitempty"`
	Pending              *shipping.Extraction         `json:"pending,omitempty"`
	CreatedAt            time.Time                    `json:"createdAt"`
	UpdatedAt            time.Time                    `json:"updatedAt"`
}

// NextSeq returns the sequence number for the next turn.
func (s State) NextSeq() int {
	if n := len(s.History); n > 0 {
		return s.History[n-1].Seq + 1
	}
	return 1
}

// Summary is a one-line description of the last answer, handed to text
// understanders as follow-up context.
func (s State) Summary() string {
	r := s.LastRecommendation
	if r == nil {
		return ""
	}
	out := fmt.Sprintf("recommended %s at $%.2f", r.Service, r.CostUSD)
	if p := s.LastParameters; p != nil {
		if p.Destination != nil {
			out += " to " + p.Destination.Display()
		}
		if p.WeightLb != nil {
			out += fmt.Sprintf(" for %g lb", *p.WeightLb)
		}
	}
	return out
}

// #endregion

// #region clone

// Clone returns a deep copy. Mutators always work on a clone so a failed
// turn leaves the stored state untouched.
func (s State) Clone() State {
	out := s
	if s.History != nil {
		out.History = append([]shipping.Turn(nil), s.History...)
	}
	if s.LastParameters != nil {
		p := s.LastParameters.Clone()
		out.LastParameters = &p
	}
	if s.LastRecommendation != nil {
		r := *s.LastRecommendation
		out.LastRecommendation = &r
	}
	if s.LastRows != nil {
		out.LastRows = make([]shipping.RateRow, len(s.LastRows))
		for i, row := range s.LastRows {
			out.LastRows[i] = row.Clone()
		}
	}
	if s.Pending != nil {
		e := s.Pending.Clone()
		out.Pending = &e
	}
	return out
}

// #endregion

// #region config

// Config tunes session lifetime.
type Config struct {
	TTL        time.Duration // idle sessions older than this are removed by Cleanup
	MaxHistory int           // oldest turns beyond this are dropped
}

// DefaultConfig mirrors a 30 minute idle timeout and 20 turns of history.
func DefaultConfig() Config {
	return Config{TTL: 30 * time.Minute, MaxHistory: 20}
}

// #endregion

// #region stats

// Stats summarizes the live session map.
type Stats struct {
	Sessions              int `json:"sessions"`
	Turns                 int `json:"turns"`
	WithRecommendation    int `json:"withRecommendation"`
	AwaitingClarification int `json:"awaitingClarification"`
}

// #endregion
