package replay

import (
	"context"
	"fmt"
	"slices"

	"github.com/danielpatrickdp/rate-advisor/internal/lexicon"
	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
	"github.com/danielpatrickdp/rate-advisor/internal/rates"
	"github.com/danielpatrickdp/rate-advisor/internal/session"
	"github.com/danielpatrickdp/rate-advisor/internal/zone"
)

// #region types
// Result captures the outcome of replaying one scripted turn.
type Result struct {
	Session  string
	Index    int
	Text     string
	Kind     orchestrator.Kind
	Service  string // "" when the turn produced no recommendation
	Decision string // "" when the turn was not escalated
	Reply    string
	Notes    []string

	Passed     bool
	Mismatches []string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns int
	Passed     int
	Failed     int
	ByKind     map[orchestrator.Kind]int
	RateCalls  int
}

// #endregion types

// #region replay
// Replay runs every conversation in f through a fresh in-memory advisor
// backed by the fixture's rate table. Conversations share the orchestrator
// but never a session. opts are passed through to the orchestrator.
func Replay(ctx context.Context, f *Fixture, opts ...orchestrator.Option) ([]Result, *rates.Static) {
	tbl := zone.NewTable()
	svc := rates.NewStatic(f.Rates...)
	orch := orchestrator.New(
		lexicon.New(lexicon.WithPlaces(tbl.Names())),
		tbl,
		svc,
		session.NewStore(session.DefaultConfig()),
		f.Config.ToConfig(),
		opts...,
	)

	var results []Result
	for _, conv := range f.Conversations {
		for i, turn := range conv.Turns {
			res := orch.ProcessTurn(ctx, conv.Session, turn.Text)
			results = append(results, check(conv.Session, i, turn, res))
		}
	}
	return results, svc
}

// check compares a turn result against the fixture's expectations.
func check(sessionID string, i int, want FixtureTurn, got orchestrator.TurnResult) Result {
	r := Result{
		Session: sessionID,
		Index:   i,
		Text:    want.Text,
		Kind:    got.Kind,
		Reply:   got.ReplyText,
		Notes:   got.Notes,
	}
	if got.Recommendation != nil {
		r.Service = got.Recommendation.Service
	}
	if got.Escalation != nil {
		r.Decision = string(got.Escalation.Decision)
		if got.Escalation.Final != nil {
			r.Service = got.Escalation.Final.Service
		}
	}

	if want.Kind != "" && want.Kind != got.Kind {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("kind=%s, want %s", got.Kind, want.Kind))
	}
	if want.Service != "" && want.Service != r.Service {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("service=%q, want %q", r.Service, want.Service))
	}
	if want.Decision != "" && string(want.Decision) != r.Decision {
		r.Mismatches = append(r.Mismatches, fmt.Sprintf("decision=%q, want %q", r.Decision, want.Decision))
	}
	for _, m := range want.Missing {
		if !slices.Contains(got.Missing, m) {
			r.Mismatches = append(r.Mismatches, fmt.Sprintf("missing %v lacks %q", got.Missing, m))
		}
	}
	for _, n := range want.Notes {
		if !got.HasNote(n) {
			r.Mismatches = append(r.Mismatches, fmt.Sprintf("notes %v lack %q", got.Notes, n))
		}
	}
	r.Passed = len(r.Mismatches) == 0
	return r
}

// #endregion replay

// #region summarize
// Summarize computes aggregate stats from replay results.
func Summarize(results []Result, svc *rates.Static) Summary {
	s := Summary{
		TotalTurns: len(results),
		ByKind:     make(map[orchestrator.Kind]int),
	}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		s.ByKind[r.Kind]++
	}
	if svc != nil {
		s.RateCalls = svc.Calls()
	}
	return s
}

// #endregion summarize
