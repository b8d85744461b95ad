package replay

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// helper: one-row rate table for Los Angeles at 15 lb.
func laFixture(turns ...FixtureTurn) *Fixture {
	return &Fixture{
		Rates: []shipping.RateRow{{Zone: 2, WeightLb: 15, Prices: map[string]float64{
			shipping.ExpressSaver: 21.30, shipping.StandardOvernight: 55.80,
		}}},
		Conversations: []FixtureConversation{{Session: "s1", Turns: turns}},
	}
}

type recorder struct{ n int }

func (r *recorder) ObserveTurn(context.Context, string, orchestrator.TurnResult) { r.n++ }

func TestReplay_Mismatch(t *testing.T) {
	f := laFixture(FixtureTurn{
		Text:    "Ship a 15 lb package to Los Angels",
		Kind:    orchestrator.KindRecommended,
		Service: shipping.StandardOvernight,
		Notes:   []string{orchestrator.NoteHighCost},
	})

	results, _ := Replay(context.Background(), f)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Passed {
		t.Fatal("expected mismatch")
	}
	if r.Service != shipping.ExpressSaver {
		t.Errorf("service = %q", r.Service)
	}
	if len(r.Mismatches) != 2 {
		t.Errorf("expected service and note mismatches, got %v", r.Mismatches)
	}
}

func TestReplay_EmptyExpectationsPass(t *testing.T) {
	f := laFixture(FixtureTurn{Text: "hello there"})
	results, _ := Replay(context.Background(), f)
	if !results[0].Passed {
		t.Errorf("unchecked turn failed: %v", results[0].Mismatches)
	}
}

func TestReplay_SessionsAreIsolated(t *testing.T) {
	f := laFixture(FixtureTurn{Text: "Ship a 15 lb package to Los Angels", Kind: orchestrator.KindRecommended})
	f.Conversations = append(f.Conversations, FixtureConversation{
		Session: "s2",
		Turns:   []FixtureTurn{{Text: "are you sure?", Kind: orchestrator.KindInsufficientInfo}},
	})

	results, _ := Replay(context.Background(), f)
	for _, r := range results {
		if !r.Passed {
			t.Errorf("%s: %v", r.Session, r.Mismatches)
		}
	}
}

func TestReplay_PassesOptions(t *testing.T) {
	rec := &recorder{}
	f := laFixture(
		FixtureTurn{Text: "Ship a 15 lb package to Los Angels"},
		FixtureTurn{Text: "are you sure?"},
	)
	Replay(context.Background(), f, orchestrator.WithObserver(rec))
	if rec.n != 2 {
		t.Errorf("observer saw %d turns, want 2", rec.n)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Kind: orchestrator.KindRecommended, Passed: true},
		{Kind: orchestrator.KindRecommended, Passed: false},
		{Kind: orchestrator.KindReflected, Passed: true},
	}
	s := Summarize(results, nil)
	if s.TotalTurns != 3 || s.Passed != 2 || s.Failed != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.ByKind[orchestrator.KindRecommended] != 2 {
		t.Errorf("recommended = %d", s.ByKind[orchestrator.KindRecommended])
	}
	if s.RateCalls != 0 {
		t.Errorf("rate calls = %d", s.RateCalls)
	}
}
