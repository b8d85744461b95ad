package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
)

// #region fixture-tests

// TestFixture_Conversations runs the regression conversations and requires
// every scripted turn to match. A lexicon or engine change that shifts an
// outcome shows up here first.
func TestFixture_Conversations(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "conversations.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, svc := Replay(context.Background(), f)

	want := 0
	for _, c := range f.Conversations {
		want += len(c.Turns)
	}
	if len(results) != want {
		t.Fatalf("expected %d results, got %d", want, len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("%s turn %d (%q): %v\nreply: %s", r.Session, r.Index, r.Text, r.Mismatches, r.Reply)
		}
	}

	s := Summarize(results, svc)
	if s.Failed != 0 {
		t.Errorf("expected 0 failures, got %d", s.Failed)
	}
	if s.ByKind[orchestrator.KindRecommended] != 6 {
		t.Errorf("expected 6 recommended turns, got %d", s.ByKind[orchestrator.KindRecommended])
	}
	if s.ByKind[orchestrator.KindBlocked] != 1 || s.ByKind[orchestrator.KindOffTopic] != 1 {
		t.Errorf("expected 1 blocked and 1 off-topic turn, got %v", s.ByKind)
	}
	if s.RateCalls != 7 {
		t.Errorf("expected 7 rate queries, got %d", s.RateCalls)
	}
}

func TestLoadFixture_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFixture(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"rates": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixture(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}

	anon := filepath.Join(dir, "anon.json")
	if err := os.WriteFile(anon, []byte(`{"conversations": [{"turns": [{"text": "hi"}]}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixture(anon); err == nil {
		t.Error("expected error for conversation without session")
	}
}

func TestFixtureConfig_ToConfig(t *testing.T) {
	def := FixtureConfig{}.ToConfig()
	if def != orchestrator.DefaultConfig() {
		t.Errorf("empty overrides changed defaults: %+v", def)
	}

	off := false
	cfg := FixtureConfig{
		Mode:                 "automatic",
		HighCostThreshold:    50,
		AutoEscalateHighCost: &off,
		TurnTimeoutMS:        250,
	}.ToConfig()
	if cfg.Mode != orchestrator.ModeAutomatic {
		t.Errorf("mode = %s", cfg.Mode)
	}
	if cfg.Policy.HighCostThreshold != 50 || cfg.Policy.AutoEscalateHighCost {
		t.Errorf("policy = %+v", cfg.Policy)
	}
	if cfg.TurnTimeout != 250*time.Millisecond {
		t.Errorf("timeout = %v", cfg.TurnTimeout)
	}
}

// #endregion fixture-tests
