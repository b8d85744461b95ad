package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
	"github.com/danielpatrickdp/rate-advisor/internal/recommend"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a rate table
// and a set of scripted conversations with the outcome expected per turn.
type Fixture struct {
	Description   string                `json:"description"`
	Config        FixtureConfig         `json:"config"`
	Rates         []shipping.RateRow    `json:"rates"`
	Conversations []FixtureConversation `json:"conversations"`
}

// FixtureConfig overrides orchestrator defaults. Zero values keep the default.
type FixtureConfig struct {
	Mode                 string  `json:"mode"`
	HighCostThreshold    float64 `json:"high_cost_threshold"`
	AutoEscalateHighCost *bool   `json:"auto_escalate_high_cost"`
	TurnTimeoutMS        int     `json:"turn_timeout_ms"`
}

// FixtureConversation is one session's scripted turns.
type FixtureConversation struct {
	Session string        `json:"session"`
	Turns   []FixtureTurn `json:"turns"`
}

// FixtureTurn is a user message and what the advisor should do with it.
// Empty expectations are not checked.
type FixtureTurn struct {
	Text     string            `json:"text"`
	Kind     orchestrator.Kind `json:"expect_kind"`
	Service  string            `json:"expect_service,omitempty"`
	Decision shipping.Decision `json:"expect_decision,omitempty"`
	Missing  []string          `json:"expect_missing,omitempty"`
	Notes    []string          `json:"expect_notes,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, c := range f.Conversations {
		if c.Session == "" {
			return nil, fmt.Errorf("parse fixture %s: conversation %d has no session", path, i)
		}
	}
	return &f, nil
}

// ToConfig applies the fixture overrides to the orchestrator defaults.
func (fc FixtureConfig) ToConfig() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	if fc.Mode != "" {
		cfg.Mode = orchestrator.Mode(fc.Mode)
	}
	if fc.HighCostThreshold > 0 {
		cfg.Policy = recommend.Policy{
			HighCostThreshold:    fc.HighCostThreshold,
			AutoEscalateHighCost: cfg.Policy.AutoEscalateHighCost,
		}
	}
	if fc.AutoEscalateHighCost != nil {
		cfg.Policy.AutoEscalateHighCost = *fc.AutoEscalateHighCost
	}
	if fc.TurnTimeoutMS > 0 {
		cfg.TurnTimeout = time.Duration(fc.TurnTimeoutMS) * time.Millisecond
	}
	return cfg
}

// #endregion fixture-loader
