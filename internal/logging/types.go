package logging

import (
	"time"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
)

// #region entry

// Entry is a single row in the turn_log table.
type Entry struct {
	ID        string               `json:"id"`
	SessionID string               `json:"sessionId"`
	Seq       int                  `json:"seq"`
	Text      string               `json:"text"`
	Kind      orchestrator.Kind    `json:"kind"`
	Service   string               `json:"service,omitempty"`
	CostUSD   float64              `json:"costUsd,omitempty"`
	Path      []orchestrator.State `json:"path"`
	Notes     []string             `json:"notes,omitempty"`
	Reply     string               `json:"reply"`
	Total     time.Duration        `json:"totalNs"`
	CreatedAt time.Time            `json:"createdAt"`
}

// #endregion

// #region kind-share

// KindShare is the decay-weighted share of turns that ended in one kind.
type KindShare struct {
	Kind   orchestrator.Kind `json:"kind"`
	Count  int               `json:"count"`
	Weight float64           `json:"weight"` // 0..1 across all kinds
}

// #endregion
