// Package config loads advisor settings. Precedence: defaults < YAML file <
// environment variables.
package config

// #region imports
import (
	"time"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
	"github.com/danielpatrickdp/rate-advisor/internal/recommend"
	"github.com/danielpatrickdp/rate-advisor/internal/session"
)

// #endregion

// #region config

// Config holds all runtime configuration for the advisor.
type Config struct {
	Server       Server       `yaml:"server"`
	Logging      Logging      `yaml:"logging"`
	Rates        Rates        `yaml:"rates"`
	Zones        Zones        `yaml:"zones"`
	NLU          NLU          `yaml:"nlu"`
	Breaker      Breaker      `yaml:"breaker"`
	Session      Session      `yaml:"session"`
	Orchestrator Orchestrator `yaml:"orchestrator"`
	TurnLog      TurnLog      `yaml:"turn_log"`
}

// Server holds HTTP settings.
type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Logging holds logger settings.
type Logging struct {
	Level   string `yaml:"level"`  // trace | debug | info | warn | error
	Format  string `yaml:"format"` // json | console
	Service string `yaml:"service"`
}

// Rates points at the rate table.
type Rates struct {
	DBPath     string        `yaml:"db_path"`
	CSVPath    string        `yaml:"csv_path"` // loaded on startup when the table is empty
	CacheItems int64         `yaml:"cache_items"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// Zones tunes the location cache.
type Zones struct {
	CacheItems int64         `yaml:"cache_items"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// NLU configures the optional remote text understander. Empty Addr means
// the keyword backend only.
type NLU struct {
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// Breaker guards the remote understander.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// Session tunes conversation lifetime.
type Session struct {
	TTL             time.Duration `yaml:"ttl"`
	MaxHistory      int           `yaml:"max_history"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
}

// Orchestrator tunes turn handling.
type Orchestrator struct {
	TurnTimeout          time.Duration `yaml:"turn_timeout"`
	Mode                 string        `yaml:"mode"` // interactive | automatic
	HighCostThreshold    float64       `yaml:"high_cost_threshold"`
	AutoEscalateHighCost bool          `yaml:"auto_escalate_high_cost"`
}

// TurnLog configures the SQLite turn log. Empty Path disables it.
type TurnLog struct {
	Path string `yaml:"path"`
}

// #endregion

// #region defaults

// Defaults returns the built-in configuration.
func Defaults() Config {
	pol := recommend.DefaultPolicy()
	sess := session.DefaultConfig()
	orch := orchestrator.DefaultConfig()
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: Logging{
			Level:   "info",
			Format:  "json",
			Service: "rate-advisor",
		},
		Rates: Rates{
			DBPath:     "fedex_rates.db",
			CacheItems: 10_000,
			CacheTTL:   15 * time.Minute,
		},
		Zones: Zones{
			CacheItems: 5_000,
			CacheTTL:   time.Hour,
		},
		NLU: NLU{
			Timeout: 2 * time.Second,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Cooldown:    30 * time.Second,
		},
		Session: Session{
			TTL:             sess.TTL,
			MaxHistory:      sess.MaxHistory,
			JanitorInterval: time.Minute,
		},
		Orchestrator: Orchestrator{
			TurnTimeout:          orch.TurnTimeout,
			Mode:                 string(orch.Mode),
			HighCostThreshold:    pol.HighCostThreshold,
			AutoEscalateHighCost: pol.AutoEscalateHighCost,
		},
	}
}

// #endregion

// #region conversions

// SessionConfig converts to the session store's settings.
func (c Config) SessionConfig() session.Config {
	return session.Config{TTL: c.Session.TTL, MaxHistory: c.Session.MaxHistory}
}

// OrchestratorConfig converts to the orchestrator's settings.
func (c Config) OrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		TurnTimeout: c.Orchestrator.TurnTimeout,
		Mode:        orchestrator.Mode(c.Orchestrator.Mode),
		Policy: recommend.Policy{
			HighCostThreshold:    c.Orchestrator.HighCostThreshold,
			AutoEscalateHighCost: c.Orchestrator.AutoEscalateHighCost,
		},
	}
}

// #endregion
