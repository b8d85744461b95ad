package config

// #region imports
import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
)

// #endregion

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "advisor.yaml"

// #region load

// Load reads DefaultConfigFile.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config built from defaults, the YAML file at path and
// ADVISOR_* environment variables. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, path); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return &cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays non-empty environment variables onto cfg.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "ADVISOR_ADDR")
	setDuration(&cfg.Server.ShutdownTimeout, "ADVISOR_SHUTDOWN_TIMEOUT")

	setString(&cfg.Logging.Level, "ADVISOR_LOG_LEVEL")
	setString(&cfg.Logging.Format, "ADVISOR_LOG_FORMAT")
	setString(&cfg.Logging.Service, "ADVISOR_LOG_SERVICE")

	setString(&cfg.Rates.DBPath, "ADVISOR_RATES_DB")
	setString(&cfg.Rates.CSVPath, "ADVISOR_RATES_CSV")
	setInt64(&cfg.Rates.CacheItems, "ADVISOR_RATES_CACHE_ITEMS")
	setDuration(&cfg.Rates.CacheTTL, "ADVISOR_RATES_CACHE_TTL")
	setInt64(&cfg.Zones.CacheItems, "ADVISOR_ZONES_CACHE_ITEMS")
	setDuration(&cfg.Zones.CacheTTL, "ADVISOR_ZONES_CACHE_TTL")

	setString(&cfg.NLU.Addr, "ADVISOR_NLU_ADDR")
	setDuration(&cfg.NLU.Timeout, "ADVISOR_NLU_TIMEOUT")
	setInt(&cfg.Breaker.MaxFailures, "ADVISOR_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Cooldown, "ADVISOR_BREAKER_COOLDOWN")

	setDuration(&cfg.Session.TTL, "ADVISOR_SESSION_TTL")
	setInt(&cfg.Session.MaxHistory, "ADVISOR_SESSION_MAX_HISTORY")
	setDuration(&cfg.Session.JanitorInterval, "ADVISOR_SESSION_JANITOR_INTERVAL")

	setDuration(&cfg.Orchestrator.TurnTimeout, "ADVISOR_TURN_TIMEOUT")
	setString(&cfg.Orchestrator.Mode, "ADVISOR_MODE")
	setFloat64(&cfg.Orchestrator.HighCostThreshold, "ADVISOR_HIGH_COST_THRESHOLD")
	setBool(&cfg.Orchestrator.AutoEscalateHighCost, "ADVISOR_AUTO_ESCALATE_HIGH_COST")

	setString(&cfg.TurnLog.Path, "ADVISOR_TURN_LOG")
}

// #endregion

// #region validate

// Validate rejects settings the advisor cannot run with.
func Validate(cfg *Config) error {
	if cfg.Rates.DBPath == "" {
		return errors.New("rates.db_path is required")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if cfg.Session.MaxHistory < 1 {
		return errors.New("session.max_history must be >= 1")
	}
	if cfg.Orchestrator.TurnTimeout <= 0 {
		return errors.New("orchestrator.turn_timeout must be positive")
	}
	switch orchestrator.Mode(cfg.Orchestrator.Mode) {
	case orchestrator.ModeInteractive, orchestrator.ModeAutomatic:
	default:
		return fmt.Errorf("orchestrator.mode %q: want interactive or automatic", cfg.Orchestrator.Mode)
	}
	if cfg.Orchestrator.HighCostThreshold < 0 {
		return errors.New("orchestrator.high_cost_threshold must be >= 0")
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q: want json or console", cfg.Logging.Format)
	}
	return nil
}

// #endregion

// #region env-helpers

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// #endregion
