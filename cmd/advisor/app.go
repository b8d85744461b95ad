package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/rate-advisor/internal/codec"
	"github.com/danielpatrickdp/rate-advisor/internal/config"
	"github.com/danielpatrickdp/rate-advisor/internal/lexicon"
	"github.com/danielpatrickdp/rate-advisor/internal/logging"
	"github.com/danielpatrickdp/rate-advisor/internal/metrics"
	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
	"github.com/danielpatrickdp/rate-advisor/internal/rates"
	"github.com/danielpatrickdp/rate-advisor/internal/resilience"
	"github.com/danielpatrickdp/rate-advisor/internal/session"
	"github.com/danielpatrickdp/rate-advisor/internal/understand"
	"github.com/danielpatrickdp/rate-advisor/internal/zone"
)

// #region app

// app is the fully wired advisor shared by chat and serve.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	orch     *orchestrator.Orchestrator
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	turnLog  *logging.TurnLog
	closers  []func()
}

// Close releases everything buildApp opened, last first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// loadConfig reads the config file and builds the root logger.
func loadConfig(path, level string, w io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if level != "" {
		cfg.Logging.Level = level
	}
	logger, err := logging.New(w, cfg.Logging)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

// buildApp opens the rate table, zone and rate caches, the understander
// chain, metrics and the optional turn log, and wires the orchestrator.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	rateSvc, err := a.openRates(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	tbl := zone.NewTable()
	zones, err := zone.NewCached(tbl, cfg.Zones.CacheItems, cfg.Zones.CacheTTL)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("zone cache: %w", err)
	}
	a.closers = append(a.closers, zones.Close)

	u, err := a.understander(lexicon.New(lexicon.WithPlaces(tbl.Names())))
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithObserver(a.metrics),
	}
	if cfg.TurnLog.Path != "" {
		tl, err := logging.OpenTurnLog(cfg.TurnLog.Path, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.turnLog = tl
		a.closers = append(a.closers, func() { _ = tl.Close() })
		opts = append(opts, orchestrator.WithObserver(tl))
	}

	a.orch = orchestrator.New(u, zones, rateSvc, session.NewStore(cfg.SessionConfig()), cfg.OrchestratorConfig(), opts...)
	return a, nil
}

func (a *app) openRates(ctx context.Context) (orchestrator.RateQueryService, error) {
	store, err := rates.OpenStore(a.cfg.Rates.DBPath)
	if err != nil {
		return nil, fmt.Errorf("rate store: %w", err)
	}
	a.closers = append(a.closers, func() { _ = store.Close() })

	if a.cfg.Rates.CSVPath != "" {
		n, err := store.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count rates: %w", err)
		}
		if n == 0 {
			loaded, err := loadCSVFile(ctx, store, a.cfg.Rates.CSVPath)
			if err != nil {
				return nil, err
			}
			a.logger.Info().Int("rows", loaded).Str("csv", a.cfg.Rates.CSVPath).Msg("seeded rate table")
		}
	}

	cached, err := rates.NewCached(store, a.cfg.Rates.CacheItems, a.cfg.Rates.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("rate cache: %w", err)
	}
	a.closers = append(a.closers, cached.Close)
	return cached, nil
}

// understander returns the keyword backend alone, or fronted by the remote
// one behind a breaker when an NLU address is configured.
func (a *app) understander(local *lexicon.Understander) (orchestrator.TextUnderstander, error) {
	if a.cfg.NLU.Addr == "" {
		return local, nil
	}
	client, err := codec.NewClient(a.cfg.NLU.Addr)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	breaker := resilience.NewBreaker(a.cfg.Breaker.MaxFailures, a.cfg.Breaker.Cooldown)
	breaker.OnStateChange(func(s resilience.State) {
		a.metrics.BreakerChanged(s)
		a.logger.Warn().Str("state", s.String()).Msg("nlu breaker")
	})
	return understand.NewFallback(client, local, breaker,
		understand.WithLogger(a.logger),
		understand.WithCallTimeout(a.cfg.NLU.Timeout),
		understand.OnDegrade(a.metrics.Degraded),
	), nil
}

func loadCSVFile(ctx context.Context, store *rates.SQLiteStore, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	n, err := store.LoadCSV(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("load csv %s: %w", path, err)
	}
	return n, nil
}

// #endregion
