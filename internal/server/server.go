// Package server exposes the advisor over HTTP.
package server

// #region imports
import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/rate-advisor/internal/logging"
	"github.com/danielpatrickdp/rate-advisor/internal/metrics"
	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
)

// #endregion

// #region deps

// TurnHistory is the read side of the turn log.
type TurnHistory interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]logging.Entry, error)
	Shares(ctx context.Context) ([]logging.KindShare, error)
}

// Server holds the HTTP handlers' collaborators.
type Server struct {
	orch     *orchestrator.Orchestrator
	history  TurnHistory
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	newID    func() string
}

// Option configures a Server.
type Option func(*Server)

// WithHistory serves turn history and kind shares from h.
func WithHistory(h TurnHistory) Option {
	return func(s *Server) { s.history = h }
}

// WithMetrics instruments routes and serves /metrics from g.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l.With().Str("component", "http").Logger() }
}

// WithIDs replaces the session id generator.
func WithIDs(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// New creates a server around orch.
func New(orch *orchestrator.Orchestrator, opts ...Option) *Server {
	s := &Server{orch: orch, logger: zerolog.Nop(), newID: newSessionID}
	for _, o := range opts {
		o(s)
	}
	return s
}

// #endregion

// #region routes

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.createSession)
		r.Get("/sessions/{id}", s.getSession)
		r.Delete("/sessions/{id}", s.endSession)
		r.Post("/sessions/{id}/turns", s.postTurn)
		r.Get("/sessions/{id}/turns", s.listTurns)
		r.Get("/stats", s.stats)
	})
	return r
}

// #endregion
