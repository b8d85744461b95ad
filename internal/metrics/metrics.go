// Package metrics exposes advisor counters and histograms to Prometheus.
package metrics

// #region imports
import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
	"github.com/danielpatrickdp/rate-advisor/internal/resilience"
)

// #endregion

// #region metrics

// Metrics holds every collector the advisor exports.
type Metrics struct {
	Turns          *prometheus.CounterVec
	TurnDuration   *prometheus.HistogramVec
	StepDuration   *prometheus.HistogramVec
	Escalations    *prometheus.CounterVec
	Fallbacks      *prometheus.CounterVec
	BreakerState   prometheus.Gauge
	ActiveSessions prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Turns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_turns_total",
				Help: "Processed conversation turns by result kind",
			},
			[]string{"kind"},
		),
		TurnDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_turn_duration_seconds",
				Help:    "End-to-end turn latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"kind"},
		),
		StepDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_step_duration_seconds",
				Help:    "Pipeline step latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"step"},
		),
		Escalations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_escalations_total",
				Help: "Escalation decisions by reason and outcome",
			},
			[]string{"reason", "decision"},
		),
		Fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_nlu_fallbacks_total",
				Help: "Remote understander calls answered by the keyword backend",
			},
			[]string{"op"},
		),
		BreakerState: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_nlu_breaker_state",
				Help: "Remote understander breaker: 0 closed, 1 open, 2 half-open",
			},
		),
		ActiveSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_active_sessions",
				Help: "Sessions currently held in memory",
			},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "advisor_http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
			},
			[]string{"method", "route"},
		),
	}
}

// #endregion

// #region observers

// ObserveTurn implements orchestrator.Observer.
func (m *Metrics) ObserveTurn(_ context.Context, _ string, res orchestrator.TurnResult) {
	kind := string(res.Kind)
	m.Turns.WithLabelValues(kind).Inc()
	m.TurnDuration.WithLabelValues(kind).Observe(res.Total.Seconds())
	for _, st := range res.Timing {
		m.StepDuration.WithLabelValues(st.Step).Observe(st.Duration.Seconds())
	}
	if e := res.Escalation; e != nil {
		m.Escalations.WithLabelValues(string(e.Reason), string(e.Decision)).Inc()
	}
}

// Degraded counts a fallback to the keyword backend. It matches
// understand.OnDegrade.
func (m *Metrics) Degraded(op string) {
	m.Fallbacks.WithLabelValues(op).Inc()
}

// BreakerChanged tracks breaker transitions. It matches
// resilience.Breaker.OnStateChange.
func (m *Metrics) BreakerChanged(s resilience.State) {
	m.BreakerState.Set(float64(s))
}

// #endregion

// #region http

// Middleware records per-route request counts and latency. The route label
// is the chi pattern, so ids never blow up cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// #endregion
