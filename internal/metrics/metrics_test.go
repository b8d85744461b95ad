package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
	"github.com/danielpatrickdp/rate-advisor/internal/resilience"
	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

func TestObserveTurn(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTurn(context.Background(), "ship it", orchestrator.TurnResult{
		Kind:  orchestrator.KindRecommended,
		Total: 5 * time.Millisecond,
		Timing: []orchestrator.StepTiming{
			{Step: "classify", Duration: time.Millisecond},
			{Step: "rates", Duration: 2 * time.Millisecond},
		},
	})
	m.ObserveTurn(context.Background(), "too much", orchestrator.TurnResult{
		Kind: orchestrator.KindEscalated,
		Escalation: &shipping.EscalationDecision{
			Reason: shipping.ReasonReflection, Decision: shipping.DecisionApproved,
		},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("recommended")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("escalated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Escalations.WithLabelValues("reflection", "approved")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StepDuration))
}

func TestBreakerAndFallbackHooks(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.BreakerChanged(resilience.Open)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerState))
	m.BreakerChanged(resilience.Closed)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BreakerState))

	m.Degraded("extract_parameters")
	m.Degraded("extract_parameters")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("extract_parameters")))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/sessions/{id}", "404")))
}
