// Package metrics records generation telemetry with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

const namespace = "drafter"

// noProvider labels generations that failed before any provider succeeded.
const noProvider = "none"

// Recorder implements driven.MetricsRecorder on a dedicated registry.
type Recorder struct {
	registry *prometheus.Registry

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	generations     *prometheus.CounterVec
	genDuration     prometheus.Histogram
	cost            *prometheus.CounterVec
	breaker         *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry, so several recorders
// can coexist in tests.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Provider calls and skips by outcome.",
		}, []string{"provider", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_attempt_duration_seconds",
			Help:      "Duration of individual provider calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"provider"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Completed generate calls by serving provider and status.",
		}, []string{"provider", "status"}),
		genDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of whole generate calls, including retries and fallback.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
		cost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_cost_usd_total",
			Help:      "Estimated generation cost in USD.",
		}, []string{"provider"}),
		breaker: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_events_total",
			Help:      "Circuit breaker transitions and rejected calls.",
		}, []string{"event"}),
	}

	r.registry.MustRegister(
		r.attempts,
		r.attemptDuration,
		r.generations,
		r.genDuration,
		r.cost,
		r.breaker,
	)
	return r
}

// ObserveAttempt records one provider call or skip. Skips have no duration.
func (r *Recorder) ObserveAttempt(provider, outcome string, duration time.Duration) {
	r.attempts.WithLabelValues(provider, outcome).Inc()
	if outcome != driven.OutcomeSkipped {
		r.attemptDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// ObserveGeneration records the end of a generate call.
func (r *Recorder) ObserveGeneration(provider string, success bool, duration time.Duration, cost float64) {
	status := "success"
	if !success {
		status = "failure"
	}
	if provider == "" {
		provider = noProvider
	}
	r.generations.WithLabelValues(provider, status).Inc()
	r.genDuration.Observe(duration.Seconds())
	if cost > 0 {
		r.cost.WithLabelValues(provider).Add(cost)
	}
}

// ObserveBreaker records a circuit breaker event.
func (r *Recorder) ObserveBreaker(event string) {
	r.breaker.WithLabelValues(event).Inc()
}

// Registry returns the registry the metrics are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
