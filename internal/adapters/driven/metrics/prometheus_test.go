package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// family returns the gathered metric family with the given name.
func family(t *testing.T, r *Recorder, name string) *dto.MetricFamily {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

// counter returns the value of the counter whose labels match.
func counter(t *testing.T, r *Recorder, name string, labels map[string]string) float64 {
	t.Helper()
	for _, m := range family(t, r, name).GetMetric() {
		if matches(m, labels) {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range m.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok {
			if want != lp.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestRecorder_ObserveAttempt(t *testing.T) {
	r := NewRecorder()

	r.ObserveAttempt("ollama", driven.OutcomeFailure, 100*time.Millisecond)
	r.ObserveAttempt("ollama", driven.OutcomeFailure, 200*time.Millisecond)
	r.ObserveAttempt("openai", driven.OutcomeSkipped, 0)
	r.ObserveAttempt("offline", driven.OutcomeSuccess, time.Millisecond)

	assert.Equal(t, 2.0, counter(t, r, "drafter_provider_attempts_total",
		map[string]string{"provider": "ollama", "outcome": "failure"}))
	assert.Equal(t, 1.0, counter(t, r, "drafter_provider_attempts_total",
		map[string]string{"provider": "openai", "outcome": "skipped"}))

	hist := family(t, r, "drafter_provider_attempt_duration_seconds")
	var samples uint64
	for _, m := range hist.GetMetric() {
		samples += m.GetHistogram().GetSampleCount()
	}
	assert.Equal(t, uint64(3), samples, "skips are not timed")
}

func TestRecorder_ObserveGeneration(t *testing.T) {
	r := NewRecorder()

	r.ObserveGeneration("openai", true, time.Second, 0.25)
	r.ObserveGeneration("", false, time.Second, 0)

	assert.Equal(t, 1.0, counter(t, r, "drafter_generations_total",
		map[string]string{"provider": "openai", "status": "success"}))
	assert.Equal(t, 1.0, counter(t, r, "drafter_generations_total",
		map[string]string{"provider": "none", "status": "failure"}))
	assert.InDelta(t, 0.25, counter(t, r, "drafter_generation_cost_usd_total",
		map[string]string{"provider": "openai"}), 1e-12)
}

func TestRecorder_ObserveBreaker(t *testing.T) {
	r := NewRecorder()

	r.ObserveBreaker("open")
	r.ObserveBreaker("rejected")
	r.ObserveBreaker("rejected")

	assert.Equal(t, 1.0, counter(t, r, "drafter_breaker_events_total", map[string]string{"event": "open"}))
	assert.Equal(t, 2.0, counter(t, r, "drafter_breaker_events_total", map[string]string{"event": "rejected"}))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveBreaker("open")

	server := httptest.NewServer(r.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `drafter_breaker_events_total{event="open"} 1`)
}

func TestNewRecorder_Independent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.ObserveBreaker("open")

	assert.Equal(t, 1.0, counter(t, a, "drafter_breaker_events_total", map[string]string{"event": "open"}))
	families, err := b.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.NotEqual(t, "drafter_breaker_events_total", f.GetName())
	}
}
