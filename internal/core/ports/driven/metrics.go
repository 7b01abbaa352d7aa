package driven

import "time"

// Attempt outcomes reported to a MetricsRecorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// MetricsRecorder receives generation telemetry.
// This is an optional service - when nil, no metrics are recorded.
type MetricsRecorder interface {
	// ObserveAttempt records one provider call or skip.
	ObserveAttempt(provider, outcome string, duration time.Duration)

	// ObserveGeneration records the end of a generate call.
	ObserveGeneration(provider string, success bool, duration time.Duration, cost float64)

	// ObserveBreaker records a circuit breaker state change ("open", "half_open", "closed")
	// or a refused call ("rejected").
	ObserveBreaker(event string)
}
