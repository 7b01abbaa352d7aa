package domain

import "time"

// BreakerStatus is the state of a circuit breaker.
type BreakerStatus string

// Circuit breaker states.
const (
	// BreakerClosed admits every call.
	BreakerClosed BreakerStatus = "closed"

	// BreakerOpen refuses every call.
	BreakerOpen BreakerStatus = "open"

	// BreakerHalfOpen admits a single probe call after the cooldown.
	BreakerHalfOpen BreakerStatus = "half_open"
)

// String returns the string representation.
func (s BreakerStatus) String() string {
	return string(s)
}

// BreakerState is a snapshot of a circuit breaker.
type BreakerState struct {
	Status              BreakerStatus `json:"status"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	Threshold           int           `json:"threshold"`

	// OpenedAt is when the breaker last tripped; zero when it never has.
	OpenedAt time.Time `json:"opened_at,omitzero"`
}

// Tripped returns true if the breaker is refusing calls.
func (s BreakerState) Tripped() bool {
	return s.Status != BreakerClosed
}
