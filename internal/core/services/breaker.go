package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// Default circuit breaker configuration.
const (
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 30 * time.Second
)

// BreakerTicket identifies a call admitted by Allow. Calls admitted while
// the breaker is closed share the zero ticket; each half-open probe gets
// its own.
type BreakerTicket uint64

// CircuitBreaker counts consecutive exhausted generate calls and refuses new
// calls once the count reaches its threshold.
//
// After the cooldown elapses a single probe call is admitted (half-open).
// A successful probe closes the breaker; a failed probe re-opens it and
// restarts the cooldown. A zero cooldown disables probing, so the breaker
// stays open until Reset.
type CircuitBreaker struct {
	mu        sync.Mutex
	failures  int
	threshold int
	cooldown  time.Duration
	openedAt  time.Time
	probe     BreakerTicket // outstanding probe, zero when none
	lastProbe BreakerTicket
	now       func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
// A threshold below one uses DefaultBreakerThreshold.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = DefaultBreakerThreshold
	}
	if cooldown < 0 {
		cooldown = 0
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. While half-open only one caller
// is admitted; it must report back with its ticket through RecordSuccess,
// RecordFailure or Cancel.
func (b *CircuitBreaker) Allow() (BreakerTicket, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return 0, true
	}
	if b.cooldown == 0 || b.probe != 0 || b.now().Sub(b.openedAt) < b.cooldown {
		return 0, false
	}
	b.lastProbe++
	b.probe = b.lastProbe
	return b.probe, true
}

func (b *CircuitBreaker) isProbe(t BreakerTicket) bool {
	return t != 0 && t == b.probe
}

// RecordSuccess closes the breaker and clears the failure count.
// It returns true if the breaker was tripped.
func (b *CircuitBreaker) RecordSuccess(BreakerTicket) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasTripped := b.failures >= b.threshold
	b.failures = 0
	b.probe = 0
	b.openedAt = time.Time{}
	return wasTripped
}

// RecordFailure counts one exhausted call. It returns true if this failure
// opened the breaker, either by reaching the threshold or by failing a probe.
// Only the outstanding probe's own ticket re-opens a half-open breaker.
func (b *CircuitBreaker) RecordFailure(t BreakerTicket) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasProbe := b.isProbe(t)
	if wasProbe {
		b.probe = 0
	}
	b.failures++

	if b.failures == b.threshold || (wasProbe && b.failures > b.threshold) {
		b.openedAt = b.now()
		return true
	}
	return false
}

// Cancel releases an admitted call without a verdict, such as when the
// caller gave up. The failure count is unchanged.
func (b *CircuitBreaker) Cancel(t BreakerTicket) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isProbe(t) {
		b.probe = 0
	}
}

// Reset closes the breaker regardless of its state.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probe = 0
	b.openedAt = time.Time{}
}

// State returns a snapshot of the breaker.
func (b *CircuitBreaker) State() domain.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := domain.BreakerState{
		Status:              domain.BreakerClosed,
		ConsecutiveFailures: b.failures,
		Threshold:           b.threshold,
		OpenedAt:            b.openedAt,
	}
	if b.failures >= b.threshold {
		state.Status = domain.BreakerOpen
		if b.probe != 0 || (b.cooldown > 0 && b.now().Sub(b.openedAt) >= b.cooldown) {
			state.Status = domain.BreakerHalfOpen
		}
	}
	return state
}
