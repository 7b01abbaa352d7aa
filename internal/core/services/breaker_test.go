package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// allowed reports whether the breaker admits a call, dropping the ticket.
func allowed(b *CircuitBreaker) bool {
	_, ok := b.Allow()
	return ok
}

func TestCircuitBreaker_TripsAtThreshold(t *testing.T) {
	b := NewCircuitBreaker(3, 0)

	assert.True(t, allowed(b))
	assert.False(t, b.RecordFailure(0))
	assert.False(t, b.RecordFailure(0))
	assert.Equal(t, domain.BreakerClosed, b.State().Status)

	assert.True(t, b.RecordFailure(0), "third failure opens the breaker")
	assert.False(t, allowed(b))

	state := b.State()
	assert.Equal(t, domain.BreakerOpen, state.Status)
	assert.Equal(t, 3, state.ConsecutiveFailures)
	assert.Equal(t, 3, state.Threshold)
	assert.True(t, state.Tripped())
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	b := NewCircuitBreaker(3, 0)

	b.RecordFailure(0)
	b.RecordFailure(0)
	assert.False(t, b.RecordSuccess(0))
	assert.Zero(t, b.State().ConsecutiveFailures)

	b.RecordFailure(0)
	b.RecordFailure(0)
	assert.True(t, allowed(b), "a fresh streak needs the full threshold")
}

func TestCircuitBreaker_ZeroCooldownStaysOpenUntilReset(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(1, 0)
	b.now = clock.Now

	b.RecordFailure(0)
	clock.Advance(24 * time.Hour)
	assert.False(t, allowed(b))
	assert.Equal(t, domain.BreakerOpen, b.State().Status)

	b.Reset()
	assert.True(t, allowed(b))
	assert.Equal(t, domain.BreakerClosed, b.State().Status)
	assert.True(t, b.State().OpenedAt.IsZero())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(2, time.Minute)
	b.now = clock.Now

	b.RecordFailure(0)
	b.RecordFailure(0)
	openedAt := clock.Now()
	assert.False(t, allowed(b))

	clock.Advance(59 * time.Second)
	assert.False(t, allowed(b))

	clock.Advance(time.Second)
	assert.Equal(t, domain.BreakerHalfOpen, b.State().Status)
	probe, ok := b.Allow()
	assert.True(t, ok, "probe admitted after cooldown")
	assert.NotZero(t, probe)
	assert.False(t, allowed(b), "only one probe at a time")

	// Failed probe re-opens and restarts the cooldown
	assert.True(t, b.RecordFailure(probe))
	state := b.State()
	assert.Equal(t, domain.BreakerOpen, state.Status)
	assert.True(t, state.OpenedAt.After(openedAt))
	assert.False(t, allowed(b))

	clock.Advance(time.Minute)
	probe, ok = b.Allow()
	assert.True(t, ok)
	assert.True(t, b.RecordSuccess(probe), "successful probe closes a tripped breaker")
	assert.Equal(t, domain.BreakerClosed, b.State().Status)
	assert.True(t, allowed(b))
}

func TestCircuitBreaker_StragglerFailureDoesNotEndProbe(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(2, time.Minute)
	b.now = clock.Now

	// Admitted while closed, still running when the breaker trips.
	straggler, ok := b.Allow()
	assert.True(t, ok)
	b.RecordFailure(0)
	b.RecordFailure(0)
	tripped := b.State().OpenedAt

	clock.Advance(time.Minute)
	probe, ok := b.Allow()
	assert.True(t, ok)

	assert.False(t, b.RecordFailure(straggler), "only the probe re-opens the breaker")
	state := b.State()
	assert.Equal(t, domain.BreakerHalfOpen, state.Status)
	assert.Equal(t, tripped, state.OpenedAt)
	assert.False(t, allowed(b), "probe is still outstanding")

	b.Cancel(straggler)
	assert.False(t, allowed(b), "cancelling another ticket keeps the probe slot")

	assert.True(t, b.RecordFailure(probe))
	assert.Equal(t, domain.BreakerOpen, b.State().Status)
}

func TestCircuitBreaker_CancelReleasesProbe(t *testing.T) {
	clock := newFakeClock()
	b := NewCircuitBreaker(1, time.Second)
	b.now = clock.Now

	b.RecordFailure(0)
	clock.Advance(time.Second)

	probe, ok := b.Allow()
	assert.True(t, ok)
	b.Cancel(probe)
	assert.Equal(t, 1, b.State().ConsecutiveFailures)
	assert.True(t, allowed(b), "cancelled probe frees the slot")
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	b := NewCircuitBreaker(0, -time.Second)
	assert.Equal(t, DefaultBreakerThreshold, b.State().Threshold)
	assert.Zero(t, b.cooldown)
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	b := NewCircuitBreaker(1000, 0)
	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ticket, ok := b.Allow(); ok {
				b.RecordFailure(ticket)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, b.State().ConsecutiveFailures)
}
