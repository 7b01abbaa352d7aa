package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
	"github.com/custodia-labs/drafter/internal/core/ports/driving"
	"github.com/custodia-labs/drafter/internal/logger"
)

// Ensure GenerationOrchestrator implements the interface.
var _ driving.GenerationService = (*GenerationOrchestrator)(nil)

// Breaker events reported to the metrics recorder.
const (
	breakerEventOpen     = "open"
	breakerEventClosed   = "closed"
	breakerEventRejected = "rejected"
)

// GenerationOrchestrator runs generate calls across an ordered list of
// providers with per-provider retries, fallback and a shared circuit breaker.
// It is safe for concurrent use.
type GenerationOrchestrator struct {
	providers   []driven.Provider
	maxRetries  int
	backoffUnit time.Duration
	breaker     *CircuitBreaker
	logger      logger.Logger
	metrics     driven.MetricsRecorder
}

// OrchestratorOption configures a GenerationOrchestrator.
type OrchestratorOption func(*GenerationOrchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(l logger.Logger) OrchestratorOption {
	return func(o *GenerationOrchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the recorder that receives attempt and breaker telemetry.
func WithMetrics(m driven.MetricsRecorder) OrchestratorOption {
	return func(o *GenerationOrchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// NewGenerationOrchestrator creates an orchestrator over providers, given in
// registration order. The primary provider is moved to the front and the
// offline provider to the back unless it is the primary. The offline
// provider must be registered; it is the fallback of last resort.
func NewGenerationOrchestrator(
	providers []driven.Provider,
	settings domain.OrchestratorSettings,
	opts ...OrchestratorOption,
) (*GenerationOrchestrator, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator settings: %w", err)
	}

	ordered, err := orderProviders(providers, settings.Primary)
	if err != nil {
		return nil, err
	}

	unit := settings.BackoffUnit
	if unit <= 0 {
		unit = time.Nanosecond
	}

	o := &GenerationOrchestrator{
		providers:   ordered,
		maxRetries:  settings.MaxRetries,
		backoffUnit: unit,
		breaker:     NewCircuitBreaker(settings.BreakerThreshold, settings.BreakerCooldown),
		logger:      logger.Default(),
		metrics:     noopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "orchestrator")
	return o, nil
}

func orderProviders(providers []driven.Provider, primary domain.ProviderKind) ([]driven.Provider, error) {
	var head, middle, tail []driven.Provider
	found := primary == ""
	for _, p := range providers {
		switch {
		case primary != "" && p.Name() == primary.String() && !found:
			head = append(head, p)
			found = true
		case p.Name() == domain.ProviderOffline.String():
			tail = append(tail, p)
		default:
			middle = append(middle, p)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: primary provider %q is not registered", domain.ErrInvalidInput, primary)
	}
	if len(tail) == 0 && primary != domain.ProviderOffline {
		return nil, fmt.Errorf("%w: %s provider is not registered", domain.ErrInvalidInput, domain.ProviderOffline)
	}

	ordered := make([]driven.Provider, 0, len(providers))
	ordered = append(ordered, head...)
	ordered = append(ordered, middle...)
	return append(ordered, tail...), nil
}

// Providers returns the provider names in attempt order.
func (o *GenerationOrchestrator) Providers() []string {
	names := make([]string, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate produces text from the first provider that succeeds.
//
// Unconfigured providers are skipped. Each configured provider gets up to
// MaxRetries attempts, retrying provider errors and timeouts with exponential
// backoff. When every provider is exhausted the breaker counts one failure
// and the last provider error is returned.
func (o *GenerationOrchestrator) Generate(
	ctx context.Context,
	prompt string,
	opts domain.GenerationOptions,
) (*domain.GenerationResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	requestID := uuid.NewString()
	log := o.logger.With("request_id", requestID)

	ticket, ok := o.breaker.Allow()
	if !ok {
		state := o.breaker.State()
		log.Warn("circuit breaker refused call", "consecutive_failures", state.ConsecutiveFailures)
		o.metrics.ObserveBreaker(breakerEventRejected)
		return nil, fmt.Errorf("%w after %d consecutive failures", domain.ErrCircuitOpen, state.ConsecutiveFailures)
	}

	var (
		attempts int
		tried    bool
		lastErr  error
	)
	for _, p := range o.providers {
		if !p.IsConfigured() {
			log.Debug("provider skipped", "provider", p.Name(), "outcome", driven.OutcomeSkipped)
			o.metrics.ObserveAttempt(p.Name(), driven.OutcomeSkipped, 0)
			continue
		}

		result, n, err := o.tryProvider(ctx, log, p, prompt, opts)
		attempts += n
		if err == nil {
			if o.breaker.RecordSuccess(ticket) {
				log.Info("circuit breaker closed", "provider", p.Name())
				o.metrics.ObserveBreaker(breakerEventClosed)
			}
			result.ID = requestID
			result.Attempts = attempts
			result.Latency = time.Since(start)
			o.metrics.ObserveGeneration(result.ProviderName, true, result.Latency, result.CostEstimate)
			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			o.breaker.Cancel(ticket)
			o.metrics.ObserveGeneration("", false, time.Since(start), 0)
			return nil, ctxErr
		}

		lastErr = err
		if errors.Is(err, domain.ErrProviderUnavailable) {
			continue
		}
		tried = true
	}

	o.metrics.ObserveGeneration("", false, time.Since(start), 0)

	if !tried {
		o.breaker.Cancel(ticket)
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrNoProvidersConfigured, lastErr)
		}
		return nil, domain.ErrNoProvidersConfigured
	}

	if o.breaker.RecordFailure(ticket) {
		state := o.breaker.State()
		log.Error("circuit breaker opened",
			"consecutive_failures", state.ConsecutiveFailures,
			"threshold", state.Threshold,
			"err", lastErr,
		)
		o.metrics.ObserveBreaker(breakerEventOpen)
	}
	return nil, lastErr
}

// tryProvider calls one provider up to maxRetries times and returns the
// result, the number of calls made and the last error.
func (o *GenerationOrchestrator) tryProvider(
	ctx context.Context,
	log logger.Logger,
	p driven.Provider,
	prompt string,
	opts domain.GenerationOptions,
) (*domain.GenerationResult, int, error) {
	var (
		result  *domain.GenerationResult
		attempt int
	)

	// First wait is 2*unit, then doubles: 2^attempt * unit.
	backoff := retry.WithMaxRetries(uint64(o.maxRetries-1), retry.NewExponential(2*o.backoffUnit))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		callStart := time.Now()
		r, err := p.Generate(ctx, prompt, opts)
		elapsed := time.Since(callStart)

		if err == nil {
			log.Debug("provider attempt",
				"provider", p.Name(),
				"attempt", attempt,
				"outcome", driven.OutcomeSuccess,
				"duration", elapsed,
			)
			o.metrics.ObserveAttempt(p.Name(), driven.OutcomeSuccess, elapsed)
			result = r
			return nil
		}

		log.Warn("provider attempt",
			"provider", p.Name(),
			"attempt", attempt,
			"outcome", driven.OutcomeFailure,
			"duration", elapsed,
			"err", err,
		)
		o.metrics.ObserveAttempt(p.Name(), driven.OutcomeFailure, elapsed)

		if domain.IsRetryable(err) && ctx.Err() == nil {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, attempt, err
	}
	return result, attempt, nil
}

// BreakerState returns the circuit breaker's current state.
func (o *GenerationOrchestrator) BreakerState() domain.BreakerState {
	return o.breaker.State()
}

// ResetBreaker closes the circuit breaker and clears its failure count.
func (o *GenerationOrchestrator) ResetBreaker() {
	o.breaker.Reset()
	o.logger.Info("circuit breaker reset")
	o.metrics.ObserveBreaker(breakerEventClosed)
}

type noopMetrics struct{}

func (noopMetrics) ObserveAttempt(string, string, time.Duration)           {}
func (noopMetrics) ObserveGeneration(string, bool, time.Duration, float64) {}
func (noopMetrics) ObserveBreaker(string)                                  {}
