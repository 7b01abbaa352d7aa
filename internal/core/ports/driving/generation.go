package driving

import (
	"context"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// GenerationService provides resilient generation to external actors.
type GenerationService interface {
	// Generate runs the retry, fallback and circuit breaker protocol across
	// the configured providers and returns the first successful result.
	Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (*domain.GenerationResult, error)

	// BreakerState returns the circuit breaker's current state.
	BreakerState() domain.BreakerState

	// ResetBreaker closes the circuit breaker and clears its failure count.
	ResetBreaker()
}

// ContextService builds grounding context and grounded content.
type ContextService interface {
	// Assemble retrieves the topK fragments for query and formats them as
	// numbered, citable blocks.
	Assemble(query string, topK int) domain.ContextBundle

	// Compose grounds a content request, generates it and attaches citations.
	Compose(ctx context.Context, req domain.ContentRequest) (*domain.GroundedResult, error)
}
