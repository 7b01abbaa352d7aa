package driven

import (
	"context"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// Provider turns a prompt into generated text over one transport.
//
// Implementations include:
//   - OpenAI-compatible chat completions (hosted)
//   - Anthropic messages (hosted)
//   - Ollama (local model server)
//   - Offline (deterministic, always available)
type Provider interface {
	// Name returns the stable identifier used for ordering and logging.
	Name() string

	// IsConfigured reports whether the provider has the static configuration
	// (credentials, host address) it needs. It performs no I/O and is checked
	// before any call is attempted.
	IsConfigured() bool

	// Generate produces a completion for prompt.
	// Failures are *domain.ProviderError values matching
	// domain.ErrProviderUnavailable, domain.ErrProviderError or
	// domain.ErrProviderTimeout.
	Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (*domain.GenerationResult, error)
}

// Pinger is an optional interface for providers that can verify connectivity
// without running inference.
type Pinger interface {
	// Ping validates the provider is reachable and its credentials are accepted.
	Ping(ctx context.Context) error
}
