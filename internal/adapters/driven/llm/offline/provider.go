// Package offline provides the deterministic, always-available provider used
// as the fallback of last resort.
package offline

import (
	"context"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

const (
	// Marker starts every offline response.
	Marker = "[offline-response]"

	// Model is the model name reported for offline results.
	Model = "offline-synthesiser"

	// PromptPrefixLen is how many characters of the prompt are echoed.
	PromptPrefixLen = 400

	notice = "This environment is running in offline mode. The following prompt was received:"
)

// Provider echoes a prefix of the prompt. It never fails and costs nothing.
type Provider struct{}

// New creates an offline provider.
func New() *Provider {
	return &Provider{}
}

// Name returns "offline".
func (p *Provider) Name() string {
	return string(domain.ProviderOffline)
}

// IsConfigured always returns true.
func (p *Provider) IsConfigured() bool {
	return true
}

// Generate returns the marker, a notice and the first PromptPrefixLen
// characters of the prompt. Model and temperature options are ignored.
func (p *Provider) Generate(
	ctx context.Context,
	prompt string,
	opts domain.GenerationOptions,
) (*domain.GenerationResult, error) {
	text := Marker + "\n" + notice + "\n" + truncate(prompt, PromptPrefixLen)

	return &domain.GenerationResult{
		Text:             text,
		ProviderName:     p.Name(),
		ModelName:        Model,
		PromptTokens:     domain.EstimateTokens(prompt),
		CompletionTokens: domain.EstimateTokens(text),
		CostEstimate:     0,
	}, nil
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
