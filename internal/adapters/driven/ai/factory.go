// Package ai provides factory functions for creating generation provider adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/drafter/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/drafter/internal/adapters/driven/llm/offline"
	"github.com/custodia-labs/drafter/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/drafter/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for provider connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the providers built from settings.
type InitResult struct {
	// Providers are in registration order: openai, anthropic, ollama, offline.
	Providers []driven.Provider

	// Warnings describe providers that will be skipped.
	Warnings []string
}

// Init builds every provider from settings and reports the unconfigured ones.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	result := &InitResult{}
	for _, kind := range domain.AllProviders() {
		p, err := CreateProvider(kind, settings.Provider(kind), settings.Orchestrator.Timeout)
		if err != nil {
			return nil, err
		}
		if !p.IsConfigured() {
			result.Warnings = append(result.Warnings, unconfiguredHint(kind))
		}
		result.Providers = append(result.Providers, p)
	}
	return result, nil
}

// CreateProvider creates the adapter for one provider kind.
// The adapter is returned even when unconfigured; the orchestrator skips it.
func CreateProvider(kind domain.ProviderKind, settings domain.ProviderSettings, timeout time.Duration) (driven.Provider, error) {
	switch kind {
	case domain.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Timeout:           timeout,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Timeout:           timeout,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.ProviderOllama:
		return ollama.New(ollama.Config{
			Host:              settings.BaseURL,
			Model:             settings.Model,
			Timeout:           timeout,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.ProviderOffline:
		return offline.New(), nil

	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", domain.ErrInvalidInput, kind)
	}
}

// ValidateProviderConfig creates a provider and pings it.
// Providers without connectivity checks are always valid.
func ValidateProviderConfig(kind domain.ProviderKind, settings domain.ProviderSettings) error {
	p, err := CreateProvider(kind, settings, pingTimeout)
	if err != nil {
		return err
	}
	if !p.IsConfigured() {
		return domain.NewProviderError(kind.String(), domain.ErrProviderUnavailable, 0,
			errors.New(unconfiguredHint(kind)))
	}

	pinger, ok := p.(driven.Pinger)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		if m, ok := p.(modelNamer); ok {
			return fmt.Errorf("model %s: %w", m.ModelName(), err)
		}
		return err
	}
	return nil
}

// modelNamer is implemented by adapters that target a named model.
type modelNamer interface {
	ModelName() string
}

func unconfiguredHint(kind domain.ProviderKind) string {
	switch kind {
	case domain.ProviderOpenAI:
		return "openai: no API key; set OPENAI_API_KEY or run 'drafter settings provider openai'"
	case domain.ProviderAnthropic:
		return "anthropic: no API key; set ANTHROPIC_API_KEY or run 'drafter settings provider anthropic'"
	case domain.ProviderOllama:
		return "ollama: no host; set OLLAMA_HOST or run 'drafter settings provider ollama'"
	default:
		return kind.String() + ": not configured"
	}
}
