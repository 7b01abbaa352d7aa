package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// ProviderKind identifies a generation backend.
type ProviderKind string

// Available providers.
const (
	// ProviderOpenAI is the OpenAI-compatible hosted chat completions API.
	ProviderOpenAI ProviderKind = "openai"

	// ProviderAnthropic is the Anthropic hosted messages API.
	ProviderAnthropic ProviderKind = "anthropic"

	// ProviderOllama is a local Ollama model server.
	ProviderOllama ProviderKind = "ollama"

	// ProviderOffline is the deterministic, always-available fallback.
	ProviderOffline ProviderKind = "offline"
)

// ParseProviderKind converts a configured name to a ProviderKind.
// An empty string is valid and means "no primary".
func ParseProviderKind(s string) (ProviderKind, error) {
	k := ProviderKind(s)
	if s == "" || k.IsValid() {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, s)
}

// IsValid returns true if the provider is recognised.
func (k ProviderKind) IsValid() bool {
	switch k {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama, ProviderOffline:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (k ProviderKind) RequiresAPIKey() bool {
	return k == ProviderOpenAI || k == ProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (k ProviderKind) IsLocal() bool {
	return k == ProviderOllama
}

// String returns the string representation.
func (k ProviderKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the provider.
func (k ProviderKind) Description() string {
	switch k {
	case ProviderOpenAI:
		return "OpenAI (hosted)"
	case ProviderAnthropic:
		return "Anthropic (hosted)"
	case ProviderOllama:
		return "Ollama (local)"
	case ProviderOffline:
		return "Offline (deterministic fallback)"
	default:
		return unknownDescription
	}
}

// AllProviders returns every provider in registration order.
// Offline is last so it is the fallback of last resort.
func AllProviders() []ProviderKind {
	return []ProviderKind{
		ProviderOpenAI,
		ProviderAnthropic,
		ProviderOllama,
		ProviderOffline,
	}
}

// DefaultModels returns default models for each provider.
func DefaultModels() map[ProviderKind]string {
	return map[ProviderKind]string{
		ProviderOpenAI:    "gpt-4o-mini",
		ProviderAnthropic: "claude-3-5-sonnet-latest",
		ProviderOllama:    "llama3",
		ProviderOffline:   "offline-synthesiser",
	}
}

// DefaultOllamaHost is the local model server address used when none is set.
const DefaultOllamaHost = "http://localhost:11434"

// ProviderSettings holds one provider's connection configuration.
type ProviderSettings struct {
	// Model is the model name.
	Model string

	// BaseURL is the API endpoint; for Ollama this is the host address.
	BaseURL string

	// APIKey is the API key (for hosted providers).
	APIKey string

	// RequestsPerSecond throttles calls to the provider. Zero disables throttling.
	RequestsPerSecond float64
}

// OrchestratorSettings holds retry, fallback and circuit breaker configuration.
type OrchestratorSettings struct {
	// Primary is tried first. Empty means registration order.
	Primary ProviderKind

	// MaxRetries is the number of attempts per provider.
	MaxRetries int

	// BackoffUnit scales the 2^attempt backoff between attempts.
	BackoffUnit time.Duration

	// Timeout is each provider's request deadline.
	Timeout time.Duration

	// BreakerThreshold is the number of consecutive exhausted calls that trips the breaker.
	BreakerThreshold int

	// BreakerCooldown is how long the breaker stays open before admitting a probe.
	// Zero keeps it open until reset.
	BreakerCooldown time.Duration
}

// Validate checks the orchestrator settings are usable.
func (o OrchestratorSettings) Validate() error {
	if o.Primary != "" && !o.Primary.IsValid() {
		return fmt.Errorf("%w: unknown primary provider %q", ErrInvalidInput, o.Primary)
	}
	if o.MaxRetries < 1 {
		return fmt.Errorf("%w: max retries must be at least 1", ErrInvalidInput)
	}
	if o.BreakerThreshold < 1 {
		return fmt.Errorf("%w: breaker threshold must be at least 1", ErrInvalidInput)
	}
	if o.BackoffUnit < 0 || o.Timeout < 0 || o.BreakerCooldown < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidInput)
	}
	return nil
}

// RetrievalSettings holds grounding configuration.
type RetrievalSettings struct {
	// TopK is the default number of fragments used to ground a request.
	TopK int

	// ChunkSize is the fragment size in characters when indexing files.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive fragments.
	ChunkOverlap int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Providers holds per-provider connection settings.
	Providers map[ProviderKind]ProviderSettings

	// Orchestrator holds retry and breaker settings.
	Orchestrator OrchestratorSettings

	// Retrieval holds grounding settings.
	Retrieval RetrievalSettings
}

// Provider returns the settings of one provider, or zero settings.
func (s AppSettings) Provider(kind ProviderKind) ProviderSettings {
	if s.Providers == nil {
		return ProviderSettings{}
	}
	return s.Providers[kind]
}

// IsConfigured returns true if the provider has what it needs to be called.
func (s AppSettings) IsConfigured(kind ProviderKind) bool {
	p := s.Provider(kind)
	switch {
	case kind == ProviderOffline:
		return true
	case kind.RequiresAPIKey():
		return p.APIKey != ""
	case kind.IsLocal():
		return p.BaseURL != ""
	default:
		return false
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// Hosted providers are left without credentials; the local provider points
// at the default Ollama host.
func DefaultAppSettings() AppSettings {
	models := DefaultModels()
	return AppSettings{
		Providers: map[ProviderKind]ProviderSettings{
			ProviderOpenAI:    {Model: models[ProviderOpenAI]},
			ProviderAnthropic: {Model: models[ProviderAnthropic]},
			ProviderOllama:    {Model: models[ProviderOllama], BaseURL: DefaultOllamaHost},
			ProviderOffline:   {Model: models[ProviderOffline]},
		},
		Orchestrator: OrchestratorSettings{
			Primary:          ProviderOpenAI,
			MaxRetries:       3,
			BackoffUnit:      time.Second,
			Timeout:          45 * time.Second,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Retrieval: RetrievalSettings{
			TopK:         3,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
	}
}
