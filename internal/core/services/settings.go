package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
	"github.com/custodia-labs/drafter/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
// Per-provider keys are built with providerKey.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyPrimary          = "llm.primary"
	keyMaxRetries       = "llm.max_retries"
	keyBackoffUnit      = "llm.backoff_unit"
	keyTimeout          = "llm.timeout"
	keyBreakerThreshold = "llm.breaker_threshold"
	keyBreakerCooldown  = "llm.breaker_cooldown"
	keyTopK             = "retrieval.top_k"
	keyChunkSize        = "retrieval.chunk_size"
	keyChunkOverlap     = "retrieval.chunk_overlap"

	fieldModel   = "model"
	fieldBaseURL = "base_url"
	fieldAPIKey  = "api_key"
	fieldRPS     = "requests_per_second"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey        = "OPENAI_API_KEY"
	EnvAnthropicKey     = "ANTHROPIC_API_KEY"
	EnvOllamaHost       = "OLLAMA_HOST"
	EnvPrimary          = "LLM_PRIMARY"
	EnvTimeout          = "LLM_TIMEOUT"
	EnvMaxRetries       = "LLM_MAX_RETRIES"
	EnvBreakerThreshold = "LLM_CIRCUIT_BREAKER_THRESHOLD"
)

// SettingsService manages application settings.
// Stored values come from the ConfigStore; environment variables override
// them when read but are never written back.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.ProviderValidator
	lookupEnv   func(string) (string, bool)
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnvLookup replaces os.LookupEnv as the source of environment overrides.
func WithEnvLookup(lookup func(string) (string, bool)) SettingsOption {
	return func(s *SettingsService) {
		s.lookupEnv = lookup
	}
}

// NewSettingsService creates a new settings service.
// validator may be nil, in which case provider validation is skipped.
func NewSettingsService(
	configStore driven.ConfigStore,
	validator driven.ProviderValidator,
	opts ...SettingsOption,
) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		validator:   validator,
		lookupEnv:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings with environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	if err := s.applyEnv(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// stored reads settings from the config store, falling back to defaults.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	providers := make(map[domain.ProviderKind]domain.ProviderSettings, len(defaults.Providers))
	for _, kind := range domain.AllProviders() {
		d := defaults.Provider(kind)
		providers[kind] = domain.ProviderSettings{
			Model:             s.getString(providerKey(kind, fieldModel), d.Model),
			BaseURL:           s.getString(providerKey(kind, fieldBaseURL), d.BaseURL),
			APIKey:            s.configStore.GetString(providerKey(kind, fieldAPIKey)),
			RequestsPerSecond: s.configStore.GetFloat(providerKey(kind, fieldRPS)),
		}
	}

	o := defaults.Orchestrator
	r := defaults.Retrieval
	return &domain.AppSettings{
		Providers: providers,
		Orchestrator: domain.OrchestratorSettings{
			Primary:          s.getProvider(keyPrimary, o.Primary),
			MaxRetries:       s.getInt(keyMaxRetries, o.MaxRetries),
			BackoffUnit:      s.getDuration(keyBackoffUnit, o.BackoffUnit),
			Timeout:          s.getDuration(keyTimeout, o.Timeout),
			BreakerThreshold: s.getInt(keyBreakerThreshold, o.BreakerThreshold),
			BreakerCooldown:  s.getDuration(keyBreakerCooldown, o.BreakerCooldown),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:         s.getInt(keyTopK, r.TopK),
			ChunkSize:    s.getInt(keyChunkSize, r.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, r.ChunkOverlap),
		},
	}
}

// applyEnv overlays environment variables onto settings.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) error {
	setField := func(kind domain.ProviderKind, apply func(*domain.ProviderSettings)) {
		p := settings.Provider(kind)
		apply(&p)
		settings.Providers[kind] = p
	}

	if v, ok := s.env(EnvOpenAIKey); ok {
		setField(domain.ProviderOpenAI, func(p *domain.ProviderSettings) { p.APIKey = v })
	}
	if v, ok := s.env(EnvAnthropicKey); ok {
		setField(domain.ProviderAnthropic, func(p *domain.ProviderSettings) { p.APIKey = v })
	}
	if v, ok := s.env(EnvOllamaHost); ok {
		setField(domain.ProviderOllama, func(p *domain.ProviderSettings) { p.BaseURL = v })
	}

	if v, ok := s.env(EnvPrimary); ok {
		kind, err := domain.ParseProviderKind(strings.ToLower(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPrimary, err)
		}
		settings.Orchestrator.Primary = kind
	}
	if v, ok := s.env(EnvTimeout); ok {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, EnvTimeout, err)
		}
		settings.Orchestrator.Timeout = d
	}
	if v, ok := s.env(EnvMaxRetries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, EnvMaxRetries, err)
		}
		settings.Orchestrator.MaxRetries = n
	}
	if v, ok := s.env(EnvBreakerThreshold); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, EnvBreakerThreshold, err)
		}
		settings.Orchestrator.BreakerThreshold = n
	}
	return nil
}

// env returns a non-blank environment value.
func (s *SettingsService) env(name string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	for _, kind := range domain.AllProviders() {
		p := settings.Provider(kind)
		if err := s.configStore.Set(providerKey(kind, fieldModel), p.Model); err != nil {
			return fmt.Errorf("save %s model: %w", kind, err)
		}
		if err := s.configStore.Set(providerKey(kind, fieldBaseURL), p.BaseURL); err != nil {
			return fmt.Errorf("save %s base_url: %w", kind, err)
		}
		if p.APIKey != "" {
			if err := s.configStore.Set(providerKey(kind, fieldAPIKey), p.APIKey); err != nil {
				return fmt.Errorf("save %s api_key: %w", kind, err)
			}
		}
		if p.RequestsPerSecond > 0 {
			if err := s.configStore.Set(providerKey(kind, fieldRPS), p.RequestsPerSecond); err != nil {
				return fmt.Errorf("save %s requests_per_second: %w", kind, err)
			}
		}
	}

	o := settings.Orchestrator
	r := settings.Retrieval
	values := []struct {
		key   string
		value any
	}{
		{keyPrimary, o.Primary.String()},
		{keyMaxRetries, o.MaxRetries},
		{keyBackoffUnit, o.BackoffUnit.String()},
		{keyTimeout, o.Timeout.String()},
		{keyBreakerThreshold, o.BreakerThreshold},
		{keyBreakerCooldown, o.BreakerCooldown.String()},
		{keyTopK, r.TopK},
		{keyChunkSize, r.ChunkSize},
		{keyChunkOverlap, r.ChunkOverlap},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetProvider configures one provider's connection settings.
// An empty model selects the provider's default model.
func (s *SettingsService) SetProvider(kind domain.ProviderKind, provider domain.ProviderSettings) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, kind)
	}
	if kind.RequiresAPIKey() && provider.APIKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, kind)
	}
	if provider.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", domain.ErrInvalidInput)
	}

	if provider.Model == "" {
		provider.Model = domain.DefaultModels()[kind]
	}
	if kind.IsLocal() && provider.BaseURL == "" {
		provider.BaseURL = domain.DefaultOllamaHost
	}

	settings := s.stored()
	settings.Providers[kind] = provider
	return s.Save(settings)
}

// SetPrimary selects the provider tried first. An empty kind clears it.
func (s *SettingsService) SetPrimary(kind domain.ProviderKind) error {
	if kind != "" && !kind.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, kind)
	}

	settings := s.stored()
	settings.Orchestrator.Primary = kind
	return s.Save(settings)
}

// Validate checks the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Orchestrator.Validate(); err != nil {
		return err
	}

	r := settings.Retrieval
	if r.TopK < 1 || r.ChunkSize < 1 {
		return fmt.Errorf("%w: retrieval top_k and chunk_size must be positive", domain.ErrInvalidInput)
	}
	if r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", domain.ErrInvalidInput)
	}

	if primary := settings.Orchestrator.Primary; primary != "" && !settings.IsConfigured(primary) {
		return fmt.Errorf("%w: primary provider %s is not configured", domain.ErrProviderUnavailable, primary)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateProviderConfig validates one provider's configuration by pinging it.
func (s *SettingsService) ValidateProviderConfig(kind domain.ProviderKind) error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateProvider(kind, settings.Provider(kind))
}

// Helper methods for reading config with defaults.

func providerKey(kind domain.ProviderKind, field string) string {
	return "llm." + kind.String() + "." + field
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getDuration reads a duration string ("1.5s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}

	switch v := raw.(type) {
	case string:
		d, err := parseSeconds(v)
		if err != nil {
			return defaultVal
		}
		return d
	case int, int64, float64:
		return time.Duration(s.configStore.GetFloat(key) * float64(time.Second))
	default:
		return defaultVal
	}
}

// getProvider reads a provider kind. A stored empty value means no primary.
func (s *SettingsService) getProvider(key string, defaultVal domain.ProviderKind) domain.ProviderKind {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return ""
	}
	kind := domain.ProviderKind(val)
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}

// parseSeconds parses a Go duration, or a bare number as seconds.
func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
