package ai

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

func TestInit_RegistrationOrder(t *testing.T) {
	settings := domain.DefaultAppSettings()

	result, err := Init(&settings)
	require.NoError(t, err)

	names := make([]string, len(result.Providers))
	for i, p := range result.Providers {
		names[i] = p.Name()
	}
	assert.Equal(t, []string{"openai", "anthropic", "ollama", "offline"}, names)
}

func TestInit_WarnsAboutUnconfiguredProviders(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Providers[domain.ProviderAnthropic] = domain.ProviderSettings{APIKey: "ak"}

	result, err := Init(&settings)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "OPENAI_API_KEY")
	assert.True(t, result.Providers[1].IsConfigured())
	assert.True(t, result.Providers[3].IsConfigured(), "offline is always configured")
}

func TestInit_NilSettings(t *testing.T) {
	_, err := Init(nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCreateProvider(t *testing.T) {
	tests := []struct {
		name       string
		kind       domain.ProviderKind
		settings   domain.ProviderSettings
		configured bool
	}{
		{"openai with key", domain.ProviderOpenAI, domain.ProviderSettings{APIKey: "sk"}, true},
		{"openai without key", domain.ProviderOpenAI, domain.ProviderSettings{}, false},
		{"anthropic with key", domain.ProviderAnthropic, domain.ProviderSettings{APIKey: "ak"}, true},
		{"ollama with host", domain.ProviderOllama, domain.ProviderSettings{BaseURL: domain.DefaultOllamaHost}, true},
		{"ollama without host", domain.ProviderOllama, domain.ProviderSettings{}, false},
		{"offline", domain.ProviderOffline, domain.ProviderSettings{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CreateProvider(tt.kind, tt.settings, time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.kind.String(), p.Name())
			assert.Equal(t, tt.configured, p.IsConfigured())
		})
	}

	_, err := CreateProvider("gemini", domain.ProviderSettings{}, time.Second)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidateProviderConfig(t *testing.T) {
	t.Run("reachable ollama", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			_, _ = w.Write([]byte(`{"models":[]}`))
		}))
		defer server.Close()

		assert.NoError(t, ValidateProviderConfig(domain.ProviderOllama, domain.ProviderSettings{BaseURL: server.URL}))
	})

	t.Run("rejected key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		err := ValidateProviderConfig(domain.ProviderOpenAI, domain.ProviderSettings{APIKey: "bad", BaseURL: server.URL})
		assert.True(t, errors.Is(err, domain.ErrProviderError))
	})

	t.Run("failure names the model", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		err := ValidateProviderConfig(domain.ProviderOllama, domain.ProviderSettings{BaseURL: server.URL, Model: "mistral"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model mistral")
	})

	t.Run("unconfigured", func(t *testing.T) {
		err := ValidateProviderConfig(domain.ProviderAnthropic, domain.ProviderSettings{})
		assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	})

	t.Run("offline has nothing to ping", func(t *testing.T) {
		assert.NoError(t, ValidateProviderConfig(domain.ProviderOffline, domain.ProviderSettings{}))
	})
}
