// Package openai provides a generation provider for OpenAI-compatible
// chat completions APIs.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/drafter/internal/adapters/driven/llm/wire"
	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.Provider = (*Provider)(nil)
	_ driven.Pinger   = (*Provider)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	// CostPerToken is the estimated USD cost of one token.
	CostPerToken = 0.000002
)

// Config holds configuration for the OpenAI provider.
type Config struct {
	// APIKey is the OpenAI API key. The provider is unconfigured without it.
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request deadline (default: wire.DefaultTimeout).
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient overrides the HTTP client. Useful for testing.
	HTTPClient *http.Client
}

// Provider generates text with the OpenAI chat completions API.
type Provider struct {
	client  *wire.Client
	baseURL string
	apiKey  string
	model   string
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	Temperature *float64            `json:"temperature,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
// Usage is optional on compatible servers.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     *int `json:"prompt_tokens"`
		CompletionTokens *int `json:"completion_tokens"`
	} `json:"usage"`
}

// New creates an OpenAI provider. A missing API key is not an error here;
// the provider reports itself unconfigured instead.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &Provider{
		client: wire.New(string(domain.ProviderOpenAI), cfg.Timeout,
			wire.WithHTTPClient(cfg.HTTPClient),
			wire.WithRateLimit(cfg.RequestsPerSecond),
		),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// Name returns "openai".
func (p *Provider) Name() string {
	return string(domain.ProviderOpenAI)
}

// IsConfigured returns true when an API key is set.
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Generate sends the system prompt and prompt as a two-message chat.
func (p *Provider) Generate(
	ctx context.Context,
	prompt string,
	opts domain.GenerationOptions,
) (*domain.GenerationResult, error) {
	if !p.IsConfigured() {
		return nil, domain.NewProviderError(p.Name(), domain.ErrProviderUnavailable, 0,
			fmt.Errorf("API key is not set"))
	}

	model := opts.ModelOr(p.model)
	reqBody := chatCompletionRequest{
		Model: model,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: opts.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: opts.Temperature,
	}

	var resp chatCompletionResponse
	if err := p.client.PostJSON(ctx, wire.JoinURL(p.baseURL, "chat/completions"), p.headers(), reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, domain.NewProviderError(p.Name(), domain.ErrProviderError, 0,
			fmt.Errorf("no response choices returned"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	promptTokens := domain.EstimateTokens(prompt)
	completionTokens := domain.EstimateTokens(text)
	if resp.Usage != nil {
		if resp.Usage.PromptTokens != nil {
			promptTokens = *resp.Usage.PromptTokens
		}
		if resp.Usage.CompletionTokens != nil {
			completionTokens = *resp.Usage.CompletionTokens
		}
	}

	return &domain.GenerationResult{
		Text:             text,
		ProviderName:     p.Name(),
		ModelName:        model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		CostEstimate:     domain.EstimateCost(promptTokens+completionTokens, CostPerToken),
	}, nil
}

// Ping validates the API key by listing models, without running inference.
func (p *Provider) Ping(ctx context.Context) error {
	if !p.IsConfigured() {
		return domain.NewProviderError(p.Name(), domain.ErrProviderUnavailable, 0,
			fmt.Errorf("API key is not set"))
	}
	return p.client.Get(ctx, wire.JoinURL(p.baseURL, "models"), p.headers())
}

// ModelName returns the configured model.
func (p *Provider) ModelName() string {
	return p.model
}

func (p *Provider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}
