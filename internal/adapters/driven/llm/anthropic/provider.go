// Package anthropic provides a generation provider for the Anthropic
// messages API.
package anthropic

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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultMaxTokens = 1024

	// CostPerToken is the estimated USD cost of one token.
	CostPerToken = 0.000003

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic provider.
type Config struct {
	// APIKey is the Anthropic API key. The provider is unconfigured without it.
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// MaxTokens caps the completion length (default: 1024).
	MaxTokens int

	// Timeout is the request deadline (default: wire.DefaultTimeout).
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient overrides the HTTP client. Useful for testing.
	HTTPClient *http.Client
}

// Provider generates text with the Anthropic messages API.
type Provider struct {
	client    *wire.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage *struct {
		InputTokens  *int `json:"input_tokens"`
		OutputTokens *int `json:"output_tokens"`
	} `json:"usage"`
}

// New creates an Anthropic provider.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	return &Provider{
		client: wire.New(string(domain.ProviderAnthropic), cfg.Timeout,
			wire.WithHTTPClient(cfg.HTTPClient),
			wire.WithRateLimit(cfg.RequestsPerSecond),
		),
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Name returns "anthropic".
func (p *Provider) Name() string {
	return string(domain.ProviderAnthropic)
}

// IsConfigured returns true when an API key is set.
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Generate sends the prompt as a single user message with the system prompt.
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
	reqBody := messagesRequest{
		Model:       model,
		Messages:    []messagesMessage{{Role: "user", Content: prompt}},
		MaxTokens:   p.maxTokens,
		System:      opts.SystemPrompt,
		Temperature: opts.Temperature,
	}

	var resp messagesResponse
	if err := p.client.PostJSON(ctx, wire.JoinURL(p.baseURL, "v1/messages"), p.headers(), reqBody, &resp); err != nil {
		return nil, err
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return nil, domain.NewProviderError(p.Name(), domain.ErrProviderError, 0,
			fmt.Errorf("no text content returned"))
	}

	text := strings.TrimSpace(strings.Join(parts, ""))
	promptTokens := domain.EstimateTokens(prompt)
	completionTokens := domain.EstimateTokens(text)
	if resp.Usage != nil {
		if resp.Usage.InputTokens != nil {
			promptTokens = *resp.Usage.InputTokens
		}
		if resp.Usage.OutputTokens != nil {
			completionTokens = *resp.Usage.OutputTokens
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

// Ping validates the API key by listing models.
func (p *Provider) Ping(ctx context.Context) error {
	if !p.IsConfigured() {
		return domain.NewProviderError(p.Name(), domain.ErrProviderUnavailable, 0,
			fmt.Errorf("API key is not set"))
	}
	return p.client.Get(ctx, wire.JoinURL(p.baseURL, "v1/models"), p.headers())
}

// ModelName returns the configured model.
func (p *Provider) ModelName() string {
	return p.model
}

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}
}
