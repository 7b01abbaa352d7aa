// Package ollama provides a generation provider backed by a local Ollama
// model server.
package ollama

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
	DefaultModel = "llama3"

	// CostPerToken is the estimated USD cost of one token.
	CostPerToken = 0.000001
)

// Config holds configuration for the Ollama provider.
type Config struct {
	// Host is the Ollama server address, e.g. http://localhost:11434.
	// The provider is unconfigured without it.
	Host string

	// Model is the model to use (default: llama3).
	Model string

	// Timeout is the request deadline (default: wire.DefaultTimeout).
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient overrides the HTTP client. Useful for testing.
	HTTPClient *http.Client
}

// Provider generates text with a local Ollama server.
type Provider struct {
	client *wire.Client
	host   string
	model  string
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount *int        `json:"prompt_eval_count"`
	EvalCount       *int        `json:"eval_count"`
}

// New creates an Ollama provider.
func New(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &Provider{
		client: wire.New(string(domain.ProviderOllama), cfg.Timeout,
			wire.WithHTTPClient(cfg.HTTPClient),
			wire.WithRateLimit(cfg.RequestsPerSecond),
		),
		host:  strings.TrimSpace(cfg.Host),
		model: cfg.Model,
	}
}

// Name returns "ollama".
func (p *Provider) Name() string {
	return string(domain.ProviderOllama)
}

// IsConfigured returns true when a host address is set.
func (p *Provider) IsConfigured() bool {
	return p.host != ""
}

// Generate sends a non-streaming chat request.
func (p *Provider) Generate(
	ctx context.Context,
	prompt string,
	opts domain.GenerationOptions,
) (*domain.GenerationResult, error) {
	if !p.IsConfigured() {
		return nil, domain.NewProviderError(p.Name(), domain.ErrProviderUnavailable, 0,
			fmt.Errorf("host is not set"))
	}

	model := opts.ModelOr(p.model)
	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: opts.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}
	if opts.Temperature != nil {
		reqBody.Options = &options{Temperature: opts.Temperature}
	}

	var resp chatResponse
	if err := p.client.PostJSON(ctx, wire.JoinURL(p.host, "api/chat"), nil, reqBody, &resp); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Message.Content)
	promptTokens := domain.EstimateTokens(prompt)
	completionTokens := domain.EstimateTokens(text)
	if resp.PromptEvalCount != nil {
		promptTokens = *resp.PromptEvalCount
	}
	if resp.EvalCount != nil {
		completionTokens = *resp.EvalCount
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

// Ping checks the server is reachable via /api/tags without running inference.
func (p *Provider) Ping(ctx context.Context) error {
	if !p.IsConfigured() {
		return domain.NewProviderError(p.Name(), domain.ErrProviderUnavailable, 0,
			fmt.Errorf("host is not set"))
	}
	return p.client.Get(ctx, wire.JoinURL(p.host, "api/tags"), nil)
}

// ModelName returns the configured model.
func (p *Provider) ModelName() string {
	return p.model
}
