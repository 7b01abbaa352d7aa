package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// defaultTopK is used when a tool call omits top_k.
const defaultTopK = 3

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of fragments to return (default 3)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []FragmentOutput `json:"results"`
	Count   int              `json:"count"`
}

// FragmentOutput represents a single ranked fragment.
type FragmentOutput struct {
	SourceID string  `json:"source_id"`
	Sequence int     `json:"sequence"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

// AssembleInput is the input schema for the assemble_context tool.
type AssembleInput struct {
	Query string `json:"query" jsonschema:"the query used to select grounding fragments"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of context blocks (default 3)"`
}

// AssembleOutput is the output schema for the assemble_context tool.
type AssembleOutput struct {
	Context   string   `json:"context"`
	Citations []string `json:"citations"`
}

// GenerateInput is the input schema for the generate tool.
type GenerateInput struct {
	Prompt       string   `json:"prompt" jsonschema:"the prompt to generate from"`
	SystemPrompt string   `json:"system_prompt,omitempty" jsonschema:"system prompt (default: a helpful assistant)"`
	Model        string   `json:"model,omitempty" jsonschema:"override the provider's model"`
	Temperature  *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature between 0 and 2"`
}

// GenerateOutput is the output schema for the generate and compose tools.
type GenerateOutput struct {
	ID               string   `json:"id"`
	Text             string   `json:"text"`
	Provider         string   `json:"provider"`
	Model            string   `json:"model"`
	PromptTokens     int      `json:"prompt_tokens"`
	CompletionTokens int      `json:"completion_tokens"`
	CostEstimate     float64  `json:"cost_estimate"`
	Attempts         int      `json:"attempts"`
	LatencyMillis    int64    `json:"latency_ms"`
	Citations        []string `json:"citations,omitempty"`
	Grounded         bool     `json:"grounded,omitempty"`
}

// ComposeInput is the input schema for the compose tool.
type ComposeInput struct {
	Task  string `json:"task" jsonschema:"what to write, e.g. a short update for the team blog"`
	Query string `json:"query,omitempty" jsonschema:"retrieval query (default: the task)"`
	Tone  string `json:"tone,omitempty" jsonschema:"tone of voice"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of grounding fragments"`
}

// BreakerInput is the empty input schema of the breaker tools.
type BreakerInput struct{}

// BreakerOutput is the output schema for the breaker tools.
type BreakerOutput struct {
	Status              string `json:"status"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	Threshold           int    `json:"threshold"`
	OpenedAt            string `json:"opened_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed fragments by lexical similarity",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "assemble_context",
		Description: "Build numbered, citable context blocks for a query",
	}, s.handleAssemble)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate",
		Description: "Generate text through the provider chain with retries, fallback and circuit breaking",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compose",
		Description: "Draft content grounded in indexed fragments, with a Sources section",
	}, s.handleCompose)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "breaker_status",
		Description: "Report the circuit breaker state",
	}, s.handleBreakerStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_breaker",
		Description: "Close the circuit breaker and clear its failure count",
	}, s.handleResetBreaker)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Retrieval.Search(ctx, input.Query, topKOrDefault(input.TopK))
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]FragmentOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = FragmentOutput{
			SourceID: r.Fragment.SourceID,
			Sequence: r.Fragment.Sequence,
			Score:    r.Score,
			Text:     r.Fragment.Text,
		}
	}

	return nil, output, nil
}

// handleAssemble handles the assemble_context tool invocation.
func (s *Server) handleAssemble(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AssembleInput,
) (*mcp.CallToolResult, AssembleOutput, error) {
	if s.ports.Context == nil {
		return nil, AssembleOutput{}, ErrServiceUnavailable
	}

	bundle := s.ports.Context.Assemble(input.Query, topKOrDefault(input.TopK))
	return nil, AssembleOutput{
		Context:   bundle.PromptContext,
		Citations: bundle.Citations,
	}, nil
}

// handleGenerate handles the generate tool invocation.
func (s *Server) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	if s.ports.Generation == nil {
		return nil, GenerateOutput{}, ErrServiceUnavailable
	}

	system := input.SystemPrompt
	if system == "" {
		system = domain.DefaultSystemPrompt
	}

	result, err := s.ports.Generation.Generate(ctx, input.Prompt, domain.GenerationOptions{
		SystemPrompt: system,
		Model:        input.Model,
		Temperature:  input.Temperature,
	})
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	return nil, generateOutput(result), nil
}

// handleCompose handles the compose tool invocation.
func (s *Server) handleCompose(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComposeInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	if s.ports.Context == nil {
		return nil, GenerateOutput{}, ErrServiceUnavailable
	}

	result, err := s.ports.Context.Compose(ctx, domain.ContentRequest{
		Task:  input.Task,
		Query: input.Query,
		Tone:  input.Tone,
		TopK:  input.TopK,
	})
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	output := generateOutput(&result.GenerationResult)
	output.Citations = result.Citations
	output.Grounded = result.Grounded
	return nil, output, nil
}

// handleBreakerStatus handles the breaker_status tool invocation.
func (s *Server) handleBreakerStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ BreakerInput,
) (*mcp.CallToolResult, BreakerOutput, error) {
	if s.ports.Generation == nil {
		return nil, BreakerOutput{}, ErrServiceUnavailable
	}
	return nil, breakerOutput(s.ports.Generation.BreakerState()), nil
}

// handleResetBreaker handles the reset_breaker tool invocation.
func (s *Server) handleResetBreaker(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ BreakerInput,
) (*mcp.CallToolResult, BreakerOutput, error) {
	if s.ports.Generation == nil {
		return nil, BreakerOutput{}, ErrServiceUnavailable
	}
	s.ports.Generation.ResetBreaker()
	return nil, breakerOutput(s.ports.Generation.BreakerState()), nil
}

func topKOrDefault(k int) int {
	if k <= 0 {
		return defaultTopK
	}
	return k
}

func generateOutput(r *domain.GenerationResult) GenerateOutput {
	return GenerateOutput{
		ID:               r.ID,
		Text:             r.Text,
		Provider:         r.ProviderName,
		Model:            r.ModelName,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		CostEstimate:     r.CostEstimate,
		Attempts:         r.Attempts,
		LatencyMillis:    r.Latency.Milliseconds(),
	}
}

func breakerOutput(state domain.BreakerState) BreakerOutput {
	out := BreakerOutput{
		Status:              state.Status.String(),
		ConsecutiveFailures: state.ConsecutiveFailures,
		Threshold:           state.Threshold,
	}
	if !state.OpenedAt.IsZero() {
		out.OpenedAt = state.OpenedAt.Format(time.RFC3339)
	}
	return out
}
