package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Temperature bounds accepted by GenerationOptions.Validate.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// DefaultSystemPrompt is used when no system prompt template is available.
const DefaultSystemPrompt = "You are a helpful assistant."

// GenerationOptions configures a single generation request.
type GenerationOptions struct {
	// SystemPrompt is the system message sent ahead of the prompt (required).
	SystemPrompt string `json:"system_prompt"`

	// Model overrides the provider's configured model when set.
	Model string `json:"model,omitempty"`

	// Temperature overrides the provider's sampling temperature when set.
	Temperature *float64 `json:"temperature,omitempty"`
}

// Validate checks required fields and that a set temperature is plausible.
func (o GenerationOptions) Validate() error {
	if strings.TrimSpace(o.SystemPrompt) == "" {
		return fmt.Errorf("%w: system prompt is required", ErrInvalidInput)
	}
	if o.Temperature != nil {
		t := *o.Temperature
		if math.IsNaN(t) || math.IsInf(t, 0) || t < MinTemperature || t > MaxTemperature {
			return fmt.Errorf("%w: temperature %v outside [%v, %v]",
				ErrInvalidInput, t, MinTemperature, MaxTemperature)
		}
	}
	return nil
}

// ModelOr returns the requested model, or fallback when none was requested.
func (o GenerationOptions) ModelOr(fallback string) string {
	if o.Model != "" {
		return o.Model
	}
	return fallback
}

// GenerationResult is the outcome of one successful generation.
type GenerationResult struct {
	// ID correlates the result with its log entries.
	ID string `json:"id"`

	// Text is the generated content.
	Text string `json:"text"`

	// ProviderName is the provider that produced the text.
	ProviderName string `json:"provider"`

	// ModelName is the model that produced the text.
	ModelName string `json:"model"`

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`

	// CostEstimate is the estimated cost in USD.
	CostEstimate float64 `json:"cost_estimate"`

	// Attempts is the number of provider calls made, including failures.
	Attempts int `json:"attempts"`

	// Latency is the wall-clock duration of the whole generate call.
	Latency time.Duration `json:"latency"`
}

// TotalTokens returns prompt plus completion tokens.
func (r GenerationResult) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// EstimateTokens approximates a token count as the number of words,
// never less than one.
func EstimateTokens(text string) int {
	return max(1, len(strings.Fields(text)))
}

// EstimateCost prices a token count at a per-token rate.
func EstimateCost(totalTokens int, ratePerToken float64) float64 {
	return float64(totalTokens) * ratePerToken
}

// ContentRequest asks for one piece of grounded content.
type ContentRequest struct {
	// Query selects the grounding fragments.
	Query string `json:"query"`

	// Task describes what to write (format, channel, audience).
	Task string `json:"task"`

	// Tone is the tone-of-voice directive.
	Tone string `json:"tone,omitempty"`

	// TopK is the number of fragments to ground on.
	TopK int `json:"top_k"`

	// Options are passed to the generation orchestrator.
	Options GenerationOptions `json:"options"`
}

// Validate checks the request has something to write about.
func (r ContentRequest) Validate() error {
	if strings.TrimSpace(r.Task) == "" && strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: task or query is required", ErrInvalidInput)
	}
	return nil
}

// GroundedResult is generated content with its citations attached.
type GroundedResult struct {
	GenerationResult

	// Citations lists the source IDs of the grounding fragments, in block order.
	Citations []string `json:"citations"`

	// Grounded is false when generation proceeded without any context.
	Grounded bool `json:"grounded"`
}
