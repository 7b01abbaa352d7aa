package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
	"github.com/custodia-labs/drafter/internal/core/ports/driving"
	"github.com/custodia-labs/drafter/internal/logger"
)

// Ensure ContextAssembler implements the interfaces.
var (
	_ driving.ContextService  = (*ContextAssembler)(nil)
	_ driven.PromptStoreAware = (*ContextAssembler)(nil)
)

// NoContext is the prompt context used when retrieval finds nothing.
const NoContext = "No context provided."

// DefaultTone is used when a content request sets no tone.
const DefaultTone = "informative"

// defaultGroundedPrompt is the fallback prompt when no PromptStore is configured.
const defaultGroundedPrompt = `Task: %s
Tone of voice: %s.
Context:
%s

Provide markdown formatted output with sections: Overview, Key Points, Sources.`

// defaultWriterSystemPrompt is the fallback system prompt when no PromptStore is configured.
const defaultWriterSystemPrompt = `You are a writing assistant. Craft concise, factual content.
You always cite sources in a Sources section using the format [n].`

// ContextAssembler turns retrieved fragments into numbered, citable context
// and composes grounded content from it.
type ContextAssembler struct {
	index       driven.RetrievalIndex
	generator   driving.GenerationService
	promptStore driven.PromptStore
	defaultTopK int
	logger      logger.Logger
}

// NewContextAssembler creates a context assembler.
// generator may be nil when only Assemble is used.
func NewContextAssembler(index driven.RetrievalIndex, generator driving.GenerationService, defaultTopK int) *ContextAssembler {
	return &ContextAssembler{
		index:       index,
		generator:   generator,
		defaultTopK: defaultTopK,
		logger:      logger.Default().With("component", "assembler"),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the assembler uses hardcoded default prompts.
func (a *ContextAssembler) SetPromptStore(store driven.PromptStore) {
	a.promptStore = store
}

// Assemble retrieves the topK fragments for query and renders them as
// "[n] text" blocks separated by blank lines. Citations hold the source ID
// of each block in the same order.
func (a *ContextAssembler) Assemble(query string, topK int) domain.ContextBundle {
	ranked := a.index.Search(query, topK)
	if len(ranked) == 0 {
		return domain.ContextBundle{
			PromptContext: NoContext,
			Citations:     []string{},
			Fragments:     []domain.RankedFragment{},
		}
	}

	blocks := make([]string, len(ranked))
	citations := make([]string, len(ranked))
	for i, r := range ranked {
		blocks[i] = fmt.Sprintf("[%d] %s", i+1, r.Fragment.Text)
		citations[i] = r.Fragment.SourceID
	}

	return domain.ContextBundle{
		PromptContext: strings.Join(blocks, "\n\n"),
		Citations:     citations,
		Fragments:     ranked,
	}
}

// Compose grounds req in retrieved context, generates the content and
// attaches citations. A Sources block listing the citations is appended
// when the generated text has none.
func (a *ContextAssembler) Compose(ctx context.Context, req domain.ContentRequest) (*domain.GroundedResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if a.generator == nil {
		return nil, fmt.Errorf("compose: %w", domain.ErrNoProvidersConfigured)
	}

	query := strings.TrimSpace(req.Query)
	task := strings.TrimSpace(req.Task)
	if query == "" {
		query = task
	}
	if task == "" {
		task = "Write about " + query
	}
	tone := strings.TrimSpace(req.Tone)
	if tone == "" {
		tone = DefaultTone
	}
	topK := req.TopK
	if topK <= 0 {
		topK = a.defaultTopK
	}

	bundle := a.Assemble(query, topK)
	a.logger.Debug("context assembled", "query", query, "top_k", topK, "blocks", len(bundle.Citations))

	prompt := fmt.Sprintf(a.groundedPrompt(), task, tone, bundle.PromptContext)

	opts := req.Options
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = a.loadPrompt(driven.PromptSystem, defaultWriterSystemPrompt)
	}

	result, err := a.generator.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	result.Text = withSources(result.Text, bundle.Citations)
	return &domain.GroundedResult{
		GenerationResult: *result,
		Citations:        bundle.Citations,
		Grounded:         bundle.IsGrounded(),
	}, nil
}

// withSources appends a Sources block when body lacks one.
func withSources(body string, citations []string) string {
	if len(citations) == 0 || strings.Contains(body, "Sources") {
		return body
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n\nSources:")
	for i, c := range citations {
		fmt.Fprintf(&b, "\n- [%d] %s", i+1, c)
	}
	return b.String()
}

// groundedVerbs is the number of %s verbs a grounded prompt template takes:
// task, tone and context, in that order.
const groundedVerbs = 3

// groundedPrompt loads the grounded prompt template. A template with the
// wrong verbs falls back to the default.
func (a *ContextAssembler) groundedPrompt() string {
	tmpl := a.loadPrompt(driven.PromptGrounded, defaultGroundedPrompt)
	if n, ok := stringVerbs(tmpl); !ok || n != groundedVerbs {
		a.logger.Warn("grounded prompt needs exactly three %s verbs, using default",
			"prompt", driven.PromptGrounded, "verbs", n)
		return defaultGroundedPrompt
	}
	return tmpl
}

// stringVerbs counts the %s verbs in tmpl. It reports false when tmpl holds
// any other verb; %% is allowed.
func stringVerbs(tmpl string) (int, bool) {
	n := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 >= len(tmpl) {
			return n, false
		}
		i++
		switch tmpl[i] {
		case '%':
		case 's':
			n++
		default:
			return n, false
		}
	}
	return n, true
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (a *ContextAssembler) loadPrompt(name, fallback string) string {
	if a.promptStore == nil {
		return fallback
	}
	prompt, err := a.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		a.logger.Warn("prompt unavailable, using default", "prompt", name, "err", err)
		return fallback
	}
	return prompt
}
