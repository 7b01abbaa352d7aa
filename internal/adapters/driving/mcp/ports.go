package mcp

import (
	"github.com/custodia-labs/drafter/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval provides fragment search.
	Retrieval driving.RetrievalService

	// Context assembles grounding context and composes grounded content.
	Context driving.ContextService

	// Generation runs prompts through the provider chain.
	Generation driving.GenerationService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Context and Generation are optional; their tools report ErrServiceUnavailable
	return nil
}
