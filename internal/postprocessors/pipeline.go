// Package postprocessors turns indexable files into fragments.
package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/normalisers"
	"github.com/custodia-labs/drafter/internal/postprocessors/chunker"
)

// Pipeline normalises a file by extension and splits the text into fragments.
type Pipeline struct {
	normalisers *normalisers.Registry
	chunker     *chunker.Processor
}

// NewPipeline creates a pipeline from a normaliser registry and a chunker.
// A nil registry uses normalisers.Defaults and a nil chunker uses chunker.New.
func NewPipeline(registry *normalisers.Registry, c *chunker.Processor) *Pipeline {
	if registry == nil {
		registry = normalisers.Defaults()
	}
	if c == nil {
		c = chunker.New()
	}
	return &Pipeline{
		normalisers: registry,
		chunker:     c,
	}
}

// Handles returns true if path has an extension with a registered normaliser.
func (p *Pipeline) Handles(path string) bool {
	return p.normalisers.Handles(path)
}

// Process normalises content read from path and chunks it with path as the source ID.
func (p *Pipeline) Process(path string, content []byte) ([]domain.Fragment, error) {
	n := p.normalisers.For(path)
	if n == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrInvalidInput, path)
	}

	text, err := n.Normalise(content)
	if err != nil {
		return nil, fmt.Errorf("normaliser %s: %w", n.Name(), err)
	}

	return p.chunker.Chunk(path, text), nil
}
