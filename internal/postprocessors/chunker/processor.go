// Package chunker splits source text into overlapping fixed-size fragments.
package chunker

import (
	"strings"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per fragment.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits text into fixed-size fragments.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave room to advance
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Chunk splits content into fragments attributed to sourceID.
// Sizes count characters, not bytes. Blank windows are dropped and
// sequence numbers stay contiguous.
func (p *Processor) Chunk(sourceID, content string) []domain.Fragment {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	step := p.chunkSize - p.overlap
	fragments := make([]domain.Fragment, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := min(start+p.chunkSize, len(runes))

		text := string(runes[start:end])
		if strings.TrimSpace(text) != "" {
			fragments = append(fragments, domain.Fragment{
				Text:     text,
				SourceID: sourceID,
				Sequence: len(fragments),
			})
		}

		if end == len(runes) {
			break
		}
	}

	return fragments
}
