package domain

// Fragment is an indexed unit of retrievable text.
// Fragments are immutable once indexed.
type Fragment struct {
	// Text is the fragment content.
	Text string `json:"text"`

	// SourceID identifies the document the fragment came from.
	// It is the citation attached to generated content.
	SourceID string `json:"source_id"`

	// Sequence is the fragment position within its source.
	Sequence int `json:"sequence"`
}

// RankedFragment is a fragment scored against a query.
type RankedFragment struct {
	Fragment Fragment `json:"fragment"`

	// Score is the cosine similarity in [0, 1].
	Score float64 `json:"score"`
}

// ContextBundle is the grounding context built for one content request.
type ContextBundle struct {
	// PromptContext holds the numbered, citable fragment blocks.
	PromptContext string

	// Citations holds one source ID per block, in block order.
	Citations []string

	// Fragments are the ranked fragments the context was built from.
	Fragments []RankedFragment
}

// IsGrounded returns true if any fragment backs the context.
func (b ContextBundle) IsGrounded() bool {
	return len(b.Citations) > 0
}
