package driven

import (
	"context"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// RetrievalIndex ranks indexed fragments against a query by lexical overlap.
// Search performs no I/O.
type RetrievalIndex interface {
	// Index appends fragments in order. It never fails.
	// The index performs no deduplication.
	Index(fragments []domain.Fragment)

	// Search returns at most topK fragments with a positive score,
	// best first, ties in indexing order.
	Search(query string, topK int) []domain.RankedFragment

	// Len returns the number of indexed fragments.
	Len() int

	// Reset discards every fragment so the index can be rebuilt.
	Reset()

	// Replace swaps the whole index for fragments in one step; a concurrent
	// Search sees either the old or the new contents, never a partial set.
	Replace(fragments []domain.Fragment)
}

// FragmentStore persists indexed fragments so the in-memory index can be
// rebuilt when the process starts.
type FragmentStore interface {
	// ReplaceSource stores the fragments of one source, replacing any
	// fragments previously stored for it.
	ReplaceSource(ctx context.Context, sourceID string, fragments []domain.Fragment) error

	// List returns every stored fragment. Sources come in the order they
	// were first stored, fragments by sequence within a source.
	List(ctx context.Context) ([]domain.Fragment, error)

	// Sources returns the stored source IDs.
	Sources(ctx context.Context) ([]string, error)

	// DeleteSource removes the fragments of one source.
	DeleteSource(ctx context.Context, sourceID string) error

	// Clear removes every fragment.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
