package driving

import (
	"context"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// RetrievalService manages the fragment index.
type RetrievalService interface {
	// IndexSource indexes the fragments of one source, replacing any
	// previously persisted fragments of that source.
	IndexSource(ctx context.Context, sourceID string, fragments []domain.Fragment) error

	// Search ranks indexed fragments against query.
	Search(ctx context.Context, query string, topK int) ([]domain.RankedFragment, error)

	// Load rebuilds the index from persisted fragments.
	Load(ctx context.Context) (int, error)

	// Sources lists the persisted source IDs.
	Sources(ctx context.Context) ([]string, error)

	// RemoveSource deletes one persisted source and rebuilds the index.
	RemoveSource(ctx context.Context, sourceID string) error

	// Clear empties the index and the persisted fragments.
	Clear(ctx context.Context) error
}
