package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
	"github.com/custodia-labs/drafter/internal/core/ports/driving"
	"github.com/custodia-labs/drafter/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService keeps the in-memory index in step with the fragment store.
// The store is optional; without it the index lives only for the process.
type RetrievalService struct {
	index  driven.RetrievalIndex
	store  driven.FragmentStore
	logger logger.Logger

	// indexed tracks sources when there is no store.
	mu      sync.Mutex
	indexed map[string]struct{}
}

// NewRetrievalService creates a retrieval service. store may be nil.
func NewRetrievalService(index driven.RetrievalIndex, store driven.FragmentStore) *RetrievalService {
	return &RetrievalService{
		index:   index,
		store:   store,
		logger:  logger.Default().With("component", "retrieval"),
		indexed: make(map[string]struct{}),
	}
}

// IndexSource indexes the fragments of one source.
// With a store, fragments previously stored for the source are replaced and
// the index is rebuilt so it holds no stale fragments.
func (s *RetrievalService) IndexSource(ctx context.Context, sourceID string, fragments []domain.Fragment) error {
	if strings.TrimSpace(sourceID) == "" {
		return fmt.Errorf("%w: source ID is required", domain.ErrInvalidInput)
	}

	normalised := make([]domain.Fragment, len(fragments))
	for i, f := range fragments {
		f.SourceID = sourceID
		normalised[i] = f
	}

	if s.store == nil {
		s.mu.Lock()
		s.indexed[sourceID] = struct{}{}
		s.mu.Unlock()
		s.index.Index(normalised)
		s.logger.Debug("source indexed", "source", sourceID, "fragments", len(normalised))
		return nil
	}

	if err := s.store.ReplaceSource(ctx, sourceID, normalised); err != nil {
		return fmt.Errorf("store fragments: %w", err)
	}
	if _, err := s.Load(ctx); err != nil {
		return err
	}
	s.logger.Debug("source indexed", "source", sourceID, "fragments", len(normalised))
	return nil
}

// Search ranks indexed fragments against query.
func (s *RetrievalService) Search(_ context.Context, query string, topK int) ([]domain.RankedFragment, error) {
	if topK < 0 {
		return nil, fmt.Errorf("%w: top_k must not be negative", domain.ErrInvalidInput)
	}
	return s.index.Search(query, topK), nil
}

// Load rebuilds the index from the store and returns the fragment count.
// The rebuilt index replaces the old one in a single swap. Without a store
// it returns the current index size.
func (s *RetrievalService) Load(ctx context.Context) (int, error) {
	if s.store == nil {
		return s.index.Len(), nil
	}

	fragments, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list fragments: %w", err)
	}

	s.index.Replace(fragments)
	s.logger.Debug("index loaded", "fragments", len(fragments))
	return len(fragments), nil
}

// Sources lists the stored source IDs, sorted.
func (s *RetrievalService) Sources(ctx context.Context) ([]string, error) {
	if s.store == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		sources := make([]string, 0, len(s.indexed))
		for id := range s.indexed {
			sources = append(sources, id)
		}
		sort.Strings(sources)
		return sources, nil
	}
	sources, err := s.store.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// RemoveSource deletes one source and rebuilds the index.
func (s *RetrievalService) RemoveSource(ctx context.Context, sourceID string) error {
	if s.store == nil {
		return fmt.Errorf("remove source: %w", domain.ErrNotFound)
	}
	if err := s.store.DeleteSource(ctx, sourceID); err != nil {
		return fmt.Errorf("remove source %s: %w", sourceID, err)
	}
	_, err := s.Load(ctx)
	return err
}

// Clear empties the index and the store.
func (s *RetrievalService) Clear(ctx context.Context) error {
	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear fragments: %w", err)
		}
	}
	s.mu.Lock()
	clear(s.indexed)
	s.mu.Unlock()
	s.index.Reset()
	return nil
}
