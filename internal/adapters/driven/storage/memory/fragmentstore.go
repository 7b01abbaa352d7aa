package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// Ensure FragmentStore implements the interface.
var _ driven.FragmentStore = (*FragmentStore)(nil)

// FragmentStore is an in-memory implementation of driven.FragmentStore.
type FragmentStore struct {
	mu      sync.RWMutex
	sources map[string][]domain.Fragment
	order   []string // source IDs in first-stored order
}

// NewFragmentStore creates a new in-memory fragment store.
func NewFragmentStore() *FragmentStore {
	return &FragmentStore{
		sources: make(map[string][]domain.Fragment),
	}
}

// ReplaceSource stores fragments for a source, discarding any it had before.
func (s *FragmentStore) ReplaceSource(_ context.Context, sourceID string, fragments []domain.Fragment) error {
	if sourceID == "" {
		return fmt.Errorf("%w: source ID is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(fragments) == 0 {
		s.forget(sourceID)
		return nil
	}
	if _, ok := s.sources[sourceID]; !ok {
		s.order = append(s.order, sourceID)
	}
	s.sources[sourceID] = slices.Clone(fragments)
	return nil
}

// List returns every fragment, sources in the order they were first stored
// and fragments by sequence within a source.
func (s *FragmentStore) List(_ context.Context) ([]domain.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Fragment
	for _, id := range s.order {
		frags := slices.Clone(s.sources[id])
		slices.SortStableFunc(frags, func(a, b domain.Fragment) int {
			return a.Sequence - b.Sequence
		})
		result = append(result, frags...)
	}
	return result, nil
}

// Sources returns the stored source IDs in sorted order.
func (s *FragmentStore) Sources(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedSources(), nil
}

// DeleteSource removes a source's fragments.
func (s *FragmentStore) DeleteSource(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[sourceID]; !ok {
		return domain.ErrNotFound
	}
	s.forget(sourceID)
	return nil
}

// Clear removes every fragment.
func (s *FragmentStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = make(map[string][]domain.Fragment)
	s.order = nil
	return nil
}

// Close is a no-op.
func (s *FragmentStore) Close() error {
	return nil
}

// forget drops a source (caller must hold the write lock).
func (s *FragmentStore) forget(sourceID string) {
	delete(s.sources, sourceID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == sourceID })
}

func (s *FragmentStore) sortedSources() []string {
	ids := make([]string, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
