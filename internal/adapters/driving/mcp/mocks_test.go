package mcp

import (
	"context"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results   []domain.RankedFragment
	sources   []string
	err       error
	lastTopK  int
	lastQuery string
}

func (m *mockRetrievalService) IndexSource(_ context.Context, _ string, _ []domain.Fragment) error {
	return m.err
}

func (m *mockRetrievalService) Search(_ context.Context, query string, topK int) ([]domain.RankedFragment, error) {
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

func (m *mockRetrievalService) Load(_ context.Context) (int, error) {
	return len(m.results), m.err
}

func (m *mockRetrievalService) Sources(_ context.Context) ([]string, error) {
	return m.sources, m.err
}

func (m *mockRetrievalService) RemoveSource(_ context.Context, _ string) error {
	return m.err
}

func (m *mockRetrievalService) Clear(_ context.Context) error {
	return m.err
}

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct {
	bundle      domain.ContextBundle
	result      *domain.GroundedResult
	err         error
	lastRequest domain.ContentRequest
}

func (m *mockContextService) Assemble(_ string, _ int) domain.ContextBundle {
	return m.bundle
}

func (m *mockContextService) Compose(_ context.Context, req domain.ContentRequest) (*domain.GroundedResult, error) {
	m.lastRequest = req
	return m.result, m.err
}

// mockGenerationService is a mock implementation of driving.GenerationService.
type mockGenerationService struct {
	result   *domain.GenerationResult
	err      error
	state    domain.BreakerState
	resets   int
	lastOpts domain.GenerationOptions
}

func (m *mockGenerationService) Generate(
	_ context.Context,
	_ string,
	opts domain.GenerationOptions,
) (*domain.GenerationResult, error) {
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockGenerationService) BreakerState() domain.BreakerState {
	return m.state
}

func (m *mockGenerationService) ResetBreaker() {
	m.resets++
	m.state = domain.BreakerState{Status: domain.BreakerClosed, Threshold: m.state.Threshold}
}
