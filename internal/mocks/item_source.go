package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/rote/internal/source"
)

// Verify interface compliance at compile time
var _ source.ItemSource = (*MockItemSource)(nil)

// MockItemSource implements source.ItemSource for testing.
type MockItemSource struct {
	// Custom behavior function
	ListCandidatesFn func(ctx context.Context, scope string) ([]source.Candidate, error)

	// Default response values
	Candidates []source.Candidate
	Err        error

	// Call tracking for verification
	ListCandidatesCalls struct {
		mu     sync.Mutex
		Count  int
		Scopes []string
	}
}

// ListCandidates implements the source.ItemSource interface.
func (m *MockItemSource) ListCandidates(ctx context.Context, scope string) ([]source.Candidate, error) {
	m.ListCandidatesCalls.mu.Lock()
	m.ListCandidatesCalls.Count++
	m.ListCandidatesCalls.Scopes = append(m.ListCandidatesCalls.Scopes, scope)
	m.ListCandidatesCalls.mu.Unlock()

	if m.ListCandidatesFn != nil {
		return m.ListCandidatesFn(ctx, scope)
	}
	return m.Candidates, m.Err
}
