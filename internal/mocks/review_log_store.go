package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/store"
)

// Verify interface compliance at compile time
var _ store.ReviewLogStore = (*MockReviewLogStore)(nil)

// MockReviewLogStore implements store.ReviewLogStore for testing with
// an in-memory append log. Set AppendFn to inject failures.
type MockReviewLogStore struct {
	mu      sync.Mutex
	entries []domain.ReviewLog

	// Custom behavior functions
	AppendFn    func(ctx context.Context, log *domain.ReviewLog) error
	ListSinceFn func(ctx context.Context, since time.Time) ([]domain.ReviewLog, error)

	// Call tracking for verification
	AppendCalls struct {
		mu    sync.Mutex
		Count int
		Logs  []domain.ReviewLog
	}
}

// NewMockReviewLogStore creates an empty in-memory review log store.
func NewMockReviewLogStore() *MockReviewLogStore {
	return &MockReviewLogStore{}
}

// Entries returns a copy of everything appended so far.
func (m *MockReviewLogStore) Entries() []domain.ReviewLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ReviewLog, len(m.entries))
	copy(out, m.entries)
	return out
}

// Append implements the store.ReviewLogStore interface.
func (m *MockReviewLogStore) Append(ctx context.Context, log *domain.ReviewLog) error {
	m.AppendCalls.mu.Lock()
	m.AppendCalls.Count++
	if log != nil {
		m.AppendCalls.Logs = append(m.AppendCalls.Logs, *log)
	}
	m.AppendCalls.mu.Unlock()

	if m.AppendFn != nil {
		return m.AppendFn(ctx, log)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.ID == log.ID {
			return store.ErrDuplicate
		}
	}
	m.entries = append(m.entries, *log)
	return nil
}

// ListSince implements the store.ReviewLogStore interface.
func (m *MockReviewLogStore) ListSince(ctx context.Context, since time.Time) ([]domain.ReviewLog, error) {
	if m.ListSinceFn != nil {
		return m.ListSinceFn(ctx, since)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ReviewLog
	for _, entry := range m.entries {
		if !entry.ReviewedAt.Before(since) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReviewedAt.Before(out[j].ReviewedAt)
	})
	return out, nil
}
