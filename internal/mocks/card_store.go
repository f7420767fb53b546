package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/store"
)

// Verify interface compliance at compile time
var _ store.CardStore = (*MockCardStore)(nil)

// MockCardStore implements store.CardStore for testing. By default it
// behaves like a working in-memory store; set the Fn fields to inject
// custom behavior or failures per method.
type MockCardStore struct {
	mu    sync.Mutex
	cards map[string]domain.Card

	// Custom behavior functions
	LoadFn     func(ctx context.Context, key string) (*domain.Card, error)
	LoadManyFn func(ctx context.Context, keys []string) (map[string]*domain.Card, error)
	SaveFn     func(ctx context.Context, key string, card *domain.Card) error
	DeleteFn   func(ctx context.Context, key string) error
	KeysFn     func(ctx context.Context) ([]string, error)
	WithTxFn   func(tx *sql.Tx) store.CardStore

	// Call tracking for verification
	SaveCalls struct {
		mu    sync.Mutex
		Count int
		Keys  []string
		Cards []domain.Card
	}
}

// NewMockCardStore creates an empty in-memory mock store.
func NewMockCardStore() *MockCardStore {
	return &MockCardStore{
		cards: make(map[string]domain.Card),
	}
}

// SetCard seeds the in-memory store with a card.
func (m *MockCardStore) SetCard(key string, card domain.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[key] = card.Clone()
}

// GetCard returns the stored card, bypassing the Load path.
func (m *MockCardStore) GetCard(key string) (domain.Card, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[key]
	return card.Clone(), ok
}

// Load implements the store.CardStore interface.
func (m *MockCardStore) Load(ctx context.Context, key string) (*domain.Card, error) {
	if m.LoadFn != nil {
		return m.LoadFn(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	card, ok := m.cards[key]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	out := card.Clone()
	return &out, nil
}

// LoadMany implements the store.CardStore interface.
func (m *MockCardStore) LoadMany(ctx context.Context, keys []string) (map[string]*domain.Card, error) {
	if m.LoadManyFn != nil {
		return m.LoadManyFn(ctx, keys)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]*domain.Card, len(keys))
	for _, key := range keys {
		if card, ok := m.cards[key]; ok {
			out := card.Clone()
			result[key] = &out
		}
	}
	return result, nil
}

// Save implements the store.CardStore interface.
func (m *MockCardStore) Save(ctx context.Context, key string, card *domain.Card) error {
	m.SaveCalls.mu.Lock()
	m.SaveCalls.Count++
	m.SaveCalls.Keys = append(m.SaveCalls.Keys, key)
	if card != nil {
		m.SaveCalls.Cards = append(m.SaveCalls.Cards, card.Clone())
	}
	m.SaveCalls.mu.Unlock()

	if m.SaveFn != nil {
		return m.SaveFn(ctx, key, card)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[key] = card.Clone()
	return nil
}

// Delete implements the store.CardStore interface.
func (m *MockCardStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[key]; !ok {
		return store.ErrCardNotFound
	}
	delete(m.cards, key)
	return nil
}

// Keys implements the store.CardStore interface.
func (m *MockCardStore) Keys(ctx context.Context) ([]string, error) {
	if m.KeysFn != nil {
		return m.KeysFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.cards))
	for key := range m.cards {
		keys = append(keys, key)
	}
	return keys, nil
}

// WithTx implements the store.CardStore interface. The mock has no
// real transactions; it returns itself so transactional code paths
// exercise the same in-memory state.
func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	if m.WithTxFn != nil {
		return m.WithTxFn(tx)
	}
	return m
}
