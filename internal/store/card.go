package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/rote/internal/domain"
)

// CardStore defines the interface for card scheduling record persistence.
// Implementations must provide idempotent last-write-wins overwrite
// semantics: a session repeatedly saves the same key with monotonically
// advancing state.
type CardStore interface {
	// Load retrieves the card stored under key.
	// Returns ErrCardNotFound if no card exists for the key; callers
	// treat that as "untracked", not as a failure.
	Load(ctx context.Context, key string) (*domain.Card, error)

	// LoadMany retrieves the cards for the given keys in one pass.
	// Keys with no stored card are simply absent from the result map;
	// LoadMany never fails because of a missing key.
	LoadMany(ctx context.Context, keys []string) (map[string]*domain.Card, error)

	// Save upserts the card under key. The card must be valid according
	// to domain validation rules; validation errors are wrapped in
	// ErrInvalidEntity.
	Save(ctx context.Context, key string, card *domain.Card) error

	// Delete removes the card stored under key.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, key string) error

	// Keys lists every key with a stored card, in unspecified order.
	Keys(ctx context.Context) ([]string, error)

	// WithTx returns a CardStore bound to the given transaction, so a
	// caller can batch several saves atomically via RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
