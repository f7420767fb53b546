package store

import (
	"context"
	"time"

	"github.com/phrazzld/rote/internal/domain"
)

// ReviewLogStore defines the interface for the append-only review history.
type ReviewLogStore interface {
	// Append stores a review log entry. Entries are immutable once written.
	// Appending an entry with an already used ID returns ErrDuplicate.
	Append(ctx context.Context, log *domain.ReviewLog) error

	// ListSince returns all entries reviewed at or after since, ordered
	// by review time ascending.
	ListSince(ctx context.Context, since time.Time) ([]domain.ReviewLog, error)
}
