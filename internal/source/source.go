// Package source defines the ItemSource collaborator: anything able to
// enumerate reviewable items (key, display payload, and the stored card
// when one exists). The scheduling core consumes candidates; it never
// parses documents itself.
package source

import (
	"context"

	"github.com/phrazzld/rote/internal/domain"
)

// Candidate is one reviewable item offered by a source. Front and Back
// are opaque display payloads; the core never interprets them. Card is
// nil when the item has no scheduling record yet (untracked).
type Candidate struct {
	Key   string
	Front string
	Back  string
	Card  *domain.Card
}

// ItemSource enumerates review candidates in a stable order.
// The order is meaningful: due-date ties in the collector are broken by
// candidate position.
type ItemSource interface {
	// ListCandidates returns the candidates visible under the given
	// scope filter. An empty scope means everything. Implementations
	// attach the stored Card per candidate and leave it nil for
	// untracked items; a missing card is never an error.
	ListCandidates(ctx context.Context, scope string) ([]Candidate, error)
}
