package review

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/platform/logger"
	"github.com/phrazzld/rote/internal/source"
	"github.com/phrazzld/rote/internal/store"
)

// SeedNew creates empty scheduling records for up to limit untracked
// candidates, in candidate order, inside one transaction: either every
// seed lands or none does. It returns a copy of the candidate list with
// the fresh cards attached (seeded items are immediately due) and the
// number of cards created. A limit of zero seeds nothing.
func SeedNew(
	ctx context.Context,
	db *sql.DB,
	cards store.CardStore,
	candidates []source.Candidate,
	limit int,
	now time.Time,
) ([]source.Candidate, int, error) {
	out := make([]source.Candidate, len(candidates))
	copy(out, candidates)

	if limit <= 0 {
		return out, 0, nil
	}

	log := logger.FromContext(ctx)

	// Pick the untracked candidates to seed, preserving source order.
	seedIdx := make([]int, 0, limit)
	for i, cand := range out {
		if cand.Card != nil {
			continue
		}
		seedIdx = append(seedIdx, i)
		if len(seedIdx) == limit {
			break
		}
	}
	if len(seedIdx) == 0 {
		return out, 0, nil
	}

	seeded := make(map[int]domain.Card, len(seedIdx))
	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := cards.WithTx(tx)
		for _, i := range seedIdx {
			card := domain.NewCard(now)
			if err := txCards.Save(ctx, out[i].Key, &card); err != nil {
				return fmt.Errorf("failed to seed card %q: %w", out[i].Key, err)
			}
			seeded[i] = card
		}
		return nil
	})
	if err != nil {
		return out, 0, err
	}

	for i, card := range seeded {
		c := card
		out[i].Card = &c
	}

	log.Debug("seeded new cards",
		slog.Int("count", len(seeded)),
		slog.Int("limit", limit))
	return out, len(seeded), nil
}
