package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/rote/internal/config"
	"github.com/phrazzld/rote/internal/platform/postgres"
	"github.com/phrazzld/rote/internal/platform/sqlite"
	"github.com/phrazzld/rote/internal/redact"
	"github.com/phrazzld/rote/internal/store"
)

// storeSet bundles the opened backend with its store implementations.
type storeSet struct {
	DB    *sql.DB
	Cards store.CardStore
	Logs  store.ReviewLogStore
}

// Close releases the underlying database handle.
func (s *storeSet) Close() error {
	return s.DB.Close()
}

// openStores opens the configured backend and wires the card and review
// log stores over it. Postgres connection errors are redacted before
// they can surface with credentials embedded.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storeSet, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Storage.URL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store (%s): %s",
				redact.URL(cfg.Storage.URL), redact.Error(err))
		}
		return &storeSet{
			DB:    db,
			Cards: postgres.NewPostgresCardStore(db, log),
			Logs:  postgres.NewPostgresReviewLogStore(db, log),
		}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.Storage.Path, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &storeSet{
			DB:    db,
			Cards: sqlite.NewSQLiteCardStore(db, log),
			Logs:  sqlite.NewSQLiteReviewLogStore(db, log),
		}, nil

	default:
		// config validation rejects anything else before we get here
		return nil, errors.New("unknown storage backend: " + cfg.Storage.Backend)
	}
}
