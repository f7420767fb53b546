package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/platform/logger"
	"github.com/phrazzld/rote/internal/store"
)

// PostgresReviewLogStore implements the store.ReviewLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface. If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure PostgresReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// Append implements store.ReviewLogStore.Append.
// Returns store.ErrDuplicate when the entry ID was already used.
func (s *PostgresReviewLogStore) Append(ctx context.Context, entry *domain.ReviewLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if entry == nil {
		return fmt.Errorf("%w: review log cannot be nil", store.ErrInvalidEntity)
	}
	if err := entry.Validate(); err != nil {
		log.Warn("review log validation failed during append",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_logs (id, key, rating, reviewed_at, state, interval_days)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.Key,
		entry.Rating.String(),
		entry.ReviewedAt.UTC().Truncate(time.Millisecond),
		entry.State.String(),
		entry.IntervalDays,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate review log id",
				slog.String("id", entry.ID),
				slog.String("key", entry.Key))
			return fmt.Errorf("%w: review log %s", store.ErrDuplicate, entry.ID)
		}
		log.Error("failed to append review log",
			slog.String("id", entry.ID),
			slog.String("key", entry.Key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to append review log: %w", MapError(err))
	}

	return nil
}

// ListSince implements store.ReviewLogStore.ListSince.
// Entries are returned ordered by review time ascending; the since
// boundary is inclusive.
func (s *PostgresReviewLogStore) ListSince(
	ctx context.Context,
	since time.Time,
) ([]domain.ReviewLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, key, rating, reviewed_at, state, interval_days
		FROM review_logs
		WHERE reviewed_at >= $1
		ORDER BY reviewed_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, since.UTC())
	if err != nil {
		log.Error("failed to query review logs",
			slog.Time("since", since),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list review logs: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.ReviewLog
	for rows.Next() {
		var entry domain.ReviewLog
		var rating, state string

		err := rows.Scan(&entry.ID, &entry.Key, &rating, &entry.ReviewedAt,
			&state, &entry.IntervalDays)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}

		if err := entry.Rating.UnmarshalText([]byte(rating)); err != nil {
			return nil, fmt.Errorf("failed to parse review log rating: %w", err)
		}
		entry.State, _ = domain.ParseState(state)
		entry.ReviewedAt = entry.ReviewedAt.UTC()

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review log rows: %w", err)
	}

	return entries, nil
}
