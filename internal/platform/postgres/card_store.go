package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/platform/logger"
	"github.com/phrazzld/rote/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

const pgCardColumns = `key, due, stability, difficulty, elapsed_days,
	scheduled_days, reps, lapses, learning_steps, state, last_review`

// Load implements store.CardStore.Load.
// Returns store.ErrCardNotFound when no card exists for the key.
func (s *PostgresCardStore) Load(ctx context.Context, key string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + pgCardColumns + `
		FROM cards
		WHERE key = $1
	`

	card, _, err := scanPgCard(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("key", key))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to load card",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load card: %w", MapError(err))
	}

	return card, nil
}

// LoadMany implements store.CardStore.LoadMany.
// Missing keys are absent from the result map; they are never an error.
func (s *PostgresCardStore) LoadMany(
	ctx context.Context,
	keys []string,
) (map[string]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := make(map[string]*domain.Card, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = key
	}

	query := `
		SELECT ` + pgCardColumns + `
		FROM cards
		WHERE key IN (` + strings.Join(placeholders, ", ") + `)
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to load cards",
			slog.Int("key_count", len(keys)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load cards: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		card, key, err := scanPgCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		result[key] = card
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card rows: %w", err)
	}

	return result, nil
}

// Save implements store.CardStore.Save.
// The card is validated before writing; validation failures are wrapped
// in store.ErrInvalidEntity. Saving an existing key overwrites the row.
func (s *PostgresCardStore) Save(ctx context.Context, key string, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if key == "" {
		return fmt.Errorf("%w: card key cannot be empty", store.ErrInvalidEntity)
	}
	if card == nil {
		return fmt.Errorf("%w: card cannot be nil", store.ErrInvalidEntity)
	}
	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during save",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var lastReview sql.NullTime
	if card.LastReview != nil {
		lastReview = sql.NullTime{
			Time:  card.LastReview.UTC().Truncate(time.Millisecond),
			Valid: true,
		}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)

	query := `
		INSERT INTO cards (key, due, stability, difficulty, elapsed_days,
			scheduled_days, reps, lapses, learning_steps, state, last_review,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (key) DO UPDATE SET
			due = EXCLUDED.due,
			stability = EXCLUDED.stability,
			difficulty = EXCLUDED.difficulty,
			elapsed_days = EXCLUDED.elapsed_days,
			scheduled_days = EXCLUDED.scheduled_days,
			reps = EXCLUDED.reps,
			lapses = EXCLUDED.lapses,
			learning_steps = EXCLUDED.learning_steps,
			state = EXCLUDED.state,
			last_review = EXCLUDED.last_review,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		key,
		card.Due.UTC().Truncate(time.Millisecond),
		card.Stability,
		card.Difficulty,
		card.ElapsedDays,
		card.ScheduledDays,
		card.Reps,
		card.Lapses,
		card.LearningSteps,
		card.State.String(),
		lastReview,
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save card",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save card: %w", MapError(err))
	}

	log.Debug("card saved",
		slog.String("key", key),
		slog.String("state", card.State.String()),
		slog.Time("due", card.Due))
	return nil
}

// Delete implements store.CardStore.Delete.
// Returns store.ErrCardNotFound when the card does not exist.
func (s *PostgresCardStore) Delete(ctx context.Context, key string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, "DELETE FROM cards WHERE key = $1", key)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete card: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, "card"); err != nil {
		log.Debug("card not found for delete", slog.String("key", key))
		return fmt.Errorf("%w: %s", store.ErrCardNotFound, key)
	}

	log.Debug("card deleted", slog.String("key", key))
	return nil
}

// Keys implements store.CardStore.Keys.
func (s *PostgresCardStore) Keys(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, "SELECT key FROM cards ORDER BY key")
	if err != nil {
		log.Error("failed to list card keys", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list card keys: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan card key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card keys: %w", err)
	}

	return keys, nil
}

// WithTx implements store.CardStore.WithTx.
// It returns a new PostgresCardStore that uses the provided transaction.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanPgCard reads one card row. PostgreSQL's column types keep values
// well formed, so scans are strict; the degradation rules still apply
// to the fields a typed row can misrepresent: unknown state names read
// as New and negative counters read as zero.
func scanPgCard(row interface{ Scan(dest ...any) error }) (*domain.Card, string, error) {
	var (
		key        string
		card       domain.Card
		state      string
		lastReview sql.NullTime
	)

	err := row.Scan(
		&key,
		&card.Due,
		&card.Stability,
		&card.Difficulty,
		&card.ElapsedDays,
		&card.ScheduledDays,
		&card.Reps,
		&card.Lapses,
		&card.LearningSteps,
		&state,
		&lastReview,
	)
	if err != nil {
		return nil, "", err
	}

	card.Due = card.Due.UTC()
	card.State, _ = domain.ParseState(state)
	if card.Reps < 0 {
		card.Reps = 0
	}
	if card.Lapses < 0 {
		card.Lapses = 0
	}
	if card.LearningSteps < 0 {
		card.LearningSteps = 0
	}
	if lastReview.Valid {
		t := lastReview.Time.UTC()
		card.LastReview = &t
	}

	return &card, key, nil
}
