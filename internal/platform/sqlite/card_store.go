package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/platform/logger"
	"github.com/phrazzld/rote/internal/store"
)

// SQLiteCardStore implements the store.CardStore interface
// using a local SQLite database as the storage backend.
type SQLiteCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteCardStore creates a new SQLite implementation of the CardStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default
// logger will be used.
func NewSQLiteCardStore(db store.DBTX, logger *slog.Logger) *SQLiteCardStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure SQLiteCardStore implements store.CardStore interface
var _ store.CardStore = (*SQLiteCardStore)(nil)

// cardColumns is the scan column set shared by every card query.
const cardColumns = `key, due_ms, stability, difficulty, elapsed_days,
	scheduled_days, reps, lapses, learning_steps, state, last_review_ms`

// Load implements store.CardStore.Load.
// Returns store.ErrCardNotFound if no card exists for the key.
func (s *SQLiteCardStore) Load(ctx context.Context, key string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE key = ?`

	_, card, err := scanCard(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("key", key))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to load card",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load card %q: %w", key, err)
	}

	return card, nil
}

// LoadMany implements store.CardStore.LoadMany.
// Keys with no stored card are simply absent from the result map.
func (s *SQLiteCardStore) LoadMany(ctx context.Context, keys []string) (map[string]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := make(map[string]*domain.Card, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := `SELECT ` + cardColumns + ` FROM cards WHERE key IN (` + placeholders + `)`

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards",
			slog.Int("key_count", len(keys)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		key, card, err := scanCard(rows)
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
// It upserts the card under key with last-write-wins semantics; saving
// the same key twice leaves the second card in place.
func (s *SQLiteCardStore) Save(ctx context.Context, key string, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", store.ErrInvalidEntity)
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

	var lastReviewMS sql.NullInt64
	if card.LastReview != nil {
		lastReviewMS = sql.NullInt64{Int64: card.LastReview.UTC().UnixMilli(), Valid: true}
	}
	nowMS := time.Now().UTC().UnixMilli()

	query := `
		INSERT INTO cards (
			key, due_ms, stability, difficulty, elapsed_days,
			scheduled_days, reps, lapses, learning_steps, state,
			last_review_ms, created_at_ms, updated_at_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			due_ms = excluded.due_ms,
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			elapsed_days = excluded.elapsed_days,
			scheduled_days = excluded.scheduled_days,
			reps = excluded.reps,
			lapses = excluded.lapses,
			learning_steps = excluded.learning_steps,
			state = excluded.state,
			last_review_ms = excluded.last_review_ms,
			updated_at_ms = excluded.updated_at_ms
	`

	_, err := s.db.ExecContext(ctx, query,
		key,
		card.Due.UTC().UnixMilli(),
		card.Stability,
		card.Difficulty,
		card.ElapsedDays,
		card.ScheduledDays,
		card.Reps,
		card.Lapses,
		card.LearningSteps,
		card.State.String(),
		lastReviewMS,
		nowMS,
		nowMS,
	)
	if err != nil {
		log.Error("failed to save card",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save card %q: %w", key, err)
	}

	log.Debug("card saved",
		slog.String("key", key),
		slog.String("state", card.State.String()),
		slog.Time("due", card.Due))
	return nil
}

// Delete implements store.CardStore.Delete.
// Returns store.ErrCardNotFound if no card exists for the key.
func (s *SQLiteCardStore) Delete(ctx context.Context, key string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE key = ?`, key)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete card %q: %w", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete card %q: %w", key, err)
	}

	// If no rows were affected, the card didn't exist
	if rowsAffected == 0 {
		log.Debug("card not found for delete", slog.String("key", key))
		return store.ErrCardNotFound
	}

	log.Debug("card deleted", slog.String("key", key))
	return nil
}

// Keys implements store.CardStore.Keys.
func (s *SQLiteCardStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM cards ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list card keys: %w", err)
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
// It returns a store bound to the transaction, sharing the logger.
func (s *SQLiteCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &SQLiteCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanner abstracts *sql.Row and *sql.Rows for scanCard.
type scanner interface {
	Scan(dest ...any) error
}

// scanCard reads one card row. Every column is scanned as a nullable
// string and parsed with per-field fallbacks, so a corrupt value
// degrades that field (numerics to 0, state to New, timestamps to the
// zero time) instead of failing the row. Only a driver-level scan
// failure, including sql.ErrNoRows, is returned as an error.
func scanCard(row scanner) (string, *domain.Card, error) {
	var key string
	var due, stability, difficulty, elapsed, scheduled sql.NullString
	var reps, lapses, steps, state, lastReview sql.NullString

	err := row.Scan(&key, &due, &stability, &difficulty, &elapsed,
		&scheduled, &reps, &lapses, &steps, &state, &lastReview)
	if err != nil {
		return "", nil, err
	}

	card := &domain.Card{
		Due:           fieldTime(due),
		Stability:     fieldFloat(stability),
		Difficulty:    fieldFloat(difficulty),
		ElapsedDays:   fieldFloat(elapsed),
		ScheduledDays: fieldFloat(scheduled),
		Reps:          fieldCount(reps),
		Lapses:        fieldCount(lapses),
		LearningSteps: fieldCount(steps),
		State:         fieldState(state),
	}
	if lastReview.Valid {
		if t := fieldTime(lastReview); !t.IsZero() {
			card.LastReview = &t
		}
	}

	return key, card, nil
}

// fieldFloat parses a stored numeric; anything unparsable degrades to 0.
func fieldFloat(v sql.NullString) float64 {
	if !v.Valid {
		return 0
	}
	f, err := strconv.ParseFloat(v.String, 64)
	if err != nil {
		return 0
	}
	return f
}

// fieldCount parses a stored counter; unparsable or negative degrades to 0.
func fieldCount(v sql.NullString) int {
	if !v.Valid {
		return 0
	}
	n, err := strconv.Atoi(v.String)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// fieldTime parses stored UTC milliseconds; unparsable degrades to the
// zero time.
func fieldTime(v sql.NullString) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(v.String, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// fieldState parses a stored state name; unknown names degrade to New.
func fieldState(v sql.NullString) domain.State {
	state, _ := domain.ParseState(v.String)
	return state
}
