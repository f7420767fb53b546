package domain

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// ReviewLog-specific validation errors
var (
	// ErrReviewLogIDEmpty is returned when a review log ID is empty.
	ErrReviewLogIDEmpty = errors.New("review log ID cannot be empty")

	// ErrReviewLogKeyEmpty is returned when a review log's card key is empty.
	ErrReviewLogKeyEmpty = errors.New("review log card key cannot be empty")
)

// ReviewLog records a single completed review: which card, what the
// user answered, and the scheduling outcome. Logs are append-only and
// feed session statistics and history queries.
type ReviewLog struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Rating       Rating    `json:"rating"`
	ReviewedAt   time.Time `json:"reviewed_at"`
	State        State     `json:"state"`
	IntervalDays float64   `json:"interval_days"`
}

// NewReviewLog creates a review log entry with a fresh ULID.
// State and IntervalDays describe the card after the review was applied.
func NewReviewLog(
	key string,
	rating Rating,
	reviewedAt time.Time,
	state State,
	intervalDays float64,
) (*ReviewLog, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(reviewedAt), entropy)
	if err != nil {
		return nil, err
	}

	log := &ReviewLog{
		ID:           id.String(),
		Key:          key,
		Rating:       rating,
		ReviewedAt:   reviewedAt,
		State:        state,
		IntervalDays: intervalDays,
	}

	if err := log.Validate(); err != nil {
		return nil, err
	}

	return log, nil
}

// Validate checks if the ReviewLog has valid data.
// Returns an error if any field fails validation.
func (l *ReviewLog) Validate() error {
	if l.ID == "" {
		return ErrReviewLogIDEmpty
	}

	if l.Key == "" {
		return ErrReviewLogKeyEmpty
	}

	if !l.Rating.IsValid() {
		return ErrInvalidRating
	}

	if !l.State.IsValid() {
		return ErrInvalidState
	}

	return nil
}
