package domain

import (
	"errors"
	"time"
)

// Card-specific validation errors
var (
	// ErrCardStabilityNegative is returned when a card's stability is negative.
	ErrCardStabilityNegative = errors.New("card stability cannot be negative")

	// ErrCardDifficultyRange is returned when a reviewed card's difficulty
	// falls outside [1, 10].
	ErrCardDifficultyRange = errors.New("card difficulty must be within [1, 10]")

	// ErrCardCountersNegative is returned when reps, lapses, or learning
	// steps are negative.
	ErrCardCountersNegative = errors.New("card counters cannot be negative")

	// ErrCardStateInconsistent is returned when the state does not agree
	// with the review counters (New implies zero reps and no last review).
	ErrCardStateInconsistent = errors.New("card state inconsistent with review history")
)

// Card is the per-item scheduling record. It carries everything the
// scheduler needs to decide when the item should next be reviewed.
// Stability and Difficulty are meaningful only once Reps > 0.
type Card struct {
	Due           time.Time  `json:"due"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   float64    `json:"elapsed_days"`
	ScheduledDays float64    `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	LearningSteps int        `json:"learning_steps"`
	State         State      `json:"state"`
	LastReview    *time.Time `json:"last_review,omitempty"`
}

// NewCard creates an empty scheduling record for an item first seen at now.
// The card starts in the New state, immediately due, with zero counters.
func NewCard(now time.Time) Card {
	return Card{
		Due:   now,
		State: StateNew,
	}
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.Stability < 0 {
		return ErrCardStabilityNegative
	}

	if c.Reps < 0 || c.Lapses < 0 || c.LearningSteps < 0 {
		return ErrCardCountersNegative
	}

	if c.Reps > 0 && (c.Difficulty < 1 || c.Difficulty > 10) {
		return ErrCardDifficultyRange
	}

	newByState := c.State == StateNew
	newByHistory := c.Reps == 0 && c.LastReview == nil
	if newByState != newByHistory {
		return ErrCardStateInconsistent
	}

	return nil
}

// IsDue reports whether the card warrants review at the given time.
func (c *Card) IsDue(now time.Time) bool {
	return !c.Due.After(now)
}

// Clone returns a deep copy of the card. The LastReview pointer is
// copied by value so the clone shares no memory with the original.
func (c Card) Clone() Card {
	out := c
	if c.LastReview != nil {
		t := *c.LastReview
		out.LastReview = &t
	}
	return out
}
