package srs

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/phrazzld/rote/internal/domain"
)

// Scheduler configuration errors
var (
	// ErrInvalidRetention is returned when target retention is outside (0, 1).
	ErrInvalidRetention = errors.New("target retention out of range (0, 1)")

	// ErrInvalidMaxInterval is returned when the maximum interval is negative.
	ErrInvalidMaxInterval = errors.New("maximum interval must be positive")
)

// Default scheduling bounds. Product defaults, overridable per config.
const (
	DefaultTargetRetention = 0.9
	DefaultMaximumInterval = 365
)

// DefaultLearningSteps returns the default sub-day learning steps.
func DefaultLearningSteps() []time.Duration {
	return []time.Duration{time.Minute, 10 * time.Minute}
}

// DefaultRelearningSteps returns the default sub-day relearning steps.
func DefaultRelearningSteps() []time.Duration {
	return []time.Duration{10 * time.Minute}
}

// SchedulerConfig configures a Scheduler.
// Zero values produce sensible defaults; see field comments.
type SchedulerConfig struct {
	Weights         [17]float64     // zero → DefaultWeights
	TargetRetention float64         // zero → 0.9
	MaximumInterval int             // zero → 365
	LearningSteps   []time.Duration // nil → [1m, 10m]; empty → no steps
	RelearningSteps []time.Duration // nil → [10m]; empty → no steps
	SkipShortTerm   bool            // route new cards directly to Review
	DisableFuzz     bool            // zero false → fuzz enabled
	Seeder          Seeder          // nil → seed from (now, reps)
}

// Scheduler is the state machine over card review phases. It is built
// on the pure memory model and is safe to share across sessions: all
// its fields are set once at construction and never mutated.
type Scheduler struct {
	model           model
	learningSteps   []time.Duration
	relearningSteps []time.Duration
	skipShortTerm   bool
	disableFuzz     bool
	seeder          Seeder
}

// NewScheduler creates a Scheduler from the given config.
// Zero-value fields are filled with defaults; invalid values return an error.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	weights := cfg.Weights
	if weights == ([17]float64{}) {
		weights = DefaultWeights
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}

	retention := cfg.TargetRetention
	if retention == 0 {
		retention = DefaultTargetRetention
	}
	if retention <= 0 || retention >= 1 {
		return nil, fmt.Errorf("%w: %f", ErrInvalidRetention, retention)
	}

	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = DefaultMaximumInterval
	}
	if maxIvl < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxInterval, maxIvl)
	}

	learningSteps := cfg.LearningSteps
	if learningSteps == nil {
		learningSteps = DefaultLearningSteps()
	}

	relearningSteps := cfg.RelearningSteps
	if relearningSteps == nil {
		relearningSteps = DefaultRelearningSteps()
	}

	seeder := cfg.Seeder
	if seeder == nil {
		seeder = defaultSeeder
	}

	return &Scheduler{
		model: model{
			w:               weights,
			targetRetention: retention,
			maximumInterval: maxIvl,
		},
		learningSteps:   learningSteps,
		relearningSteps: relearningSteps,
		skipShortTerm:   cfg.SkipShortTerm,
		disableFuzz:     cfg.DisableFuzz,
		seeder:          seeder,
	}, nil
}

// Apply processes a review of the card at the given time and returns
// the updated card. The input card is not mutated, and the result is
// deterministic for identical (card, rating, now) and config. A rating
// outside Again..Easy is a caller contract violation and returns
// domain.ErrInvalidRating.
func (s *Scheduler) Apply(card domain.Card, rating domain.Rating, now time.Time) (domain.Card, error) {
	if !rating.IsValid() {
		return domain.Card{}, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	c := card.Clone()

	var elapsedDays, scheduledDays float64
	if c.LastReview != nil {
		elapsedDays = now.Sub(*c.LastReview).Hours() / 24
		if elapsedDays < 0 {
			elapsedDays = 0
		}
		scheduledDays = c.Due.Sub(*c.LastReview).Hours() / 24
	}

	s.updateMemory(&c, rating, elapsedDays)

	interval := s.transition(&c, rating)

	if !s.disableFuzz && c.State == domain.StateReview {
		if days := int(interval.Hours() / 24); days > 0 {
			rng := rand.New(rand.NewSource(s.seeder(card, now)))
			fuzzed := applyFuzz(days, s.model.maximumInterval, rng)
			interval = time.Duration(fuzzed) * 24 * time.Hour
		}
	}

	c.ElapsedDays = elapsedDays
	c.ScheduledDays = scheduledDays
	c.Due = now.Add(interval)
	lastReview := now
	c.LastReview = &lastReview
	c.Reps++

	return c, nil
}

// Preview returns the result of reviewing the card with each possible
// rating, without mutating the card. Preview(card, now)[r] equals
// Apply(card, r, now) for every rating r.
func (s *Scheduler) Preview(card domain.Card, now time.Time) map[domain.Rating]domain.Card {
	result := make(map[domain.Rating]domain.Card, 4)
	for _, r := range domain.Ratings() {
		c, _ := s.Apply(card, r, now)
		result[r] = c
	}
	return result
}

// Retrievability returns the modeled probability of recall for the card
// at the given time. Returns 0 if the card has never been reviewed.
func (s *Scheduler) Retrievability(card domain.Card, now time.Time) float64 {
	if card.LastReview == nil || card.Stability <= 0 {
		return 0
	}
	elapsed := now.Sub(*card.LastReview).Hours() / 24
	if elapsed < 0 {
		elapsed = 0
	}
	return s.model.retrievability(elapsed, card.Stability)
}

// updateMemory updates the card's stability and difficulty for the review.
func (s *Scheduler) updateMemory(c *domain.Card, rating domain.Rating, elapsedDays float64) {
	if c.Reps == 0 {
		// First stabilization.
		c.Stability = s.model.initStability(rating)
		c.Difficulty = s.model.initDifficulty(rating)
		return
	}

	// Stored records degraded by the per-field fallback may carry zero
	// stability or difficulty; clamp to the model floors first.
	stability := clampS(c.Stability)
	difficulty := clampD(c.Difficulty)

	r := s.model.retrievability(elapsedDays, stability)
	c.Stability = s.model.nextStability(difficulty, stability, r, rating)
	c.Difficulty = s.model.nextDifficulty(difficulty, rating)
}

// transition applies the state machine and returns the raw interval.
func (s *Scheduler) transition(c *domain.Card, rating domain.Rating) time.Duration {
	switch c.State {
	case domain.StateNew:
		return s.transitionNew(c, rating)
	case domain.StateLearning:
		return s.transitionStepped(c, rating, s.learningSteps)
	case domain.StateRelearning:
		return s.transitionStepped(c, rating, s.relearningSteps)
	default:
		return s.transitionReview(c, rating)
	}
}

// transitionNew handles the first review of a card. Easy graduates
// immediately; SkipShortTerm bypasses the learning phase entirely.
func (s *Scheduler) transitionNew(c *domain.Card, rating domain.Rating) time.Duration {
	if s.skipShortTerm || rating == domain.RatingEasy {
		return s.graduate(c)
	}
	c.State = domain.StateLearning
	c.LearningSteps = 0
	return s.transitionStepped(c, rating, s.learningSteps)
}

// transitionStepped handles Learning and Relearning state transitions.
func (s *Scheduler) transitionStepped(c *domain.Card, rating domain.Rating, steps []time.Duration) time.Duration {
	step := c.LearningSteps

	// Empty steps or step overflow → graduate to Review.
	if len(steps) == 0 || (step >= len(steps) && rating != domain.RatingAgain) {
		return s.graduate(c)
	}

	switch rating {
	case domain.RatingAgain:
		c.LearningSteps = 0
		return steps[0]

	case domain.RatingHard:
		if step == 0 && len(steps) == 1 {
			return time.Duration(float64(steps[0]) * 1.5)
		}
		if step == 0 && len(steps) >= 2 {
			return (steps[0] + steps[1]) / 2
		}
		return steps[step]

	case domain.RatingGood:
		next := step + 1
		if next >= len(steps) {
			// Last step → graduate.
			return s.graduate(c)
		}
		c.LearningSteps = next
		return steps[next]

	default:
		return s.graduate(c)
	}
}

// transitionReview handles Review state transitions. Again lapses into
// Relearning; all other ratings reschedule within Review.
func (s *Scheduler) transitionReview(c *domain.Card, rating domain.Rating) time.Duration {
	if rating == domain.RatingAgain {
		c.Lapses++
		if len(s.relearningSteps) > 0 {
			c.State = domain.StateRelearning
			c.LearningSteps = 0
			return s.relearningSteps[0]
		}
		// Empty relearning steps → stay in Review on the shrunken stability.
	}

	c.LearningSteps = 0
	days := s.model.nextInterval(c.Stability)
	return time.Duration(days) * 24 * time.Hour
}

// graduate transitions a card into the Review state.
func (s *Scheduler) graduate(c *domain.Card) time.Duration {
	c.State = domain.StateReview
	c.LearningSteps = 0
	days := s.model.nextInterval(c.Stability)
	return time.Duration(days) * 24 * time.Hour
}
