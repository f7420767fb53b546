package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/domain/srs"
	"github.com/phrazzld/rote/internal/platform/logger"
	"github.com/phrazzld/rote/internal/store"
)

// Common error types for the session controller
var (
	// ErrSessionActive indicates Start was called while a session is in
	// progress. Cancel or finish the current session first.
	ErrSessionActive = errors.New("session already active")

	// ErrNotRevealed indicates Rate was called before the answer was
	// revealed (or outside an active session).
	ErrNotRevealed = errors.New("answer not revealed")
)

// Phase is the controller's position in the session state machine.
type Phase int

// Session phases, in lifecycle order.
const (
	PhaseIdle Phase = iota
	PhaseShowingHidden
	PhaseShowingRevealed
	PhaseComplete
)

// String implements fmt.Stringer for log output.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseShowingHidden:
		return "showing_hidden"
	case PhaseShowingRevealed:
		return "showing_revealed"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// SessionEntry is one item queued for review: the key it is stored
// under, its scheduling record, and the opaque display payloads.
type SessionEntry struct {
	Key   string
	Card  domain.Card
	Front string
	Back  string
}

// Tally counts reviews per rating within one session.
type Tally struct {
	Again int
	Hard  int
	Good  int
	Easy  int
}

// Total returns the number of reviews counted.
func (t Tally) Total() int {
	return t.Again + t.Hard + t.Good + t.Easy
}

// add increments the counter for the given rating.
func (t *Tally) add(rating domain.Rating) {
	switch rating {
	case domain.RatingAgain:
		t.Again++
	case domain.RatingHard:
		t.Hard++
	case domain.RatingGood:
		t.Good++
	case domain.RatingEasy:
		t.Easy++
	}
}

// StepResult describes the outcome of rating one entry.
type StepResult struct {
	// Key identifies the rated entry.
	Key string
	// Rating is the rating that was applied.
	Rating domain.Rating
	// Card is the scheduling record after the review was applied.
	Card domain.Card
	// SaveErr is the persistence outcome. A failed save does not stop
	// the session; callers decide whether to surface or retry it.
	SaveErr error
	// Index is the zero-based position of the rated entry.
	Index int
	// Total is the session queue length.
	Total int
	// Done reports whether this was the last entry.
	Done bool
}

// Controller walks a queue of due entries through the
// hidden → revealed → rated cycle, applying the scheduler and
// persisting each outcome. It is single-threaded by design: exactly one
// goroutine drives it, and the only suspension point is the store call
// inside Rate.
type Controller struct {
	scheduler *srs.Scheduler
	cards     store.CardStore
	logs      store.ReviewLogStore
	logger    *slog.Logger
	clock     func() time.Time

	sessionID string
	phase     Phase
	queue     []SessionEntry
	cursor    int
	tally     Tally
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used outside request contexts.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock injects the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithReviewLog attaches a review history store. Appends are
// best-effort: a failed append is logged and never fails the step.
func WithReviewLog(logs store.ReviewLogStore) Option {
	return func(c *Controller) {
		c.logs = logs
	}
}

// New creates an idle session controller.
// Panics if scheduler or cards is nil; both are required dependencies.
func New(scheduler *srs.Scheduler, cards store.CardStore, opts ...Option) *Controller {
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}

	c := &Controller{
		scheduler: scheduler,
		cards:     cards,
		logger:    slog.Default(),
		clock:     func() time.Time { return time.Now().UTC() },
		phase:     PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "review_session"))
	return c
}

// Start begins a session over the given entries. The queue is
// snapshotted: the controller works on detached copies, so the caller's
// slice and cards stay untouched. An empty queue completes immediately.
// Returns ErrSessionActive while a previous session is still running.
func (c *Controller) Start(ctx context.Context, entries []SessionEntry) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if c.phase == PhaseShowingHidden || c.phase == PhaseShowingRevealed {
		return ErrSessionActive
	}

	c.sessionID = uuid.New().String()
	c.cursor = 0
	c.tally = Tally{}

	c.queue = make([]SessionEntry, len(entries))
	for i, entry := range entries {
		entry.Card = entry.Card.Clone()
		c.queue[i] = entry
	}

	if len(c.queue) == 0 {
		c.phase = PhaseComplete
		log.Debug("session complete on start, nothing due",
			slog.String("session_id", c.sessionID))
		return nil
	}

	c.phase = PhaseShowingHidden
	log.Debug("session started",
		slog.String("session_id", c.sessionID),
		slog.Int("queue_length", len(c.queue)))
	return nil
}

// Current returns the entry under review. The second return is false
// once the session is complete, cancelled, or never started.
func (c *Controller) Current() (SessionEntry, bool) {
	if c.phase != PhaseShowingHidden && c.phase != PhaseShowingRevealed {
		return SessionEntry{}, false
	}
	return c.queue[c.cursor], true
}

// Reveal uncovers the answer for the current entry. Revealing an
// already revealed entry, or anything outside an active session, is a
// no-op.
func (c *Controller) Reveal() {
	if c.phase == PhaseShowingHidden {
		c.phase = PhaseShowingRevealed
	}
}

// Rate applies the rating to the current entry: the scheduler computes
// the updated card, the store persists it, the optional review log
// records it, and the cursor advances. Only legal after Reveal;
// returns ErrNotRevealed otherwise. An invalid rating propagates
// domain.ErrInvalidRating from the scheduler and does not advance.
//
// A failed save is reported in StepResult.SaveErr, never swallowed and
// never retried here; the session continues on the in-memory card.
func (c *Controller) Rate(ctx context.Context, rating domain.Rating) (StepResult, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if c.phase != PhaseShowingRevealed {
		return StepResult{}, ErrNotRevealed
	}

	entry := c.queue[c.cursor]
	now := c.clock()

	updated, err := c.scheduler.Apply(entry.Card, rating, now)
	if err != nil {
		return StepResult{}, fmt.Errorf("failed to apply review: %w", err)
	}

	saveErr := c.cards.Save(ctx, entry.Key, &updated)
	if saveErr != nil {
		log.Error("failed to save review outcome",
			slog.String("session_id", c.sessionID),
			slog.String("key", entry.Key),
			slog.String("error", saveErr.Error()))
	}

	c.appendLog(ctx, log, entry.Key, rating, updated, now)

	c.tally.add(rating)

	result := StepResult{
		Key:     entry.Key,
		Rating:  rating,
		Card:    updated,
		SaveErr: saveErr,
		Index:   c.cursor,
		Total:   len(c.queue),
	}

	c.cursor++
	if c.cursor >= len(c.queue) {
		c.phase = PhaseComplete
		result.Done = true
		log.Debug("session complete",
			slog.String("session_id", c.sessionID),
			slog.Int("reviewed", c.tally.Total()))
	} else {
		c.phase = PhaseShowingHidden
	}

	log.Debug("review applied",
		slog.String("session_id", c.sessionID),
		slog.String("key", entry.Key),
		slog.String("rating", rating.String()),
		slog.String("state", updated.State.String()),
		slog.Time("due", updated.Due))

	return result, nil
}

// appendLog records the review in the history store when one is
// attached. Failures are logged and dropped; history is best-effort.
func (c *Controller) appendLog(
	ctx context.Context,
	log *slog.Logger,
	key string,
	rating domain.Rating,
	card domain.Card,
	now time.Time,
) {
	if c.logs == nil {
		return
	}

	intervalDays := card.Due.Sub(now).Hours() / 24
	entry, err := domain.NewReviewLog(key, rating, now, card.State, intervalDays)
	if err == nil {
		err = c.logs.Append(ctx, entry)
	}
	if err != nil {
		log.Warn("failed to append review log",
			slog.String("session_id", c.sessionID),
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// Cancel abandons the session from any state and returns the
// controller to Idle. The queue is discarded; reviews already saved
// stand. Callers wanting a summary must read Stats before cancelling.
func (c *Controller) Cancel() {
	if c.phase == PhaseShowingHidden || c.phase == PhaseShowingRevealed {
		c.logger.Debug("session cancelled",
			slog.String("session_id", c.sessionID),
			slog.Int("reviewed", c.tally.Total()),
			slog.Int("remaining", len(c.queue)-c.cursor))
	}
	c.phase = PhaseIdle
	c.queue = nil
	c.cursor = 0
	c.tally = Tally{}
	c.sessionID = ""
}

// Stats returns the per-rating tally for the session.
func (c *Controller) Stats() Tally {
	return c.tally
}

// Reviewed returns how many entries have been rated so far.
func (c *Controller) Reviewed() int {
	return c.cursor
}

// Len returns the session queue length.
func (c *Controller) Len() int {
	return len(c.queue)
}

// Phase returns the controller's current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Preview exposes the scheduler's four projected outcomes for the
// current entry, so a presenter can show what each rating would do.
// Returns false outside an active session.
func (c *Controller) Preview() (map[domain.Rating]domain.Card, bool) {
	entry, ok := c.Current()
	if !ok {
		return nil, false
	}
	return c.scheduler.Preview(entry.Card, c.clock()), true
}

// Now returns the session clock's current time, so presenters can
// format projected due dates against the same reference the scheduler
// sees.
func (c *Controller) Now() time.Time {
	return c.clock()
}
