package review_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/domain/srs"
	"github.com/phrazzld/rote/internal/mocks"
	"github.com/phrazzld/rote/internal/service/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionTime = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

// newTestScheduler builds a deterministic scheduler for session tests.
func newTestScheduler(t *testing.T) *srs.Scheduler {
	t.Helper()
	scheduler, err := srs.NewScheduler(srs.SchedulerConfig{DisableFuzz: true})
	require.NoError(t, err)
	return scheduler
}

// newEntries builds session entries over fresh (New) cards.
func newEntries(keys ...string) []review.SessionEntry {
	entries := make([]review.SessionEntry, len(keys))
	for i, key := range keys {
		entries[i] = review.SessionEntry{
			Key:   key,
			Card:  domain.NewCard(sessionTime),
			Front: "Q " + key,
			Back:  "A " + key,
		}
	}
	return entries
}

// rateCurrent reveals and rates the current entry in one move.
func rateCurrent(
	t *testing.T,
	ctrl *review.Controller,
	rating domain.Rating,
) review.StepResult {
	t.Helper()
	ctrl.Reveal()
	result, err := ctrl.Rate(context.Background(), rating)
	require.NoError(t, err)
	return result
}

func TestSessionAllGood(t *testing.T) {
	cards := mocks.NewMockCardStore()
	ctrl := review.New(newTestScheduler(t), cards,
		review.WithClock(func() time.Time { return sessionTime }))

	require.NoError(t, ctrl.Start(context.Background(), newEntries("a", "b", "c")))
	assert.Equal(t, review.PhaseShowingHidden, ctrl.Phase())
	assert.Equal(t, 3, ctrl.Len())

	for i := 0; i < 3; i++ {
		entry, ok := ctrl.Current()
		require.True(t, ok)

		result := rateCurrent(t, ctrl, domain.RatingGood)
		assert.Equal(t, entry.Key, result.Key)
		assert.Equal(t, i, result.Index)
		assert.Equal(t, 3, result.Total)
		assert.NoError(t, result.SaveErr)
		assert.Equal(t, 1, result.Card.Reps)
		assert.Equal(t, domain.StateLearning, result.Card.State)
	}

	assert.Equal(t, review.PhaseComplete, ctrl.Phase())
	assert.Equal(t, review.Tally{Good: 3}, ctrl.Stats())
	assert.Equal(t, 3, ctrl.Reviewed())

	_, ok := ctrl.Current()
	assert.False(t, ok, "Current should report no entry once complete")

	assert.Equal(t, 3, cards.SaveCalls.Count)
	saved, ok := cards.GetCard("b")
	require.True(t, ok)
	assert.Equal(t, 1, saved.Reps)
	require.NotNil(t, saved.LastReview)
	assert.True(t, saved.LastReview.Equal(sessionTime))
}

func TestStartEmptyCompletesImmediately(t *testing.T) {
	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore())

	require.NoError(t, ctrl.Start(context.Background(), nil))

	assert.Equal(t, review.PhaseComplete, ctrl.Phase())
	assert.Equal(t, 0, ctrl.Len())
	assert.Equal(t, 0, ctrl.Stats().Total())

	_, ok := ctrl.Current()
	assert.False(t, ok)
}

func TestStartWhileActive(t *testing.T) {
	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore())

	require.NoError(t, ctrl.Start(context.Background(), newEntries("a")))

	err := ctrl.Start(context.Background(), newEntries("b"))
	assert.ErrorIs(t, err, review.ErrSessionActive)

	// A completed session can be restarted.
	rateCurrent(t, ctrl, domain.RatingGood)
	require.Equal(t, review.PhaseComplete, ctrl.Phase())
	assert.NoError(t, ctrl.Start(context.Background(), newEntries("b")))
	assert.Equal(t, review.Tally{}, ctrl.Stats(), "restart resets the tally")
}

func TestRateBeforeReveal(t *testing.T) {
	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore())
	require.NoError(t, ctrl.Start(context.Background(), newEntries("a")))

	_, err := ctrl.Rate(context.Background(), domain.RatingGood)
	assert.ErrorIs(t, err, review.ErrNotRevealed)
	assert.Equal(t, review.PhaseShowingHidden, ctrl.Phase(), "a rejected rate must not advance")
}

func TestRateInvalidRating(t *testing.T) {
	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore())
	require.NoError(t, ctrl.Start(context.Background(), newEntries("a")))
	ctrl.Reveal()

	_, err := ctrl.Rate(context.Background(), domain.Rating(0))
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	assert.Equal(t, review.PhaseShowingRevealed, ctrl.Phase(),
		"an invalid rating leaves the session where it was")
	assert.Equal(t, 0, ctrl.Reviewed())

	// The entry can still be rated normally afterwards.
	result, err := ctrl.Rate(context.Background(), domain.RatingGood)
	require.NoError(t, err)
	assert.Equal(t, "a", result.Key)
}

func TestSaveFailureDoesNotStopSession(t *testing.T) {
	saveErr := errors.New("disk full")
	cards := mocks.NewMockCardStore()
	cards.SaveFn = func(ctx context.Context, key string, card *domain.Card) error {
		if key == "b" {
			return saveErr
		}
		return nil
	}

	ctrl := review.New(newTestScheduler(t), cards,
		review.WithClock(func() time.Time { return sessionTime }))
	require.NoError(t, ctrl.Start(context.Background(), newEntries("a", "b", "c")))

	first := rateCurrent(t, ctrl, domain.RatingGood)
	assert.NoError(t, first.SaveErr)

	failed := rateCurrent(t, ctrl, domain.RatingGood)
	assert.ErrorIs(t, failed.SaveErr, saveErr, "save outcome rides in the step result")
	assert.Equal(t, 1, failed.Card.Reps, "the in-memory card still advances")
	assert.Equal(t, review.PhaseShowingHidden, ctrl.Phase(), "the session continues")

	entry, ok := ctrl.Current()
	require.True(t, ok)
	assert.Equal(t, "c", entry.Key)

	last := rateCurrent(t, ctrl, domain.RatingGood)
	assert.True(t, last.Done)
	assert.Equal(t, review.Tally{Good: 3}, ctrl.Stats(),
		"a failed save still counts as a completed review")
}

func TestCancelDiscardsSession(t *testing.T) {
	cards := mocks.NewMockCardStore()
	ctrl := review.New(newTestScheduler(t), cards)
	require.NoError(t, ctrl.Start(context.Background(), newEntries("a", "b")))

	rateCurrent(t, ctrl, domain.RatingHard)
	ctrl.Cancel()

	assert.Equal(t, review.PhaseIdle, ctrl.Phase())
	assert.Equal(t, 0, ctrl.Len())
	assert.Equal(t, review.Tally{}, ctrl.Stats())

	_, ok := ctrl.Current()
	assert.False(t, ok)

	// The review applied before cancelling stands.
	saved, ok := cards.GetCard("a")
	require.True(t, ok)
	assert.Equal(t, 1, saved.Reps)
}

func TestReviewLogAppended(t *testing.T) {
	logs := mocks.NewMockReviewLogStore()
	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore(),
		review.WithClock(func() time.Time { return sessionTime }),
		review.WithReviewLog(logs))

	require.NoError(t, ctrl.Start(context.Background(), newEntries("a")))
	rateCurrent(t, ctrl, domain.RatingGood)

	require.Equal(t, 1, logs.AppendCalls.Count)
	entry := logs.AppendCalls.Logs[0]
	assert.Equal(t, "a", entry.Key)
	assert.Equal(t, domain.RatingGood, entry.Rating)
	assert.Equal(t, domain.StateLearning, entry.State)
	assert.True(t, entry.ReviewedAt.Equal(sessionTime))
	assert.NotEmpty(t, entry.ID)

	since, err := logs.ListSince(context.Background(), sessionTime.Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, since, 1)
}

func TestReviewLogFailureDoesNotFailStep(t *testing.T) {
	logs := mocks.NewMockReviewLogStore()
	logs.AppendFn = func(ctx context.Context, log *domain.ReviewLog) error {
		return errors.New("log store down")
	}

	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore(),
		review.WithReviewLog(logs))
	require.NoError(t, ctrl.Start(context.Background(), newEntries("a")))

	result := rateCurrent(t, ctrl, domain.RatingGood)
	assert.NoError(t, result.SaveErr, "history is best-effort; the step outcome is unaffected")
	assert.True(t, result.Done)
}

func TestRevealIsIdempotent(t *testing.T) {
	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore())
	require.NoError(t, ctrl.Start(context.Background(), newEntries("a")))

	ctrl.Reveal()
	ctrl.Reveal()
	assert.Equal(t, review.PhaseShowingRevealed, ctrl.Phase())

	_, err := ctrl.Rate(context.Background(), domain.RatingEasy)
	assert.NoError(t, err)
}

func TestPreviewMatchesRate(t *testing.T) {
	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore(),
		review.WithClock(func() time.Time { return sessionTime }))
	require.NoError(t, ctrl.Start(context.Background(), newEntries("a")))

	projections, ok := ctrl.Preview()
	require.True(t, ok)
	require.Len(t, projections, 4)

	result := rateCurrent(t, ctrl, domain.RatingGood)
	assert.Equal(t, projections[domain.RatingGood], result.Card,
		"the projection shown for a rating must equal the applied outcome")

	_, ok = ctrl.Preview()
	assert.False(t, ok, "no projections once the session is complete")
}

func TestStartSnapshotsEntries(t *testing.T) {
	ctrl := review.New(newTestScheduler(t), mocks.NewMockCardStore())

	entries := newEntries("a")
	require.NoError(t, ctrl.Start(context.Background(), entries))

	entries[0].Front = "mutated"
	entries[0].Card.Reps = 99

	current, ok := ctrl.Current()
	require.True(t, ok)
	assert.Equal(t, "Q a", current.Front)
	assert.Equal(t, 0, current.Card.Reps)
}

func TestNewPanicsOnNilDependencies(t *testing.T) {
	scheduler := newTestScheduler(t)

	assert.Panics(t, func() { review.New(nil, mocks.NewMockCardStore()) })
	assert.Panics(t, func() { review.New(scheduler, nil) })
}
