package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/rote/internal/config"
	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/domain/srs"
	"github.com/phrazzld/rote/internal/mocks"
	"github.com/phrazzld/rote/internal/platform/sqlite"
	"github.com/phrazzld/rote/internal/service/review"
)

// lineTime is the fixed session clock for line mode tests.
var lineTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newLineController builds a started controller over due cards with
// fuzz disabled, one entry per key.
func newLineController(t *testing.T, cards *mocks.MockCardStore, keys ...string) *review.Controller {
	t.Helper()

	scheduler, err := srs.NewScheduler(srs.SchedulerConfig{DisableFuzz: true})
	require.NoError(t, err, "scheduler construction should succeed")

	entries := make([]review.SessionEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, review.SessionEntry{
			Key:   key,
			Card:  domain.NewCard(lineTime),
			Front: "Q " + key,
			Back:  "A " + key,
		})
	}

	ctrl := review.New(scheduler, cards,
		review.WithClock(func() time.Time { return lineTime }),
		review.WithLogger(discardLogger()))
	require.NoError(t, ctrl.Start(context.Background(), entries), "session should start")
	return ctrl
}

// setTestConfig points the global viper at throwaway directories so a
// command run cannot touch a real deck or a developer's config files.
// Returns the temp root; notes live under <root>/notes.
func setTestConfig(t *testing.T) string {
	t.Helper()

	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))

	notes := filepath.Join(tmp, "notes")
	require.NoError(t, os.MkdirAll(notes, 0o755), "notes dir should be created")

	viper.Set("storage.backend", "sqlite")
	viper.Set("storage.path", filepath.Join(tmp, "rote.db"))
	viper.Set("source.dir", notes)
	viper.Set("logging.dir", filepath.Join(tmp, "logs"))
	viper.Set("practice.plain", true)
	t.Cleanup(viper.Reset)

	return tmp
}

func TestBuildScheduler(t *testing.T) {
	t.Run("maps config onto the engine", func(t *testing.T) {
		weights := make([]float64, 17)
		for i := range weights {
			weights[i] = float64(i) + 0.5
		}
		scheduler, err := buildScheduler(config.SchedulerConfig{
			TargetRetention: 0.85,
			MaximumInterval: 180,
			LearningSteps:   []time.Duration{time.Minute},
			RelearningSteps: []time.Duration{10 * time.Minute},
			DisableFuzz:     true,
			Weights:         weights,
		})
		require.NoError(t, err, "valid config should build a scheduler")
		assert.NotNil(t, scheduler)
	})

	t.Run("empty weights fall back to defaults", func(t *testing.T) {
		scheduler, err := buildScheduler(config.SchedulerConfig{
			TargetRetention: 0.9,
			MaximumInterval: 365,
		})
		require.NoError(t, err, "config without weights should build a scheduler")
		assert.NotNil(t, scheduler)
	})
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, review.Tally{})
	assert.Contains(t, buf.String(), "No cards reviewed", "empty tally should say so")

	buf.Reset()
	printSummary(&buf, review.Tally{Again: 1, Good: 2})
	assert.Contains(t, buf.String(), "Reviewed 3: again 1, hard 0, good 2, easy 0")
}

func TestRunLineSession(t *testing.T) {
	cards := mocks.NewMockCardStore()
	ctrl := newLineController(t, cards, "a", "b")

	var buf bytes.Buffer
	tally, err := runLineSession(context.Background(), ctrl, strings.NewReader("\n3\n\n1\n"), &buf)
	require.NoError(t, err, "scripted session should complete")

	assert.Equal(t, review.Tally{Again: 1, Good: 1}, tally, "both ratings should be counted")
	assert.Equal(t, review.PhaseComplete, ctrl.Phase(), "queue should be exhausted")
	assert.Equal(t, 2, cards.SaveCalls.Count, "each rating should persist")

	out := buf.String()
	assert.Contains(t, out, "[1/2] Q a", "first prompt should show position and front")
	assert.Contains(t, out, "[2/2] Q b", "second prompt should advance the position")
	assert.Contains(t, out, "A a", "back should print after reveal")
	assert.Contains(t, out, "1 again (1m)", "rating prompt should project the first learning step")
	assert.Contains(t, out, "3 good (10m)", "rating prompt should project the second learning step")
}

func TestRunLineSessionQuitAtReveal(t *testing.T) {
	cards := mocks.NewMockCardStore()
	ctrl := newLineController(t, cards, "a")

	var buf bytes.Buffer
	tally, err := runLineSession(context.Background(), ctrl, strings.NewReader("q\n"), &buf)
	require.NoError(t, err, "quit is not an error")

	assert.Equal(t, 0, tally.Total(), "nothing was rated")
	assert.Equal(t, review.PhaseIdle, ctrl.Phase(), "quit should cancel the session")
	assert.Zero(t, cards.SaveCalls.Count, "nothing should be saved")
}

func TestRunLineSessionQuitAtRating(t *testing.T) {
	cards := mocks.NewMockCardStore()
	ctrl := newLineController(t, cards, "a", "b")

	var buf bytes.Buffer
	tally, err := runLineSession(context.Background(), ctrl, strings.NewReader("\n3\n\nq\n"), &buf)
	require.NoError(t, err, "quit is not an error")

	assert.Equal(t, review.Tally{Good: 1}, tally, "the rating given before quitting should stand")
	assert.Equal(t, review.PhaseIdle, ctrl.Phase(), "quit should cancel the session")
	assert.Equal(t, 1, cards.SaveCalls.Count, "only the completed review should persist")
}

func TestRunLineSessionEOF(t *testing.T) {
	cards := mocks.NewMockCardStore()
	ctrl := newLineController(t, cards, "a")

	var buf bytes.Buffer
	tally, err := runLineSession(context.Background(), ctrl, strings.NewReader(""), &buf)
	require.NoError(t, err, "clean EOF is treated as quit")

	assert.Equal(t, 0, tally.Total())
	assert.Equal(t, review.PhaseIdle, ctrl.Phase(), "EOF should cancel the session")
}

func TestRunLineSessionInvalidRatingReprompts(t *testing.T) {
	cards := mocks.NewMockCardStore()
	ctrl := newLineController(t, cards, "a")

	var buf bytes.Buffer
	tally, err := runLineSession(context.Background(), ctrl, strings.NewReader("\nx\n2\n"), &buf)
	require.NoError(t, err, "session should survive a bad rating key")

	assert.Equal(t, review.Tally{Hard: 1}, tally, "the retried rating should count")
	assert.Contains(t, buf.String(), "rate 1-4", "bad input should reprompt")
}

func TestRunLineSessionSaveFailure(t *testing.T) {
	cards := mocks.NewMockCardStore()
	cards.SaveFn = func(ctx context.Context, key string, card *domain.Card) error {
		return errors.New("disk full")
	}
	ctrl := newLineController(t, cards, "a")

	var buf bytes.Buffer
	tally, err := runLineSession(context.Background(), ctrl, strings.NewReader("\n3\n"), &buf)
	require.NoError(t, err, "a failed save should not abort the session")

	assert.Equal(t, review.Tally{Good: 1}, tally, "the review should still count in memory")
	assert.Contains(t, buf.String(), "review kept in memory only", "the failure should be surfaced")
	assert.Contains(t, buf.String(), "disk full")
}

func TestPracticeCommandLineMode(t *testing.T) {
	tmp := setTestConfig(t)
	notes := filepath.Join(tmp, "notes")
	require.NoError(t, os.WriteFile(
		filepath.Join(notes, "algebra.md"),
		[]byte("What is 2+2? :: 4\n"),
		0o644,
	), "fixture should be written")

	cmd := newPracticeCmd()
	cmd.SetArgs([]string{})
	cmd.SetIn(strings.NewReader("\n3\n"))
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.Execute(), "practice should seed, collect, and review")

	out := buf.String()
	assert.Contains(t, out, "[1/1] What is 2+2?", "prompt should show the card front")
	assert.Contains(t, out, "Reviewed 1: again 0, hard 0, good 1, easy 0", "summary should reflect the rating")

	// The rating must have landed in the sqlite store.
	db, err := sqlite.Open(filepath.Join(tmp, "rote.db"), discardLogger())
	require.NoError(t, err, "store should reopen")
	defer func() { _ = db.Close() }()

	cards := sqlite.NewSQLiteCardStore(db, discardLogger())
	keys, err := cards.Keys(context.Background())
	require.NoError(t, err, "keys should list")
	require.Len(t, keys, 1, "exactly one card should be tracked")

	card, err := cards.Load(context.Background(), keys[0])
	require.NoError(t, err, "card should load")
	assert.Equal(t, domain.StateLearning, card.State, "a Good on a new card enters Learning")
	assert.Equal(t, 1, card.Reps)

	logs := sqlite.NewSQLiteReviewLogStore(db, discardLogger())
	history, err := logs.ListSince(context.Background(), time.Time{})
	require.NoError(t, err, "history should list")
	require.Len(t, history, 1, "one review should be logged")
	assert.Equal(t, domain.RatingGood, history[0].Rating)
	assert.Equal(t, keys[0], history[0].Key)
}

func TestPracticeCommandNothingDue(t *testing.T) {
	setTestConfig(t)
	viper.Set("practice.new_limit", 0)

	cmd := newPracticeCmd()
	cmd.SetArgs([]string{})
	cmd.SetIn(strings.NewReader(""))
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.Execute(), "an empty queue is not an error")

	assert.Contains(t, buf.String(), "Nothing due", "empty queue should short-circuit before any prompt")
}

func TestDueCommandCountsUntracked(t *testing.T) {
	tmp := setTestConfig(t)
	notes := filepath.Join(tmp, "notes")
	require.NoError(t, os.WriteFile(
		filepath.Join(notes, "geo.md"),
		[]byte("Capital of France? :: Paris\n"),
		0o644,
	), "fixture should be written")

	cmd := newDueCmd()
	cmd.SetArgs([]string{})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.Execute(), "due should run against a fresh deck")

	assert.Contains(t, buf.String(), "0 due, 0 tracked, 1 untracked",
		"an unseeded item counts as untracked, never as due")
}

func TestDueCommandListsSeededCards(t *testing.T) {
	tmp := setTestConfig(t)
	notes := filepath.Join(tmp, "notes")
	require.NoError(t, os.WriteFile(
		filepath.Join(notes, "geo.md"),
		[]byte("Capital of France? :: Paris\n"),
		0o644,
	), "fixture should be written")

	// Seed by reviewing once; a Good on a new card schedules it out a
	// few minutes, so right after practice nothing is due.
	practice := newPracticeCmd()
	practice.SetArgs([]string{})
	practice.SetIn(strings.NewReader("\n3\n"))
	var practiceOut bytes.Buffer
	practice.SetOut(&practiceOut)
	practice.SetErr(&practiceOut)
	require.NoError(t, practice.Execute(), "practice should seed and review")

	cmd := newDueCmd()
	cmd.SetArgs([]string{})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.Execute(), "due should run against the reviewed deck")

	assert.Contains(t, buf.String(), "0 due, 1 tracked, 0 untracked",
		"the reviewed card is tracked but scheduled in the future")
}

func TestStatsCommandEmptyDeck(t *testing.T) {
	setTestConfig(t)

	cmd := newStatsCmd()
	cmd.SetArgs([]string{})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.Execute(), "stats should run against an empty deck")

	out := buf.String()
	assert.Contains(t, out, "reviews: 0", "no history yet")
	assert.Contains(t, out, "Deck: 0 cards", "no cards yet")
	assert.Contains(t, out, "Due now: 0")
}

func TestStatsCommandAfterPractice(t *testing.T) {
	tmp := setTestConfig(t)
	notes := filepath.Join(tmp, "notes")
	require.NoError(t, os.WriteFile(
		filepath.Join(notes, "algebra.md"),
		[]byte("What is 2+2? :: 4\n\nWhat is 3*3? :: 9\n"),
		0o644,
	), "fixture should be written")

	practice := newPracticeCmd()
	practice.SetArgs([]string{})
	practice.SetIn(strings.NewReader("\n3\n\n1\n"))
	var practiceOut bytes.Buffer
	practice.SetOut(&practiceOut)
	practice.SetErr(&practiceOut)
	require.NoError(t, practice.Execute(), "practice should review both cards")

	cmd := newStatsCmd()
	cmd.SetArgs([]string{})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.Execute(), "stats should run against the reviewed deck")

	out := buf.String()
	assert.Contains(t, out, "reviews: 2 (again 1, hard 0, good 1, easy 0)",
		"history should count both ratings")
	assert.Contains(t, out, "cards touched: 2")
	assert.Contains(t, out, "Deck: 2 cards", "both cards should be tracked")
}

func TestMigrateCommandSqlite(t *testing.T) {
	setTestConfig(t)

	cmd := newMigrateCmd()
	cmd.SetArgs([]string{})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.Execute(), "sqlite migrates on open")

	assert.Contains(t, buf.String(), "Schema up to date (version",
		"migrate should report the schema version")
}

func TestPreviewCommandUntracked(t *testing.T) {
	setTestConfig(t)

	cmd := newPreviewCmd()
	cmd.SetArgs([]string{"notes.md#deadbeefdead"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	require.Error(t, err, "previewing an untracked key should fail")
	assert.Contains(t, err.Error(), "no card tracked")
}

func TestPreviewCommandTracked(t *testing.T) {
	tmp := setTestConfig(t)

	// Track a card directly in the store.
	db, err := sqlite.Open(filepath.Join(tmp, "rote.db"), discardLogger())
	require.NoError(t, err, "store should open")
	cards := sqlite.NewSQLiteCardStore(db, discardLogger())
	card := domain.NewCard(time.Now().UTC())
	require.NoError(t, cards.Save(context.Background(), "notes.md#cafe", &card), "seed should save")
	require.NoError(t, db.Close(), "store should close before the command reopens it")

	cmd := newPreviewCmd()
	cmd.SetArgs([]string{"notes.md#cafe"})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	require.NoError(t, cmd.Execute(), "preview should project a tracked card")

	out := buf.String()
	assert.Contains(t, out, "notes.md#cafe")
	assert.Contains(t, out, "state new", "a fresh card is in the new state")
	for _, rating := range []string{"again", "hard", "good", "easy"} {
		assert.Contains(t, out, fmt.Sprintf("%-5s ->", rating),
			"every rating should show a projection")
	}
}
