package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/rote/internal/domain"
	"github.com/phrazzld/rote/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []item
	}{
		{
			name: "single pair",
			src:  "capital of France :: Paris\n",
			want: []item{{front: "capital of France", back: "Paris"}},
		},
		{
			name: "list pairs keep order",
			src:  "- uno :: one\n- dos :: two\n",
			want: []item{
				{front: "uno", back: "one"},
				{front: "dos", back: "two"},
			},
		},
		{
			name: "back keeps extra separators",
			src:  "scope operator :: written as :: in C++\n",
			want: []item{{front: "scope operator", back: "written as :: in C++"}},
		},
		{
			name: "missing halves are not items",
			src:  ":: no front\nno back ::\nplain prose line\n",
			want: nil,
		},
		{
			name: "empty document",
			src:  "",
			want: nil,
		},
		{
			name: "prose around pairs",
			src:  "Some intro text.\n\nterm :: definition\n\nClosing thoughts.\n",
			want: []item{{front: "term", back: "definition"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := extract([]byte(tt.src))
			require.Len(t, got, len(tt.want), "Unexpected item count")
			for i, want := range tt.want {
				assert.Equal(t, want.front, got[i].front, "Front mismatch at %d", i)
				assert.Equal(t, want.back, got[i].back, "Back mismatch at %d", i)
			}
		})
	}
}

func TestExtractHeadings(t *testing.T) {
	t.Parallel()

	src := `# Notes

## What is stability?

The number of days until recall probability
drops to the target retention.

### Detail

Even nested content belongs to the answer.

## Not a card

quick :: pair

## What is difficulty?

How hard the item is to consolidate.
`

	items := extract([]byte(src))
	require.Len(t, items, 3)

	assert.Equal(t, "What is stability?", items[0].front)
	assert.Contains(t, items[0].back, "target retention")
	assert.Contains(t, items[0].back, "Even nested content belongs to the answer.",
		"Lower-level headings stay inside the section body")

	// The plain heading is not a card, but the pair under it is.
	assert.Equal(t, "quick", items[1].front)
	assert.Equal(t, "pair", items[1].back)

	assert.Equal(t, "What is difficulty?", items[2].front)
	assert.Equal(t, "How hard the item is to consolidate.", items[2].back)
}

func TestExtractHeadingBodyNotDoubleExtracted(t *testing.T) {
	t.Parallel()

	src := `## What does A :: B mean here?

Inside a question section, a :: b stays part of the answer.
`

	items := extract([]byte(src))
	require.Len(t, items, 1, "Pair lines inside a question section are not separate items")
	assert.Equal(t, "What does A :: B mean here?", items[0].front)
	assert.Contains(t, items[0].back, "a :: b stays part of the answer.")
}

func TestExtractEmptyHeadingBodySkipped(t *testing.T) {
	t.Parallel()

	src := "## An unanswered question?\n\n## Another topic?\n\nWith an answer.\n"

	items := extract([]byte(src))
	require.Len(t, items, 1)
	assert.Equal(t, "Another topic?", items[0].front)
}

// writeFixture creates a file under dir, creating parents as needed.
func writeFixture(t *testing.T, dir, rel, content string) {
	t.Helper()

	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListCandidates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "chem.md", "mole :: 6.022e23 things\n")
	writeFixture(t, dir, "math/algebra.md", "identity :: a*1 = a\nzero :: a*0 = 0\n")
	writeFixture(t, dir, "notes.txt", "ignored :: wrong extension\n")
	writeFixture(t, dir, ".rote/config.yaml", "ignored :: dot directory\n")

	cards := mocks.NewMockCardStore()
	src := New(dir, nil, cards, nil)

	candidates, err := src.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, candidates, 3, "Only markdown files outside dot dirs should be scanned")

	// Lexical file order, document order within a file.
	assert.Equal(t, "mole", candidates[0].Front)
	assert.Equal(t, "identity", candidates[1].Front)
	assert.Equal(t, "zero", candidates[2].Front)

	for _, cand := range candidates {
		assert.Nil(t, cand.Card, "Untracked candidates carry no card")
		assert.Contains(t, cand.Key, "#", "Keys embed the content hash")
	}
	assert.True(t, len(candidates[0].Key) > len("chem.md#"),
		"Key should append a hash to the relative path")
}

func TestListCandidatesAttachesCards(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "deck.md", "tracked :: yes\nuntracked :: not yet\n")

	cards := mocks.NewMockCardStore()
	src := New(dir, nil, cards, nil)

	// First pass to learn the generated keys.
	candidates, err := src.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	stored := domain.NewCard(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	cards.SetCard(candidates[0].Key, stored)

	candidates, err = src.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, candidates[0].Card, "Stored card should be attached")
	assert.Equal(t, domain.StateNew, candidates[0].Card.State)
	assert.Nil(t, candidates[1].Card, "Untracked candidate stays bare")
}

func TestListCandidatesScope(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "top.md", "top :: level\n")
	writeFixture(t, dir, "math/algebra.md", "algebra :: here\n")
	writeFixture(t, dir, "math/calculus.md", "calculus :: here\n")
	writeFixture(t, dir, "mathother.md", "decoy :: prefix\n")

	cards := mocks.NewMockCardStore()
	src := New(dir, nil, cards, nil)

	t.Run("directory scope", func(t *testing.T) {
		candidates, err := src.ListCandidates(context.Background(), "math")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, "algebra", candidates[0].Front)
		assert.Equal(t, "calculus", candidates[1].Front)
	})

	t.Run("file scope", func(t *testing.T) {
		candidates, err := src.ListCandidates(context.Background(), "math/calculus.md")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "calculus", candidates[0].Front)
	})

	t.Run("prefix does not leak across separators", func(t *testing.T) {
		candidates, err := src.ListCandidates(context.Background(), "math")
		require.NoError(t, err)
		for _, cand := range candidates {
			assert.NotContains(t, cand.Key, "mathother",
				"Sibling files sharing a name prefix stay out of scope")
		}
	})

	t.Run("unknown scope is empty", func(t *testing.T) {
		candidates, err := src.ListCandidates(context.Background(), "nope")
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}

func TestListCandidatesKeyStability(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "deck.md", "question :: first answer\n")

	cards := mocks.NewMockCardStore()
	src := New(dir, nil, cards, nil)

	before, err := src.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, before, 1)

	// Rewording the answer keeps the key.
	writeFixture(t, dir, "deck.md", "question :: a better answer\n")
	after, err := src.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].Key, after[0].Key,
		"Answer edits keep the key and the scheduling history")

	// Rewording the question starts the item over.
	writeFixture(t, dir, "deck.md", "reworded question :: a better answer\n")
	changed, err := src.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.NotEqual(t, before[0].Key, changed[0].Key,
		"Question edits derive a fresh key")
}

func TestListCandidatesDuplicateFronts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "deck.md", "dup :: first\n\ndup :: second\n")

	cards := mocks.NewMockCardStore()
	src := New(dir, nil, cards, nil)

	candidates, err := src.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, candidates, 1, "Identical fronts in one file collapse to the first item")
	assert.Equal(t, "first", candidates[0].Back)
}

func TestListCandidatesMissingDir(t *testing.T) {
	t.Parallel()

	cards := mocks.NewMockCardStore()
	src := New(filepath.Join(t.TempDir(), "absent"), nil, cards, nil)

	_, err := src.ListCandidates(context.Background(), "")
	assert.Error(t, err, "A missing source directory is an error")
}

func TestNewPanicsOnNilCards(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		New("dir", nil, nil, nil)
	}, "Constructor should panic when cards is nil")
}

func TestCustomExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "deck.markdown", "alt :: extension\n")
	writeFixture(t, dir, "deck.md", "standard :: extension\n")

	cards := mocks.NewMockCardStore()
	src := New(dir, []string{".markdown"}, cards, nil)

	candidates, err := src.ListCandidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, candidates, 1, "Only the configured extension should match")
	assert.Equal(t, "alt", candidates[0].Front)
}
