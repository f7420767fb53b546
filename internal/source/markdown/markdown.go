package markdown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/rote/internal/platform/logger"
	"github.com/phrazzld/rote/internal/source"
	"github.com/phrazzld/rote/internal/store"
)

// keyHashLen is the number of hex digits of the front-text hash that
// go into a candidate key.
const keyHashLen = 12

// Source scans a directory of markdown documents for review items and
// implements source.ItemSource. Keys are stable across file edits that
// keep the question text: relative path plus a hash of the front.
type Source struct {
	fsys       fs.FS
	dir        string
	extensions map[string]struct{}
	cards      store.CardStore
	logger     *slog.Logger
}

// New creates a markdown Source rooted at dir. Files are filtered by
// the given extensions (".md" when empty). If logger is nil, a default
// logger will be used.
func New(dir string, extensions []string, cards store.CardStore, logger *slog.Logger) *Source {
	// Validate inputs
	if cards == nil {
		panic("cards cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	if dir == "" {
		dir = "."
	}
	if len(extensions) == 0 {
		extensions = []string{".md"}
	}
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	return &Source{
		fsys:       os.DirFS(dir),
		dir:        dir,
		extensions: extSet,
		cards:      cards,
		logger:     logger.With(slog.String("component", "markdown_source")),
	}
}

// Ensure Source implements source.ItemSource interface
var _ source.ItemSource = (*Source)(nil)

// ListCandidates implements source.ItemSource.ListCandidates.
// Files walk in lexical order and items keep document order, so the
// candidate list is stable between runs. Scope narrows the walk to one
// file or subdirectory (slash-separated, relative to the source root).
func (s *Source) ListCandidates(ctx context.Context, scope string) ([]source.Candidate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	files, err := s.listFiles(scope)
	if err != nil {
		return nil, err
	}

	var candidates []source.Candidate
	seen := make(map[string]struct{})
	for _, rel := range files {
		data, err := fs.ReadFile(s.fsys, rel)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file %s: %w", rel, err)
		}

		for _, it := range extract(data) {
			key := candidateKey(rel, it.front)
			if _, dup := seen[key]; dup {
				log.Debug("skipping duplicate item",
					slog.String("key", key),
					slog.String("file", rel))
				continue
			}
			seen[key] = struct{}{}
			candidates = append(candidates, source.Candidate{
				Key:   key,
				Front: it.front,
				Back:  it.back,
			})
		}
	}

	if err := s.attachCards(ctx, candidates); err != nil {
		return nil, err
	}

	log.Debug("listed candidates",
		slog.String("scope", scope),
		slog.Int("files", len(files)),
		slog.Int("candidates", len(candidates)))
	return candidates, nil
}

// listFiles walks the source tree and returns the relative slash paths
// of every matching document, in lexical order. Dot-prefixed files and
// directories are skipped so config and data directories under the
// source root stay invisible.
func (s *Source) listFiles(scope string) ([]string, error) {
	var files []string
	err := fs.WalkDir(s.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk source directory %s: %w", s.dir, err)
		}
		if path == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !s.matchExtension(path) || !matchScope(scope, path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Source) matchExtension(path string) bool {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return false
	}
	_, ok := s.extensions[strings.ToLower(path[idx:])]
	return ok
}

// matchScope reports whether the relative path falls under scope. An
// empty scope matches everything; otherwise scope names either a file
// or a directory prefix.
func matchScope(scope, path string) bool {
	if scope == "" {
		return true
	}
	scope = strings.Trim(scope, "/")
	return path == scope || strings.HasPrefix(path, scope+"/")
}

// attachCards joins stored scheduling records onto the candidates.
// Untracked candidates keep a nil Card; that is never an error.
func (s *Source) attachCards(ctx context.Context, candidates []source.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	keys := make([]string, len(candidates))
	for i, cand := range candidates {
		keys[i] = cand.Key
	}

	cards, err := s.cards.LoadMany(ctx, keys)
	if err != nil {
		return fmt.Errorf("failed to load cards for candidates: %w", err)
	}

	for i := range candidates {
		if card, ok := cards[candidates[i].Key]; ok {
			candidates[i].Card = card
		}
	}
	return nil
}

// candidateKey derives the stable key for an item: the file's relative
// path plus a short hash of the front text. Edits to the answer keep
// the key (and the scheduling history); rewording the question starts
// the item over.
func candidateKey(rel, front string) string {
	sum := sha256.Sum256([]byte(front))
	return rel + "#" + hex.EncodeToString(sum[:])[:keyHashLen]
}
