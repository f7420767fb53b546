package review

import (
	"sort"
	"time"

	"github.com/phrazzld/rote/internal/source"
)

// CollectDue returns the keys of the candidates due at now, sorted by
// due time ascending. Ties keep the candidates' input order, so a
// stable source ordering yields a stable queue. Candidates without a
// card are untracked and never due. When allow is non-nil, keys outside
// it are skipped.
//
// The input is never mutated.
func CollectDue(candidates []source.Candidate, now time.Time, allow map[string]struct{}) []string {
	type dueItem struct {
		key string
		due time.Time
	}

	items := make([]dueItem, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Card == nil {
			continue
		}
		if allow != nil {
			if _, ok := allow[cand.Key]; !ok {
				continue
			}
		}
		if !cand.Card.IsDue(now) {
			continue
		}
		items = append(items, dueItem{key: cand.Key, due: cand.Card.Due})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].due.Before(items[j].due)
	})

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.key
	}
	return keys
}

// BuildEntries joins the given keys back to their candidates, producing
// the session entries in key order. Keys without a matching tracked
// candidate are skipped; each entry carries a detached copy of the
// card, so the session never aliases the caller's data.
func BuildEntries(candidates []source.Candidate, keys []string) []SessionEntry {
	byKey := make(map[string]source.Candidate, len(candidates))
	for _, cand := range candidates {
		if _, ok := byKey[cand.Key]; !ok {
			byKey[cand.Key] = cand
		}
	}

	entries := make([]SessionEntry, 0, len(keys))
	for _, key := range keys {
		cand, ok := byKey[key]
		if !ok || cand.Card == nil {
			continue
		}
		entries = append(entries, SessionEntry{
			Key:   cand.Key,
			Card:  cand.Card.Clone(),
			Front: cand.Front,
			Back:  cand.Back,
		})
	}
	return entries
}
