// Package training decides which stored word the learner sees next.
//
// A word's priority is difficulty_score - 0.1*times_seen: hard words come
// first, and every review discounts a word a little so the rest of the
// vocabulary resurfaces. Ties go to the lowest id.
package training

import (
	"sort"

	"github.com/smith3v/word-learner/pkg/db"
)

// priorityTenths is the priority scaled by ten so comparisons stay exact.
func priorityTenths(w db.Word) int64 {
	return int64(w.DifficultyScore)*10 - int64(w.TimesSeen)
}

// Priority returns difficulty_score - 0.1*times_seen.
func Priority(w db.Word) float64 {
	return float64(priorityTenths(w)) / 10
}

func before(a, b db.Word) bool {
	pa, pb := priorityTenths(a), priorityTenths(b)
	if pa != pb {
		return pa > pb
	}
	return a.ID < b.ID
}

// SelectNext returns a copy of the highest-priority word, or nil when words
// is empty.
func SelectNext(words []db.Word) *db.Word {
	if len(words) == 0 {
		return nil
	}
	best := words[0]
	for _, w := range words[1:] {
		if before(w, best) {
			best = w
		}
	}
	return &best
}

// Rank returns the words in display order without modifying the input.
func Rank(words []db.Word) []db.Word {
	ranked := make([]db.Word, len(words))
	copy(ranked, words)
	sort.SliceStable(ranked, func(i, j int) bool {
		return before(ranked[i], ranked[j])
	})
	return ranked
}
