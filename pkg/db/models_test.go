package db

import (
	"testing"
	"time"
)

func TestRecordSeenKeepsCorrectWithinSeen(t *testing.T) {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	w := WordDraft{Word: "casa"}.newWord()

	outcomes := []bool{true, false, false, true, true, true, false}
	for i, correct := range outcomes {
		w.RecordSeen(correct, now.Add(time.Duration(i)*time.Minute))
		if w.TimesCorrect > w.TimesSeen {
			t.Fatalf("times_correct %d exceeds times_seen %d after %d reviews", w.TimesCorrect, w.TimesSeen, i+1)
		}
		if w.DifficultyScore < MinDifficultyScore {
			t.Fatalf("difficulty fell below floor: %+v", w)
		}
	}
	if w.TimesSeen != len(outcomes) || w.TimesCorrect != 4 {
		t.Fatalf("unexpected counters: %+v", w)
	}
	// 1 -> 1 -> 2 -> 3 -> 2 -> 1 -> 1 -> 2
	if w.DifficultyScore != 2 {
		t.Fatalf("expected difficulty 2, got %d", w.DifficultyScore)
	}
	if !w.LastSeen.Equal(now.Add(6 * time.Minute)) {
		t.Fatalf("expected last_seen of final review, got %v", w.LastSeen)
	}
}

func TestRecordSeenNilWord(t *testing.T) {
	var w *Word
	w.RecordSeen(true, time.Now())
}

func TestWordDraftNormalize(t *testing.T) {
	d, err := WordDraft{Word: "  livro\t", Meaning: " keep spacing "}.normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Word != "livro" || d.Meaning != " keep spacing " {
		t.Fatalf("unexpected normalized draft: %+v", d)
	}
	if _, err := (WordDraft{Word: " "}).normalize(); err != ErrInvalidDraft {
		t.Fatalf("expected ErrInvalidDraft, got %v", err)
	}

	decomposed, err := WordDraft{Word: "pa\u0303o"}.normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decomposed.Word != "p\u00e3o" {
		t.Fatalf("expected NFC word, got %q", decomposed.Word)
	}
}
