package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	DefaultDifficultyScore = 1
	MinDifficultyScore     = 1
)

var ErrInvalidDraft = errors.New("invalid word draft")

// Word is a stored vocabulary entry with its review statistics. ID is
// assigned by the store; after creation only MarkSeen changes a Word.
type Word struct {
	ID              uint       `gorm:"primaryKey"`
	Word            string     `gorm:"not null;uniqueIndex:idx_words_word"`
	Meaning         string     `gorm:"not null;default:''"`
	Etymology       string     `gorm:"not null;default:''"`
	Translation     string     `gorm:"not null;default:''"`
	TimesSeen       int        `gorm:"not null;default:0"`
	TimesCorrect    int        `gorm:"not null;default:0"`
	LastSeen        *time.Time `gorm:"index:idx_words_last_seen"`
	DifficultyScore int        `gorm:"not null;default:1;index:idx_words_difficulty_score"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Word) TableName() string {
	return "words"
}

// RecordSeen applies one review outcome to w.
func (w *Word) RecordSeen(wasCorrect bool, now time.Time) {
	if w == nil {
		return
	}
	w.TimesSeen++
	w.LastSeen = &now
	if wasCorrect {
		w.TimesCorrect++
		w.DifficultyScore--
		if w.DifficultyScore < MinDifficultyScore {
			w.DifficultyScore = MinDifficultyScore
		}
		return
	}
	w.DifficultyScore++
}

// WordDraft is the caller-supplied part of a new Word.
type WordDraft struct {
	Word        string
	Meaning     string
	Etymology   string
	Translation string
}

// normalize trims the word and folds it to NFC so composed and decomposed
// spellings of the same word share one unique key.
func (d WordDraft) normalize() (WordDraft, error) {
	d.Word = norm.NFC.String(strings.TrimSpace(d.Word))
	if d.Word == "" {
		return d, ErrInvalidDraft
	}
	return d, nil
}

func (d WordDraft) newWord() Word {
	return Word{
		Word:            d.Word,
		Meaning:         d.Meaning,
		Etymology:       d.Etymology,
		Translation:     d.Translation,
		DifficultyScore: DefaultDifficultyScore,
	}
}
