// Package learner runs the learning loop on top of the word store: keep the
// store stocked while online, pick the next word, record the answer.
package learner

import (
	"context"
	"errors"

	"github.com/smith3v/word-learner/pkg/connectivity"
	"github.com/smith3v/word-learner/pkg/db"
	"github.com/smith3v/word-learner/pkg/logger"
	"github.com/smith3v/word-learner/pkg/training"
)

// Store is the subset of *db.Store the loop needs.
type Store interface {
	Create(ctx context.Context, draft db.WordDraft) (bool, error)
	CreateBatch(ctx context.Context, drafts []db.WordDraft) (int, int, error)
	ListAll(ctx context.Context) ([]db.Word, error)
	GetByID(ctx context.Context, id uint) (*db.Word, error)
	MarkSeen(ctx context.Context, id uint, wasCorrect bool) (bool, error)
	IsEmpty(ctx context.Context) (bool, error)
}

type WordSource interface {
	Fetch(ctx context.Context) (db.WordDraft, error)
}

type Service struct {
	store  Store
	source WordSource
	signal connectivity.Signal
}

// New builds a Service. source may be nil, in which case the store is never
// refilled remotely; a nil signal means always offline.
func New(store Store, source WordSource, signal connectivity.Signal) *Service {
	if signal == nil {
		signal = connectivity.Static(false)
	}
	return &Service{store: store, source: source, signal: signal}
}

// Next returns the word to show now, or nil when none is available. When
// online with an empty store it first tries to add one remote word; remote
// failures are logged and do not fail the call.
func (s *Service) Next(ctx context.Context) (*db.Word, error) {
	if s.source != nil && s.signal.Online() {
		if err := s.refill(ctx); err != nil {
			return nil, err
		}
	}

	words, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return training.SelectNext(words), nil
}

func (s *Service) refill(ctx context.Context) error {
	empty, err := s.store.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	draft, err := s.source.Fetch(ctx)
	if err != nil {
		logger.Error("failed to fetch remote word", "error", err)
		return nil
	}
	created, err := s.store.Create(ctx, draft)
	if errors.Is(err, db.ErrInvalidDraft) {
		logger.Error("remote word rejected", "word", draft.Word, "error", err)
		return nil
	}
	if err != nil {
		return err
	}
	if created {
		logger.Info("stored remote word", "word", draft.Word)
	}
	return nil
}

// Answer records whether the learner knew the word. It reports false when
// the word does not exist.
func (s *Service) Answer(ctx context.Context, id uint, correct bool) (bool, error) {
	return s.store.MarkSeen(ctx, id, correct)
}

func (s *Service) Word(ctx context.Context, id uint) (*db.Word, error) {
	return s.store.GetByID(ctx, id)
}

// Add stores a new word. It reports false when the word already exists.
func (s *Service) Add(ctx context.Context, draft db.WordDraft) (bool, error) {
	return s.store.Create(ctx, draft)
}

// Import stores drafts in one batch and returns the inserted and skipped counts.
func (s *Service) Import(ctx context.Context, drafts []db.WordDraft) (int, int, error) {
	return s.store.CreateBatch(ctx, drafts)
}

// Words returns the vocabulary in display order.
func (s *Service) Words(ctx context.Context) ([]db.Word, error) {
	words, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return training.Rank(words), nil
}

type Summary struct {
	Words   int
	Seen    int
	Reviews int
	Correct int
}

// Accuracy is the share of reviews answered correctly, 0 without reviews.
func (s Summary) Accuracy() float64 {
	if s.Reviews == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Reviews)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	words, err := s.store.ListAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Words: len(words)}
	for _, w := range words {
		if w.TimesSeen > 0 {
			summary.Seen++
		}
		summary.Reviews += w.TimesSeen
		summary.Correct += w.TimesCorrect
	}
	return summary, nil
}
