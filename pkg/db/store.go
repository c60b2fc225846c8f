package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/smith3v/word-learner/pkg/config"
	"github.com/smith3v/word-learner/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrStoreLocked = errors.New("word store is in use by another process")

// Store owns every Word record. Create and MarkSeen each run in their own
// transaction; callers only ever hold copies.
type Store struct {
	db        *gorm.DB
	now       func() time.Time
	lock      *flock.Flock
	gormLevel string
}

type Option func(*Store)

// WithClock replaces the time source used for last_seen.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGormLogLevel sets the gorm query log level used by Open.
func WithGormLogLevel(level string) Option {
	return func(s *Store) {
		s.gormLevel = level
	}
}

// Open connects to the configured database, takes the single-process lock
// for file-backed sqlite and creates the schema on first use.
func Open(cfg config.DatabaseConfig, opts ...Option) (*Store, error) {
	s := newStore(opts...)

	gormLogger, gormErr := newGormLogger(s.gormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", s.gormLevel, "error", gormErr)
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	var dialector gorm.Dialector
	switch driver {
	case "", config.DriverSQLite:
		if isFileBacked(cfg.Path) {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
			lock := flock.New(cfg.Path + ".lock")
			ok, err := lock.TryLock()
			if err != nil {
				return nil, fmt.Errorf("acquire store lock: %w", err)
			}
			if !ok {
				return nil, ErrStoreLocked
			}
			s.lock = lock
		}
		dialector = sqlite.Open(cfg.Path)
	case config.DriverPostgres:
		dialector = postgres.Open(postgresDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		s.unlock()
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	s.db = gdb
	if err := s.init(); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Info("word store opened", "driver", gdb.Dialector.Name())
	return s, nil
}

// NewStore wraps an already opened gorm handle and migrates the schema.
func NewStore(gdb *gorm.DB, opts ...Option) (*Store, error) {
	if gdb == nil {
		return nil, errors.New("nil database handle")
	}
	s := newStore(opts...)
	s.db = gdb
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func newStore(opts ...Option) *Store {
	s := &Store{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) init() error {
	if s.db.Dialector.Name() == "sqlite" {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		// One connection serializes sqlite read-modify-write transactions.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := s.db.AutoMigrate(&Word{}); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		return err
	}
	return nil
}

// Close flushes the connection pool and releases the store lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			closeErr = err
		} else {
			closeErr = sqlDB.Close()
		}
	}
	return errors.Join(closeErr, s.unlock())
}

func (s *Store) unlock() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

// Create inserts a new word with default statistics. It reports false
// without an error when the word text already exists.
func (s *Store) Create(ctx context.Context, draft WordDraft) (bool, error) {
	draft, err := draft.normalize()
	if err != nil {
		return false, fmt.Errorf("create word %q: %w", draft.Word, err)
	}
	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = insertWord(tx, draft)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("create word %q: %w", draft.Word, err)
	}
	if !created {
		logger.Debug("word already stored", "word", draft.Word)
	}
	return created, nil
}

// CreateBatch inserts drafts in a single transaction. Invalid drafts and
// words already present are skipped; a storage failure rolls back the batch.
func (s *Store) CreateBatch(ctx context.Context, drafts []WordDraft) (int, int, error) {
	inserted := 0
	skipped := 0
	if len(drafts) == 0 {
		return inserted, skipped, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, draft := range drafts {
			draft, err := draft.normalize()
			if err != nil {
				skipped++
				continue
			}
			created, err := insertWord(tx, draft)
			if err != nil {
				return err
			}
			if created {
				inserted++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("create word batch: %w", err)
	}
	return inserted, skipped, nil
}

func insertWord(tx *gorm.DB, draft WordDraft) (bool, error) {
	word := draft.newWord()
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "word"}},
		DoNothing: true,
	}).Create(&word)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListAll returns every stored word ordered by id.
func (s *Store) ListAll(ctx context.Context) ([]Word, error) {
	var words []Word
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&words).Error; err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	if words == nil {
		words = []Word{}
	}
	return words, nil
}

// GetByID returns nil without an error when no word has that id.
func (s *Store) GetByID(ctx context.Context, id uint) (*Word, error) {
	var word Word
	err := s.db.WithContext(ctx).First(&word, id).Error
	if err == nil {
		return &word, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("get word %d: %w", id, err)
}

// MarkSeen records one review of the word. It reports false without an
// error when the id does not exist; otherwise the whole update commits or
// nothing does.
func (s *Store) MarkSeen(ctx context.Context, id uint, wasCorrect bool) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var word Word
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&word, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		word.RecordSeen(wasCorrect, s.now())
		if err := tx.Save(&word).Error; err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("mark word %d seen: %w", id, err)
	}
	if !found {
		logger.Debug("mark seen on missing word", "id", id)
	}
	return found, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Word{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count words: %w", err)
	}
	return count, nil
}

func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func isFileBacked(path string) bool {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" {
		return false
	}
	return !strings.Contains(path, "mode=memory") && !strings.HasPrefix(path, "file::memory:")
}

func postgresDSN(cfg config.DatabaseConfig) string {
	return "host=" + cfg.Host +
		" user=" + cfg.User +
		" password=" + cfg.Password +
		" dbname=" + cfg.DBName +
		" port=" + strconv.Itoa(cfg.Port) +
		" sslmode=" + cfg.SSLMode
}
