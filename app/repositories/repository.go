package repositories

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store owns the badger database and the repositories built on it
type Store struct {
	db    *badger.DB
	path  string
	Posts *BadgerPostRepository
	Tags  *BadgerTagRepository
	Users *BadgerUserRepository
}

// Options returns the badger options used for the database at path. An empty
// path selects an in-memory database.
func Options(path string) badger.Options {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{log: log.With().Str("component", "badger").Logger()}).
		WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	return opts
}

// Open opens (or creates) the database at path
func Open(path string) (*Store, error) {
	db, err := badger.Open(Options(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewStore(db, path), nil
}

// NewStore wraps an already opened database
func NewStore(db *badger.DB, path string) *Store {
	return &Store{
		db:    db,
		path:  path,
		Posts: NewBadgerPostRepository(db),
		Tags:  NewBadgerTagRepository(db),
		Users: NewBadgerUserRepository(db),
	}
}

// DB exposes the underlying database
func (s *Store) DB() *badger.DB {
	return s.db
}

// Path is the directory of the database, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Backup writes a full backup of the database to w
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup into the database
func (s *Store) Restore(r io.Reader) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	if err := s.db.Load(r, 4); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's internal logging through zerolog
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Info().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}
