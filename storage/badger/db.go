package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
)

// Open opens the badger database in dir, creating it if needed. Badger's own log output is
// forwarded to log.
func Open(log zerolog.Logger, dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(NewLogger(log))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger database in %s: %w", dir, err)
	}
	return db, nil
}

// OpenReadOnly opens an existing badger database in dir without acquiring the write lock.
func OpenReadOnly(log zerolog.Logger, dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithReadOnly(true).
		WithLogger(NewLogger(log))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger database in %s read-only: %w", dir, err)
	}
	return db, nil
}

// Logger forwards badger log output to zerolog.
type Logger struct {
	log zerolog.Logger
}

var _ badger.Logger = (*Logger)(nil)

func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Str("module", "badger").Logger()}
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	l.log.Error().Msgf(msg, args...)
}

func (l *Logger) Warningf(msg string, args ...interface{}) {
	l.log.Warn().Msgf(msg, args...)
}

func (l *Logger) Infof(msg string, args ...interface{}) {
	l.log.Debug().Msgf(msg, args...)
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	l.log.Trace().Msgf(msg, args...)
}
