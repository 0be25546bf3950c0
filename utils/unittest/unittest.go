package unittest

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/relayguard/banhammer/module"
)

// RequireCloseBefore requires that the given channel closes before the duration expires.
func RequireCloseBefore(t testing.TB, c <-chan struct{}, duration time.Duration, msg string) {
	t.Helper()
	select {
	case <-time.After(duration):
		require.Fail(t, "channel did not close in time: "+msg)
	case <-c:
	}
}

// RequireNotClosed requires that the given channel is still open.
func RequireNotClosed(t testing.TB, c <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-c:
		require.Fail(t, "channel closed unexpectedly: "+msg)
	default:
	}
}

// RequireComponentsReadyBefore requires that all components become ready within duration.
func RequireComponentsReadyBefore(t testing.TB, duration time.Duration, components ...module.ReadyDoneAware) {
	t.Helper()
	for _, c := range components {
		RequireCloseBefore(t, c.Ready(), duration, "component not ready")
	}
}

// RequireComponentsDoneBefore requires that all components shut down within duration.
func RequireComponentsDoneBefore(t testing.TB, duration time.Duration, components ...module.ReadyDoneAware) {
	t.Helper()
	for _, c := range components {
		RequireCloseBefore(t, c.Done(), duration, "component not done")
	}
}

// RunWithTempDir runs f with a directory that is removed when the test completes.
func RunWithTempDir(t testing.TB, f func(string)) {
	f(t.TempDir())
}

// BadgerDB opens an in-test badger database in dir with logging disabled.
func BadgerDB(t testing.TB, dir string) *badger.DB {
	opts := badger.
		DefaultOptions(dir).
		WithKeepL0InMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	return db
}

func RunWithBadgerDB(t testing.TB, f func(*badger.DB)) {
	RunWithTempDir(t, func(dir string) {
		db := BadgerDB(t, dir)
		defer db.Close()
		f(db)
	})
}
