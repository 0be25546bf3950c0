package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/model/violation"
	"github.com/relayguard/banhammer/module/metrics"
	bstorage "github.com/relayguard/banhammer/storage/badger"
	"github.com/relayguard/banhammer/utils/unittest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config", "--queue-capacity", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "queue-capacity: 7")
	assert.Contains(t, out, "timeframe: 60")
}

// TestBansCommand journals the bans of a sender hitting the max gas threshold and prints them back.
func TestBansCommand(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		db, err := bstorage.Open(unittest.Logger(), dir)
		require.NoError(t, err)
		journal := bstorage.NewBans(unittest.Logger(), metrics.NewNoopCollector(), db)

		hammer, err := banhammer.New(unittest.Logger(), unittest.BanhammerConfigFixture(0, 1, 0), time.Now(), banhammer.WithBanConsumer(journal))
		require.NoError(t, err)
		input := unittest.InputFixture(unittest.WithError(violation.NewMaxGas()))
		require.NoError(t, hammer.ReadInput(input))
		require.NoError(t, db.Close())

		out, err := execute(t, "bans", "--journal-dir", dir, "--axis", "")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)

		out, err = execute(t, "bans", "--journal-dir", dir, "--axis", "client")
		require.NoError(t, err)
		var record banRecord
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &record))
		assert.Equal(t, "client", record.Axis)
		assert.Equal(t, input.Client.String(), record.Identity)
		assert.Equal(t, "max_gas", record.Reason)
		assert.EqualValues(t, 1, record.Progress.MaxGas)

		_, err = execute(t, "bans", "--journal-dir", dir, "--axis", "wallet")
		require.Error(t, err)
	})
}
