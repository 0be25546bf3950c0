package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/model/identity"
	"github.com/relayguard/banhammer/module/metrics"
	bstorage "github.com/relayguard/banhammer/storage/badger"
)

var flagAxis string

func init() {
	rootCmd.AddCommand(bansCmd)

	// bound to journal.dir by the config loader
	bansCmd.Flags().String("journal-dir", "", "directory of the ban journal, defaults to journal.dir of the configuration")
	bansCmd.Flags().StringVar(&flagAxis, "axis", "", "only print bans of this axis (client, sender, token)")
}

// banRecord is the printed form of a journaled ban.
type banRecord struct {
	Axis     string    `json:"axis"`
	Identity string    `json:"identity"`
	Reason   string    `json:"reason"`
	Progress progress  `json:"progress"`
	BannedAt time.Time `json:"banned_at"`
}

type progress struct {
	IncorrectNonce uint32   `json:"incorrect_nonce"`
	MaxGas         uint32   `json:"max_gas"`
	ExcessiveGas   uint32   `json:"excessive_gas"`
	Reverts        []string `json:"reverts,omitempty"`
}

func toRecord(ban banhammer.Ban) banRecord {
	return banRecord{
		Axis:     ban.Axis.String(),
		Identity: ban.Identity,
		Reason:   ban.Reason.String(),
		Progress: progress{
			IncorrectNonce: ban.Progress.IncorrectNonce,
			MaxGas:         ban.Progress.MaxGas,
			ExcessiveGas:   ban.Progress.ExcessiveGas,
			Reverts:        ban.Progress.Reverts,
		},
		BannedAt: ban.BannedAt.UTC(),
	}
}

var bansCmd = &cobra.Command{
	Use:   "bans",
	Short: "print the bans recorded in the ban journal, one JSON object per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}

		dir := cfg.Journal.Dir
		if flagAxis != "" {
			switch identity.Axis(flagAxis) {
			case identity.AxisClient, identity.AxisSender, identity.AxisToken:
			default:
				return fmt.Errorf("unknown axis %q", flagAxis)
			}
		}

		db, err := bstorage.OpenReadOnly(log, dir)
		if err != nil {
			return err
		}
		defer db.Close()

		bans, err := bstorage.NewBans(log, metrics.NewNoopCollector(), db).All()
		if err != nil {
			return fmt.Errorf("could not read ban journal: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		printed := 0
		for _, ban := range bans {
			if flagAxis != "" && ban.Axis.String() != flagAxis {
				continue
			}
			if err := enc.Encode(toRecord(ban)); err != nil {
				return err
			}
			printed++
		}
		log.Info().Int("bans", printed).Str("journal_dir", dir).Msg("printed ban journal")
		return nil
	},
}
