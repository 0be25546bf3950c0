package badger

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"

	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/model/identity"
	"github.com/relayguard/banhammer/module"
	"github.com/relayguard/banhammer/storage"
	"github.com/relayguard/banhammer/storage/badger/operation"
)

// Bans implements the ban journal on top of badger. It also consumes ban notifications, so it
// can be subscribed to the banhammer directly.
type Bans struct {
	db      *badger.DB
	log     zerolog.Logger
	metrics module.JournalMetrics
}

var (
	_ storage.Bans          = (*Bans)(nil)
	_ banhammer.BanConsumer = (*Bans)(nil)
)

func NewBans(log zerolog.Logger, metrics module.JournalMetrics, db *badger.DB) *Bans {
	return &Bans{
		db:      db,
		log:     log.With().Str("module", "ban_journal").Logger(),
		metrics: metrics,
	}
}

func (b *Bans) Store(ban banhammer.Ban) error {
	err := b.db.Update(operation.InsertBan(&ban))
	if err != nil {
		return fmt.Errorf("could not store ban of %s %s: %w", ban.Axis, ban.Identity, err)
	}
	return nil
}

func (b *Bans) ByIdentity(axis identity.Axis, id string) (banhammer.Ban, error) {
	var ban banhammer.Ban
	err := b.db.View(operation.RetrieveBan(axis, id, &ban))
	if err != nil {
		return banhammer.Ban{}, fmt.Errorf("could not retrieve ban of %s %s: %w", axis, id, err)
	}
	return ban, nil
}

func (b *Bans) All() ([]banhammer.Ban, error) {
	var bans []banhammer.Ban
	collect := func(ban banhammer.Ban) error {
		bans = append(bans, ban)
		return nil
	}

	err := b.db.View(func(tx *badger.Txn) error {
		for _, axis := range []identity.Axis{identity.AxisClient, identity.AxisSender, identity.AxisToken} {
			err := operation.TraverseBans(axis, collect)(tx)
			if err != nil {
				return fmt.Errorf("could not traverse %s bans: %w", axis, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bans, nil
}

// OnIdentityBanned journals ban. Failures are logged and counted but never reach the banhammer:
// the journal is an audit trail and must not stall ban processing.
func (b *Bans) OnIdentityBanned(ban banhammer.Ban) {
	start := time.Now()
	err := b.Store(ban)
	if err != nil {
		b.metrics.OnJournalFailure()
		lg := b.log.Error()
		if errors.Is(err, storage.ErrAlreadyExists) {
			lg = b.log.Warn()
		}
		lg.Err(err).
			Str("axis", ban.Axis.String()).
			Str("identity", ban.Identity).
			Msg("could not journal ban")
		return
	}
	b.metrics.OnBanJournaled(time.Since(start))
}
