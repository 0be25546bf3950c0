package storage

import (
	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/model/identity"
)

// Bans is the append-only journal of ban notifications. It is an audit trail for operators:
// entries are never updated or removed, and nothing is restored from it on startup.
type Bans interface {
	// Store persists ban.
	// Expected errors during normal operations:
	//   - storage.ErrAlreadyExists if a ban of the same identity has already been stored
	Store(ban banhammer.Ban) error

	// ByIdentity returns the stored ban of the identity with the given string form on axis.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the identity has not been banned
	ByIdentity(axis identity.Axis, id string) (banhammer.Ban, error)

	// All returns every stored ban, grouped by axis.
	All() ([]banhammer.Ban, error)
}
