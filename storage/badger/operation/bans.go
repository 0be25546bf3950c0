package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/model/identity"
)

// InsertBan stores ban under the key of its identity.
func InsertBan(ban *banhammer.Ban) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		key, err := banKey(ban.Axis, ban.Identity)
		if err != nil {
			return err
		}
		return insert(key, ban)(tx)
	}
}

// RetrieveBan loads the ban of the identity with string form id on axis.
func RetrieveBan(axis identity.Axis, id string, ban *banhammer.Ban) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		key, err := banKey(axis, id)
		if err != nil {
			return err
		}
		return retrieve(key, ban)(tx)
	}
}

// TraverseBans calls handle for every stored ban on axis.
func TraverseBans(axis identity.Axis, handle func(banhammer.Ban) error) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		code, err := banCode(axis)
		if err != nil {
			return err
		}

		var ban banhammer.Ban
		create := func() interface{} {
			ban = banhammer.Ban{}
			return &ban
		}
		return traverse(makePrefix(code), create, func() error {
			return handle(ban)
		})(tx)
	}
}

func banKey(axis identity.Axis, id string) ([]byte, error) {
	code, err := banCode(axis)
	if err != nil {
		return nil, err
	}
	return makePrefix(code, []byte(id)), nil
}
