package operation

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/relayguard/banhammer/storage"
)

// insert encodes entity and stores it under key. It fails with storage.ErrAlreadyExists if key is
// already present.
func insert(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("could not check key: %w", err)
		}

		val, err := encodeEntity(entity)
		if err != nil {
			return err
		}

		err = tx.Set(key, val)
		if err != nil {
			return fmt.Errorf("could not store data: %w", err)
		}
		return nil
	}
}

// retrieve decodes the value stored under key into entity, which must be a pointer.
// It fails with storage.ErrNotFound if key is absent.
func retrieve(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("could not load data: %w", err)
		}

		err = item.Value(func(val []byte) error {
			return decodeValue(val, entity)
		})
		if err != nil {
			return fmt.Errorf("could not decode entity: %w", err)
		}
		return nil
	}
}

// createFunc returns a fresh pointer to decode the next value into.
type createFunc func() interface{}

// handleFunc processes the entity decoded by the last createFunc call.
type handleFunc func() error

// traverse decodes every value whose key starts with prefix, in key order, and hands it to handle.
func traverse(prefix []byte, create createFunc, handle handleFunc) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			entity := create()
			err := item.Value(func(val []byte) error {
				return decodeValue(val, entity)
			})
			if err != nil {
				return fmt.Errorf("could not decode entity at key %x: %w", item.Key(), err)
			}

			err = handle()
			if err != nil {
				return fmt.Errorf("could not handle entity at key %x: %w", item.Key(), err)
			}
		}
		return nil
	}
}
