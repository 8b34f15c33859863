package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// blobPrefix namespaces opaque blobs away from structured records.
const blobPrefix = "blob:"

// GetBlob retrieves the raw bytes stored under name. The second return
// value is false when nothing is stored, which callers must distinguish
// from an undecodable blob (that is their codec's problem, not ours).
func (s *Store) GetBlob(_ context.Context, name string) ([]byte, bool, error) {
	key := buildKey(blobPrefix, name)
	defer releaseKey(key)

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get blob %q: %w", name, err)
	}
	return data, true, nil
}

// SetBlob stores raw bytes under name, replacing any previous value.
func (s *Store) SetBlob(_ context.Context, name string, data []byte) error {
	key := buildKey(blobPrefix, name)
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to set blob %q: %w", name, err)
	}
	return nil
}

// DeleteBlob removes the blob stored under name. Deleting a blob that
// does not exist is not an error.
func (s *Store) DeleteBlob(_ context.Context, name string) error {
	key := buildKey(blobPrefix, name)
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", name, err)
	}
	return nil
}
