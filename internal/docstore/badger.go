// SPDX-License-Identifier: MIT

package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamaisvu/jamaisvu/internal/recording"
)

const docPrefix = "doc:"

// BadgerStore persists documents as JSON values under "doc:<filename>" keys.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger-backed document store at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(ctx context.Context, doc recording.Document) error {
	key := []byte(docPrefix + doc.Filename)
	buf, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
}

func (s *BadgerStore) Get(ctx context.Context, filename string) (recording.Document, error) {
	key := []byte(docPrefix + filename)
	var out recording.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return recording.Document{}, ErrNotFound
	}
	if err != nil {
		return recording.Document{}, err
	}
	return out, nil
}

func (s *BadgerStore) List(ctx context.Context) ([]recording.Document, error) {
	var out []recording.Document
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(docPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var doc recording.Document
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return err
			}
			out = append(out, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
