package beacon

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/eth2030/cloracle/log"
	"github.com/eth2030/cloracle/preimage"
)

// Cache stores raw API responses by request path. Entries never expire.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error
}

// BadgerCache is a Cache persisted in a badger directory.
type BadgerCache struct {
	db *badger.DB
}

// OpenCache opens or creates a response cache in dir.
func OpenCache(dir string, logger *log.Logger) (*BadgerCache, error) {
	if logger == nil {
		logger = log.Nop()
	}
	opts := badger.DefaultOptions(dir).WithLogger(preimage.NewBadgerLogger(logger))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("beacon: open cache %s: %w", dir, err)
	}
	return &BadgerCache{db: db}, nil
}

// Close closes the underlying database.
func (c *BadgerCache) Close() error { return c.db.Close() }

// Get returns the cached response for key.
func (c *BadgerCache) Get(key string) ([]byte, bool, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Put stores a response under key.
func (c *BadgerCache) Put(key string, data []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}
