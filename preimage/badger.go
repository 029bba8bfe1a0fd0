package preimage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/eth2030/cloracle/log"
)

// BadgerStore is a persistent Store backed by badger. Keys are the hash
// type byte followed by the digest.
type BadgerStore struct {
	db  *badger.DB
	log *log.Logger
}

// OpenBadgerStore opens (or creates) a store in dir.
func OpenBadgerStore(dir string, logger *log.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = log.Nop()
	}
	opts := badger.DefaultOptions(dir).WithLogger(NewBadgerLogger(logger))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("preimage: open store %s: %w", dir, err)
	}
	return &BadgerStore{db: db, log: logger}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func storeKey(h ContentHash) []byte {
	key := make([]byte, 1+DigestLength)
	key[0] = byte(h.Type)
	copy(key[1:], h.Digest[:])
	return key
}

// Put stores data under h.
func (s *BadgerStore) Put(_ context.Context, h ContentHash, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(h), data)
	})
}

// Get returns the preimage of h.
func (s *BadgerStore) Get(_ context.Context, h ContentHash) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(h))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h)
	}
	if err != nil {
		return nil, fmt.Errorf("preimage: get %s: %w", h, err)
	}
	return value, nil
}

// Has reports whether h is present.
func (s *BadgerStore) Has(_ context.Context, h ContentHash) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(storeKey(h))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("preimage: has %s: %w", h, err)
	}
	return true, nil
}

// badgerLogger adapts log.Logger to badger.Logger.
type badgerLogger struct {
	l *log.Logger
}

// NewBadgerLogger routes badger's printf-style logging through l.
func NewBadgerLogger(l *log.Logger) badger.Logger {
	return &badgerLogger{l: l.Module("badger")}
}

func (b *badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Info(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(fmt.Sprintf(format, args...))
}
