package preimage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Store holds preimages on the host side so they can be served to the
// oracle client.
type Store interface {
	Put(ctx context.Context, h ContentHash, data []byte) error
	Get(ctx context.Context, h ContentHash) ([]byte, error)
	Has(ctx context.Context, h ContentHash) (bool, error)
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu   sync.RWMutex
	data map[ContentHash][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[ContentHash][]byte)}
}

// Put stores a copy of data under h.
func (s *MemStore) Put(_ context.Context, h ContentHash, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[h] = cp
	return nil
}

// Get returns a copy of the preimage of h.
func (s *MemStore) Get(_ context.Context, h ContentHash) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Has reports whether h is present.
func (s *MemStore) Has(_ context.Context, h ContentHash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[h]
	return ok, nil
}

// Len returns the number of stored preimages.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// PutVerified checks that data hashes to h before storing it.
func PutVerified(ctx context.Context, s Store, h ContentHash, data []byte) error {
	if h.Type != HashTypeKeccak256 {
		return fmt.Errorf("%w: %s", ErrUnsupportedHashType, h.Type)
	}
	if !h.Matches(data) {
		return fmt.Errorf("%w: %s", ErrDigestMismatch, h)
	}
	return s.Put(ctx, h, data)
}

func storeFetch(ctx context.Context, s Store, h ContentHash) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.Get(ctx, h)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOracleMiss, h)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	return data, nil
}
