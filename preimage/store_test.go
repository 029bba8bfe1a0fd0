package preimage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	ctx := context.Background()
	data := []byte("validator registry")
	h := Keccak256(data)

	ok, err := s.Has(ctx, h)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = s.Get(ctx, h)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, h, data))
	ok, err = s.Has(ctx, h)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.Get(ctx, h)
	require.NoError(t, err)
	require.Equal(t, data, got)

	// Returned buffers are copies.
	got[0] ^= 0xff
	again, err := s.Get(ctx, h)
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestMemStore(t *testing.T) {
	testStore(t, NewMemStore())
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(t.TempDir(), nil)
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)
}

func TestBadgerStorePersists(t *testing.T) {
	dir := t.TempDir()
	data := []byte("persisted")
	h := Keccak256(data)

	s, err := OpenBadgerStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), h, data))
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), h)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestPutVerified(t *testing.T) {
	s := NewMemStore()
	data := []byte("chunk")
	require.NoError(t, PutVerified(context.Background(), s, Keccak256(data), data))
	require.ErrorIs(t, PutVerified(context.Background(), s, Keccak256(data), []byte("other")), ErrDigestMismatch)

	bad := Keccak256(data)
	bad.Type = 0x01
	require.ErrorIs(t, PutVerified(context.Background(), s, bad, data), ErrUnsupportedHashType)
	require.Equal(t, 1, s.Len())
}

func TestStoreFetcherMapsMiss(t *testing.T) {
	_, err := StoreFetcher{NewMemStore()}.Fetch(context.Background(), Keccak256(nil))
	require.ErrorIs(t, err, ErrOracleMiss)
}
