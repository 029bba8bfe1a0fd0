package preimage

import "context"

// Fetcher resolves a content hash to its preimage.
type Fetcher interface {
	Fetch(ctx context.Context, h ContentHash) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, h ContentHash) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, h ContentHash) ([]byte, error) {
	return f(ctx, h)
}

// StoreFetcher serves preimages straight from a Store. It maps
// ErrNotFound to ErrOracleMiss so callers observe the same failure as
// through the GIO transport.
type StoreFetcher struct {
	Store Store
}

// Fetch implements Fetcher.
func (s StoreFetcher) Fetch(ctx context.Context, h ContentHash) ([]byte, error) {
	return storeFetch(ctx, s.Store, h)
}
