package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/eth2030/cloracle/preimage"
)

// DefaultChunkSize is the size of every state chunk except possibly the last.
const DefaultChunkSize = 256 * 1024

// ErrInvalidChunkSize is returned by Build for a non-positive chunk size.
var ErrInvalidChunkSize = errors.New("manifest: invalid chunk size")

// Bundle is everything a host must be able to serve for one snapshot.
type Bundle struct {
	Manifest     *Manifest
	ManifestData []byte
	HeaderData   []byte
	Chunks       [][]byte
}

// Build splits the encoded state into chunks and indexes them together
// with the encoded header.
func Build(headerData, stateData []byte, chunkSize int) (*Bundle, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunkSize)
	}
	b := &Bundle{
		HeaderData: headerData,
		Manifest:   &Manifest{BlockHash: preimage.Keccak256(headerData).Digest},
	}
	for off := 0; off < len(stateData); off += chunkSize {
		end := min(off+chunkSize, len(stateData))
		chunk := stateData[off:end]
		b.Chunks = append(b.Chunks, chunk)
		b.Manifest.StateChunkHashes = append(b.Manifest.StateChunkHashes, preimage.Keccak256(chunk).Digest)
	}
	if b.Manifest.StateChunkHashes == nil {
		b.Manifest.StateChunkHashes = [][32]byte{}
	}
	data, err := b.Manifest.Encode()
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	b.ManifestData = data
	return b, nil
}

// Hash returns the manifest content hash.
func (b *Bundle) Hash() preimage.ContentHash {
	return preimage.Keccak256(b.ManifestData)
}

// Preimages returns the manifest, the header and every chunk as upload
// tuples, in that order.
func (b *Bundle) Preimages() []preimage.Preimage {
	out := make([]preimage.Preimage, 0, len(b.Chunks)+2)
	out = append(out, preimage.NewPreimage(b.ManifestData), preimage.NewPreimage(b.HeaderData))
	for _, c := range b.Chunks {
		out = append(out, preimage.NewPreimage(c))
	}
	return out
}

// Populate writes the bundle into a local store.
func (b *Bundle) Populate(ctx context.Context, s preimage.Store) error {
	for _, p := range b.Preimages() {
		h, err := p.ContentHash()
		if err != nil {
			return err
		}
		if err := preimage.PutVerified(ctx, s, h, p.Data); err != nil {
			return err
		}
	}
	return nil
}
