// Package manifest defines the index blob that tells the oracle which
// preimages make up one beacon snapshot: the hash of the encoded signed
// block header and the ordered hashes of the encoded state chunks.
package manifest

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/eth2030/cloracle/preimage"
)

// ErrMalformed is returned when manifest bytes cannot be decoded.
var ErrMalformed = errors.New("manifest: malformed")

// Manifest lists the preimages of one snapshot. Chunk order is significant.
type Manifest struct {
	BlockHash        [32]byte
	StateChunkHashes [][32]byte
}

// wireManifest is the CBOR map form. Digests are decoded as plain byte
// slices so their lengths can be checked.
type wireManifest struct {
	BlockHash        []byte    `cbor:"block_hash"`
	StateChunkHashes *[][]byte `cbor:"state_chunk_hashes"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// HeaderHash returns the content hash of the encoded signed block header.
func (m *Manifest) HeaderHash() preimage.ContentHash {
	return preimage.NewKeccak256(m.BlockHash)
}

// ChunkHashes returns the content hashes of the state chunks in order.
func (m *Manifest) ChunkHashes() []preimage.ContentHash {
	out := make([]preimage.ContentHash, len(m.StateChunkHashes))
	for i, d := range m.StateChunkHashes {
		out[i] = preimage.NewKeccak256(d)
	}
	return out
}

// Encode returns the deterministic CBOR encoding.
func (m *Manifest) Encode() ([]byte, error) {
	chunks := make([][]byte, len(m.StateChunkHashes))
	for i := range m.StateChunkHashes {
		chunks[i] = m.StateChunkHashes[i][:]
	}
	return encMode.Marshal(wireManifest{BlockHash: m.BlockHash[:], StateChunkHashes: &chunks})
}

// Hash returns the content hash of the encoded manifest, which is the
// value submitted on chain as the manifest hash.
func (m *Manifest) Hash() (preimage.ContentHash, error) {
	data, err := m.Encode()
	if err != nil {
		return preimage.ContentHash{}, err
	}
	return preimage.Keccak256(data), nil
}

// Decode parses manifest bytes. Missing or unknown fields, duplicate keys,
// digests of the wrong length and trailing data are rejected.
func Decode(data []byte) (*Manifest, error) {
	var w wireManifest
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(w.BlockHash) != 32 {
		return nil, fmt.Errorf("%w: block_hash length %d", ErrMalformed, len(w.BlockHash))
	}
	if w.StateChunkHashes == nil {
		return nil, fmt.Errorf("%w: missing state_chunk_hashes", ErrMalformed)
	}
	chunks := *w.StateChunkHashes
	m := &Manifest{StateChunkHashes: make([][32]byte, len(chunks))}
	copy(m.BlockHash[:], w.BlockHash)
	for i, d := range chunks {
		if len(d) != 32 {
			return nil, fmt.Errorf("%w: state_chunk_hashes[%d] length %d", ErrMalformed, i, len(d))
		}
		copy(m.StateChunkHashes[i][:], d)
	}
	return m, nil
}
