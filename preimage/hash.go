// Package preimage implements content-addressed blob retrieval through the
// rollup host's generic I/O (GIO) preimage oracle, in-order reassembly of
// chunked blobs, and the host-side store and endpoints that make preimages
// servable.
package preimage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/cloracle/crypto"
)

// HashType tags the algorithm a ContentHash digest was produced with.
type HashType uint8

// HashTypeKeccak256 is the GIO tag for legacy Keccak-256 digests.
const HashTypeKeccak256 HashType = 0x02

// DigestLength is the size of every supported digest.
const DigestLength = 32

// ErrInvalidID is returned when a GIO id cannot be parsed.
var ErrInvalidID = errors.New("preimage: invalid id")

// String returns the algorithm name.
func (t HashType) String() string {
	switch t {
	case HashTypeKeccak256:
		return "keccak256"
	default:
		return fmt.Sprintf("hashtype(%d)", uint8(t))
	}
}

// ContentHash identifies a blob by the digest of its contents.
type ContentHash struct {
	Type   HashType
	Digest [DigestLength]byte
}

// Keccak256 returns the Keccak-256 content hash of data.
func Keccak256(data []byte) ContentHash {
	return ContentHash{Type: HashTypeKeccak256, Digest: crypto.Keccak256Array(data)}
}

// NewKeccak256 wraps an existing Keccak-256 digest.
func NewKeccak256(digest [DigestLength]byte) ContentHash {
	return ContentHash{Type: HashTypeKeccak256, Digest: digest}
}

// Matches reports whether data hashes to h. Only Keccak-256 is supported.
func (h ContentHash) Matches(data []byte) bool {
	return h.Type == HashTypeKeccak256 && Keccak256(data).Digest == h.Digest
}

// Hex returns the 0x-prefixed digest.
func (h ContentHash) Hex() string { return hexutil.Encode(h.Digest[:]) }

// ID returns the GIO request id: the type tag byte followed by the digest,
// hex encoded with a 0x prefix.
func (h ContentHash) ID() string {
	return fmt.Sprintf("0x%02x%x", uint8(h.Type), h.Digest[:])
}

// String implements fmt.Stringer.
func (h ContentHash) String() string { return h.Type.String() + ":" + h.Hex() }

// ParseID is the inverse of ContentHash.ID.
func ParseID(id string) (ContentHash, error) {
	raw, err := decodeHex(id)
	if err != nil {
		return ContentHash{}, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if len(raw) != 1+DigestLength {
		return ContentHash{}, fmt.Errorf("%w: length %d", ErrInvalidID, len(raw))
	}
	var h ContentHash
	h.Type = HashType(raw[0])
	copy(h.Digest[:], raw[1:])
	return h, nil
}

// decodeHex accepts hex with or without a 0x prefix.
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}
