// Package beacon defines the phase0 consensus objects the oracle consumes,
// their SSZ hash tree roots, the CBOR encoding they travel in, and a
// minimal beacon node API client used by the producer side.
package beacon

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Mainnet phase0 preset.
const (
	SlotsPerEpoch             = 32
	SlotsPerHistoricalRoot    = 8192
	HistoricalRootsLimit      = 1 << 24
	EpochsPerEth1VotingPeriod = 64
	ValidatorRegistryLimit    = 1 << 40
	EpochsPerHistoricalVector = 65536
	EpochsPerSlashingsVector  = 8192
	MaxAttestations           = 128
	MaxValidatorsPerCommittee = 2048
	JustificationBitsLength   = 4

	Eth1DataVotesLimit       = EpochsPerEth1VotingPeriod * SlotsPerEpoch
	PendingAttestationsLimit = MaxAttestations * SlotsPerEpoch
)

// FarFutureEpoch marks an exit or withdrawal that has not been scheduled.
const FarFutureEpoch = Epoch(^uint64(0))

var (
	// ErrInvalidLength is returned when a fixed-size field or vector has
	// the wrong length, or a list exceeds its limit.
	ErrInvalidLength = errors.New("beacon: invalid length")
	// ErrDecode wraps every CBOR decoding failure.
	ErrDecode = errors.New("beacon: decode")
)

type (
	Slot           uint64
	Epoch          uint64
	Gwei           uint64
	ValidatorIndex uint64
)

// Epoch returns the epoch containing s.
func (s Slot) Epoch() Epoch { return Epoch(uint64(s) / SlotsPerEpoch) }

// The beacon API quotes every integer.

func (s Slot) MarshalText() ([]byte, error)           { return formatUint(uint64(s)) }
func (e Epoch) MarshalText() ([]byte, error)          { return formatUint(uint64(e)) }
func (g Gwei) MarshalText() ([]byte, error)           { return formatUint(uint64(g)) }
func (i ValidatorIndex) MarshalText() ([]byte, error) { return formatUint(uint64(i)) }

func (s *Slot) UnmarshalText(in []byte) error           { return parseUint((*uint64)(s), in) }
func (e *Epoch) UnmarshalText(in []byte) error          { return parseUint((*uint64)(e), in) }
func (g *Gwei) UnmarshalText(in []byte) error           { return parseUint((*uint64)(g), in) }
func (i *ValidatorIndex) UnmarshalText(in []byte) error { return parseUint((*uint64)(i), in) }

func formatUint(v uint64) ([]byte, error) {
	return strconv.AppendUint(nil, v, 10), nil
}

func parseUint(out *uint64, in []byte) error {
	v, err := strconv.ParseUint(string(in), 10, 64)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// Root is a 32-byte SSZ root or hash.
type Root [32]byte

// Version is a 4-byte fork version.
type Version [4]byte

// BLSPubkey is a compressed BLS12-381 G1 public key.
type BLSPubkey [48]byte

// BLSSignature is a compressed BLS12-381 G2 signature.
type BLSSignature [96]byte

// Bitvector4 holds the justification bits.
type Bitvector4 [1]byte

// Bitlist is an SSZ serialized bitlist including its sentinel bit.
type Bitlist []byte

func (r Root) String() string      { return hexutil.Encode(r[:]) }
func (v Version) String() string   { return hexutil.Encode(v[:]) }
func (p BLSPubkey) String() string { return hexutil.Encode(p[:]) }

func (r Root) MarshalText() ([]byte, error)         { return hexutil.Bytes(r[:]).MarshalText() }
func (v Version) MarshalText() ([]byte, error)      { return hexutil.Bytes(v[:]).MarshalText() }
func (p BLSPubkey) MarshalText() ([]byte, error)    { return hexutil.Bytes(p[:]).MarshalText() }
func (s BLSSignature) MarshalText() ([]byte, error) { return hexutil.Bytes(s[:]).MarshalText() }
func (b Bitvector4) MarshalText() ([]byte, error)   { return hexutil.Bytes(b[:]).MarshalText() }
func (b Bitlist) MarshalText() ([]byte, error)      { return hexutil.Bytes(b).MarshalText() }

func (r *Root) UnmarshalText(in []byte) error {
	return hexutil.UnmarshalFixedText("Root", in, r[:])
}

func (v *Version) UnmarshalText(in []byte) error {
	return hexutil.UnmarshalFixedText("Version", in, v[:])
}

func (p *BLSPubkey) UnmarshalText(in []byte) error {
	return hexutil.UnmarshalFixedText("BLSPubkey", in, p[:])
}

func (s *BLSSignature) UnmarshalText(in []byte) error {
	return hexutil.UnmarshalFixedText("BLSSignature", in, s[:])
}

func (b *Bitvector4) UnmarshalText(in []byte) error {
	return hexutil.UnmarshalFixedText("Bitvector4", in, b[:])
}

func (b *Bitlist) UnmarshalText(in []byte) error {
	return (*hexutil.Bytes)(b).UnmarshalText(in)
}

func (r Root) MarshalCBOR() ([]byte, error)         { return encMode.Marshal(r[:]) }
func (v Version) MarshalCBOR() ([]byte, error)      { return encMode.Marshal(v[:]) }
func (p BLSPubkey) MarshalCBOR() ([]byte, error)    { return encMode.Marshal(p[:]) }
func (s BLSSignature) MarshalCBOR() ([]byte, error) { return encMode.Marshal(s[:]) }
func (b Bitvector4) MarshalCBOR() ([]byte, error)   { return encMode.Marshal(b[:]) }

func (r *Root) UnmarshalCBOR(data []byte) error         { return unmarshalFixed("Root", data, r[:]) }
func (v *Version) UnmarshalCBOR(data []byte) error      { return unmarshalFixed("Version", data, v[:]) }
func (p *BLSPubkey) UnmarshalCBOR(data []byte) error    { return unmarshalFixed("BLSPubkey", data, p[:]) }
func (s *BLSSignature) UnmarshalCBOR(data []byte) error { return unmarshalFixed("BLSSignature", data, s[:]) }
func (b *Bitvector4) UnmarshalCBOR(data []byte) error   { return unmarshalFixed("Bitvector4", data, b[:]) }

// unmarshalFixed decodes a CBOR byte string (or array of small integers)
// into out, which must be filled exactly.
func unmarshalFixed(name string, data []byte, out []byte) error {
	var b []byte
	if err := decMode.Unmarshal(data, &b); err != nil {
		return err
	}
	if len(b) != len(out) {
		return fmt.Errorf("%w: %s has %d bytes, want %d", ErrInvalidLength, name, len(b), len(out))
	}
	copy(out, b)
	return nil
}
