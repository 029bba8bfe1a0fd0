package beacon

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

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
		MaxArrayElements:  maxArrayElements,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// maxArrayElements caps CBOR arrays accepted by the decoder. The default
// of the cbor package is smaller than a mainnet validator registry.
const maxArrayElements = 1 << 27

// EncodeSignedHeader returns the CBOR encoding of a signed header.
func EncodeSignedHeader(h *SignedBeaconBlockHeader) ([]byte, error) {
	return encMode.Marshal(h)
}

// DecodeSignedHeader parses a CBOR signed header.
func DecodeSignedHeader(data []byte) (*SignedBeaconBlockHeader, error) {
	var h SignedBeaconBlockHeader
	if err := decMode.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: signed header: %v", ErrDecode, err)
	}
	return &h, nil
}

// EncodeState returns the CBOR encoding of a state.
func EncodeState(s *BeaconState) ([]byte, error) {
	return encMode.Marshal(s)
}

// DecodeState parses a CBOR state. Vector lengths are checked when the
// state is rooted, not here.
func DecodeState(data []byte) (*BeaconState, error) {
	var s BeaconState
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: state: %v", ErrDecode, err)
	}
	return &s, nil
}

// SSZRooter computes header and state roots with SSZ merkleization.
type SSZRooter struct{}

// HeaderRoot returns the block root of the header message.
func (SSZRooter) HeaderRoot(h *SignedBeaconBlockHeader) ([32]byte, error) {
	return h.BlockRoot(), nil
}

// StateRoot returns the state root.
func (SSZRooter) StateRoot(s *BeaconState) ([32]byte, error) {
	return s.HashTreeRoot()
}
