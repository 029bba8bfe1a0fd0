package oracle

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// InputLength is the size of an ABI encoded Input.
const InputLength = 64

// ErrMalformedInput is returned for payloads that are not exactly an ABI
// encoded (bytes32,bytes32) tuple.
var ErrMalformedInput = errors.New("oracle: malformed input")

var inputArgs abi.Arguments

func init() {
	b32, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		panic(err)
	}
	inputArgs = abi.Arguments{
		{Name: "block_root", Type: b32},
		{Name: "manifest_hash", Type: b32},
	}
}

// Input is the on-chain request: the trusted block root and the hash of
// the manifest describing the snapshot.
type Input struct {
	BlockRoot    [32]byte
	ManifestHash [32]byte
}

// DecodeInput parses an advance payload.
func DecodeInput(payload []byte) (*Input, error) {
	if len(payload) != InputLength {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrMalformedInput, len(payload), InputLength)
	}
	vals, err := inputArgs.Unpack(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	root, ok1 := vals[0].([32]byte)
	hash, ok2 := vals[1].([32]byte)
	if !ok1 || !ok2 {
		return nil, ErrMalformedInput
	}
	return &Input{BlockRoot: root, ManifestHash: hash}, nil
}

// Encode returns the ABI encoding of the input.
func (in *Input) Encode() ([]byte, error) {
	return inputArgs.Pack(in.BlockRoot, in.ManifestHash)
}
