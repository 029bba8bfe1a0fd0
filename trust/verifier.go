// Package trust checks the two-link chain that makes untrusted oracle data
// usable: the header must hash to the block root fixed on chain, and the
// state must hash to the state root that header commits to.
package trust

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/cloracle/beacon"
	"github.com/eth2030/cloracle/crypto"
)

// Verification errors. Every failure is final for the request.
var (
	// ErrHeaderDecode means the header bytes could not be decoded or
	// rooted.
	ErrHeaderDecode = errors.New("trust: header decode failed")

	// ErrHeaderRootMismatch means the header does not hash to the trusted
	// block root. The concrete error is a *RootMismatchError.
	ErrHeaderRootMismatch = errors.New("trust: header root mismatch")

	// ErrBodyDecode means the reassembled state could not be decoded or
	// rooted.
	ErrBodyDecode = errors.New("trust: state decode failed")

	// ErrBodyRootMismatch means the state does not hash to the header's
	// state root. The concrete error is a *RootMismatchError.
	ErrBodyRootMismatch = errors.New("trust: state root mismatch")

	// ErrProposerSignature means the header signature does not verify
	// under the proposer key held in the verified state.
	ErrProposerSignature = errors.New("trust: invalid proposer signature")
)

// RootMismatchError reports a recomputed root that differs from the
// trusted one.
type RootMismatchError struct {
	Object string
	Want   [32]byte
	Got    [32]byte
}

func (e *RootMismatchError) Error() string {
	return fmt.Sprintf("trust: %s root mismatch: want %s, got %s",
		e.Object, hexutil.Encode(e.Want[:]), hexutil.Encode(e.Got[:]))
}

// Is matches the sentinel of the failing stage.
func (e *RootMismatchError) Is(target error) bool {
	switch e.Object {
	case "header":
		return target == ErrHeaderRootMismatch
	case "state":
		return target == ErrBodyRootMismatch
	}
	return false
}

// Rooter computes canonical roots. It is the seam through which tests
// inject crafted roots.
type Rooter interface {
	HeaderRoot(h *beacon.SignedBeaconBlockHeader) ([32]byte, error)
	StateRoot(s *beacon.BeaconState) ([32]byte, error)
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithProposerSignatureCheck additionally verifies the header signature
// under the proposer key found in the verified state.
func WithProposerSignatureCheck() Option {
	return func(v *Verifier) { v.checkSignature = true }
}

// Verifier holds no mutable state and is safe for concurrent use.
type Verifier struct {
	rooter         Rooter
	checkSignature bool
}

// New returns a Verifier. A nil rooter means SSZ merkleization.
func New(rooter Rooter, opts ...Option) *Verifier {
	if rooter == nil {
		rooter = beacon.SSZRooter{}
	}
	v := &Verifier{rooter: rooter}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyHeader decodes raw and checks that its root equals expected.
func (v *Verifier) VerifyHeader(raw []byte, expected [32]byte) (*beacon.SignedBeaconBlockHeader, error) {
	h, err := beacon.DecodeSignedHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderDecode, err)
	}
	got, err := v.rooter.HeaderRoot(h)
	if err != nil {
		return nil, fmt.Errorf("%w: root: %v", ErrHeaderDecode, err)
	}
	if got != expected {
		return nil, &RootMismatchError{Object: "header", Want: expected, Got: got}
	}
	return h, nil
}

// VerifyBody decodes raw and checks that its root equals the state root
// committed to by header.
func (v *Verifier) VerifyBody(raw []byte, header *beacon.SignedBeaconBlockHeader) (*beacon.BeaconState, error) {
	s, err := beacon.DecodeState(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBodyDecode, err)
	}
	got, err := v.rooter.StateRoot(s)
	if err != nil {
		return nil, fmt.Errorf("%w: root: %v", ErrBodyDecode, err)
	}
	want := [32]byte(header.Message.StateRoot)
	if got != want {
		return nil, &RootMismatchError{Object: "state", Want: want, Got: got}
	}
	if v.checkSignature {
		if err := verifyProposer(header, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func verifyProposer(h *beacon.SignedBeaconBlockHeader, s *beacon.BeaconState) error {
	idx := uint64(h.Message.ProposerIndex)
	if idx >= uint64(len(s.Validators)) {
		return fmt.Errorf("%w: proposer %d not in registry", ErrProposerSignature, idx)
	}
	pk := s.Validators[idx].Pubkey
	root := beacon.ProposerSigningRoot(&h.Message, s)
	if err := crypto.VerifyBLS(pk[:], root[:], h.Signature[:]); err != nil {
		if errors.Is(err, crypto.ErrBLSUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrProposerSignature, err)
	}
	return nil
}
