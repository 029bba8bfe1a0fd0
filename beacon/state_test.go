package beacon

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2030/cloracle/ssz"
)

func TestZeroHeaderRoot(t *testing.T) {
	var h BeaconBlockHeader
	// Five zero fields padded to eight leaves.
	require.Equal(t, ssz.ZeroHash(3), h.HashTreeRoot())
}

func TestCheckpointRoot(t *testing.T) {
	c := Checkpoint{Epoch: 3, Root: Root{0xff}}
	var buf [64]byte
	buf[0] = 3
	buf[32] = 0xff
	require.Equal(t, sha256.Sum256(buf[:]), c.HashTreeRoot())
}

func TestSignedHeaderRootDiffersFromBlockRoot(t *testing.T) {
	h := testSignedHeader(Root{1})
	require.Equal(t, h.Message.HashTreeRoot(), h.BlockRoot())
	require.NotEqual(t, h.BlockRoot(), h.HashTreeRoot())
}

func TestHeaderRootSensitiveToEveryField(t *testing.T) {
	base := testSignedHeader(Root{1}).Message
	root := base.HashTreeRoot()
	mutations := []func(h *BeaconBlockHeader){
		func(h *BeaconBlockHeader) { h.Slot++ },
		func(h *BeaconBlockHeader) { h.ProposerIndex++ },
		func(h *BeaconBlockHeader) { h.ParentRoot[31] ^= 1 },
		func(h *BeaconBlockHeader) { h.StateRoot[0] ^= 1 },
		func(h *BeaconBlockHeader) { h.BodyRoot[16] ^= 0x80 },
	}
	for i, mutate := range mutations {
		h := base
		mutate(&h)
		require.NotEqual(t, root, h.HashTreeRoot(), "mutation %d", i)
	}
}

func TestStateRootDeterministic(t *testing.T) {
	a, err := testState().HashTreeRoot()
	require.NoError(t, err)
	b, err := testState().HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestStateRootSensitive(t *testing.T) {
	base, err := testState().HashTreeRoot()
	require.NoError(t, err)

	mutations := map[string]func(s *BeaconState){
		"balance":      func(s *BeaconState) { s.Balances[1]++ },
		"credentials":  func(s *BeaconState) { s.Validators[0].WithdrawalCredentials[31] ^= 1 },
		"exit":         func(s *BeaconState) { s.Validators[1].ExitEpoch = 150 },
		"slot":         func(s *BeaconState) { s.Slot++ },
		"randao":       func(s *BeaconState) { s.RandaoMixes[65535][0] = 1 },
		"slashings":    func(s *BeaconState) { s.Slashings[0] = 1 },
		"attestation":  func(s *BeaconState) { s.PreviousEpochAttestations[0].AggregationBits = Bitlist{0x0f} },
		"justified":    func(s *BeaconState) { s.JustificationBits = Bitvector4{0x0f} },
		"extra vote":   func(s *BeaconState) { s.Eth1DataVotes = append(s.Eth1DataVotes, Eth1Data{}) },
		"extra valdtr": func(s *BeaconState) { s.AddValidator(Validator{}, 0) },
	}
	for name, mutate := range mutations {
		s := testState()
		mutate(s)
		got, err := s.HashTreeRoot()
		require.NoError(t, err, name)
		require.NotEqual(t, base, got, name)
	}
}

func TestStateRootRejectsBadShape(t *testing.T) {
	cases := map[string]func(s *BeaconState){
		"short block roots": func(s *BeaconState) { s.BlockRoots = s.BlockRoots[:10] },
		"long state roots":  func(s *BeaconState) { s.StateRoots = append(s.StateRoots, Root{}) },
		"missing randao":    func(s *BeaconState) { s.RandaoMixes = nil },
		"short slashings":   func(s *BeaconState) { s.Slashings = s.Slashings[:1] },
		"justification":     func(s *BeaconState) { s.JustificationBits = Bitvector4{0x10} },
	}
	for name, mutate := range cases {
		s := testState()
		mutate(s)
		_, err := s.HashTreeRoot()
		require.ErrorIs(t, err, ErrInvalidLength, name)
	}

	s := testState()
	s.CurrentEpochAttestations = append(s.CurrentEpochAttestations, PendingAttestation{AggregationBits: Bitlist{0x00}})
	_, err := s.HashTreeRoot()
	require.ErrorIs(t, err, ssz.ErrInvalidBitlist)
}

func TestEmptyListsRootLikeZeroLists(t *testing.T) {
	// A list root only depends on content and length, not on capacity.
	a := NewBeaconState(1)
	b := NewBeaconState(1)
	b.Validators = make([]Validator, 0, 16)
	ra, err := a.HashTreeRoot()
	require.NoError(t, err)
	rb, err := b.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, ra, rb)
}

func TestSSZRooter(t *testing.T) {
	s := testState()
	want, err := s.HashTreeRoot()
	require.NoError(t, err)
	got, err := SSZRooter{}.StateRoot(s)
	require.NoError(t, err)
	require.Equal(t, want, got)

	h := testSignedHeader(Root(want))
	hr, err := SSZRooter{}.HeaderRoot(h)
	require.NoError(t, err)
	require.Equal(t, h.Message.HashTreeRoot(), hr)
}
