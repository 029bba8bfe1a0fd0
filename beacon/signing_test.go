package beacon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2030/cloracle/ssz"
)

func TestComputeDomain(t *testing.T) {
	gvr := Root{0x4b, 0x36, 0x3d}
	version := Version{0, 0, 0, 1}
	d := ComputeDomain(DomainType{0x01, 0x02, 0x03, 0x04}, version, gvr)

	forkData := ssz.HashTreeRootContainer(ssz.HashTreeRootBytes4(version), gvr)
	require.Equal(t, []byte{1, 2, 3, 4}, d[:4])
	require.Equal(t, forkData[:28], d[4:])
}

func TestVersionAt(t *testing.T) {
	f := Fork{PreviousVersion: Version{1}, CurrentVersion: Version{2}, Epoch: 10}
	require.Equal(t, Version{1}, f.VersionAt(9))
	require.Equal(t, Version{2}, f.VersionAt(10))
	require.Equal(t, Version{2}, f.VersionAt(11))
}

func TestProposerSigningRoot(t *testing.T) {
	s := testState()
	h := testSignedHeader(Root{})
	got := ProposerSigningRoot(&h.Message, s)

	domain := ComputeDomain(DomainBeaconProposer, s.Fork.CurrentVersion, s.GenesisValidatorsRoot)
	require.Equal(t, ComputeSigningRoot(h.Message.HashTreeRoot(), domain), got)

	s.Fork.Epoch = h.Message.Slot.Epoch() + 1
	require.NotEqual(t, got, ProposerSigningRoot(&h.Message, s))
}
