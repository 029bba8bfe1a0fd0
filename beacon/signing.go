package beacon

import "github.com/eth2030/cloracle/ssz"

// DomainType identifies what a signature is for.
type DomainType [4]byte

// DomainBeaconProposer is the domain type of block proposals.
var DomainBeaconProposer = DomainType{0x00, 0x00, 0x00, 0x00}

// ComputeDomain mixes a domain type with the fork data root.
func ComputeDomain(dt DomainType, version Version, genesisValidatorsRoot Root) Root {
	forkDataRoot := ssz.HashTreeRootContainer(ssz.HashTreeRootBytes4(version), genesisValidatorsRoot)
	var d Root
	copy(d[:4], dt[:])
	copy(d[4:], forkDataRoot[:28])
	return d
}

// ComputeSigningRoot returns the message actually signed for an object.
func ComputeSigningRoot(objectRoot [32]byte, domain Root) Root {
	return ssz.HashTreeRootContainer(objectRoot, domain)
}

// ProposerSigningRoot returns the signing root of header under the
// proposer domain of state's fork.
func ProposerSigningRoot(h *BeaconBlockHeader, s *BeaconState) Root {
	domain := ComputeDomain(DomainBeaconProposer, s.Fork.VersionAt(h.Slot.Epoch()), s.GenesisValidatorsRoot)
	return ComputeSigningRoot(h.HashTreeRoot(), domain)
}
