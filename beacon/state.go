package beacon

import (
	"fmt"

	"github.com/eth2030/cloracle/ssz"
)

// BeaconState is the phase0 beacon state.
type BeaconState struct {
	GenesisTime           uint64            `json:"genesis_time,string" cbor:"genesis_time"`
	GenesisValidatorsRoot Root              `json:"genesis_validators_root" cbor:"genesis_validators_root"`
	Slot                  Slot              `json:"slot" cbor:"slot"`
	Fork                  Fork              `json:"fork" cbor:"fork"`
	LatestBlockHeader     BeaconBlockHeader `json:"latest_block_header" cbor:"latest_block_header"`
	BlockRoots            []Root            `json:"block_roots" cbor:"block_roots"`
	StateRoots            []Root            `json:"state_roots" cbor:"state_roots"`
	HistoricalRoots       []Root            `json:"historical_roots" cbor:"historical_roots"`

	Eth1Data         Eth1Data   `json:"eth1_data" cbor:"eth1_data"`
	Eth1DataVotes    []Eth1Data `json:"eth1_data_votes" cbor:"eth1_data_votes"`
	Eth1DepositIndex uint64     `json:"eth1_deposit_index,string" cbor:"eth1_deposit_index"`

	Validators []Validator `json:"validators" cbor:"validators"`
	Balances   []Gwei      `json:"balances" cbor:"balances"`

	RandaoMixes []Root `json:"randao_mixes" cbor:"randao_mixes"`
	Slashings   []Gwei `json:"slashings" cbor:"slashings"`

	PreviousEpochAttestations []PendingAttestation `json:"previous_epoch_attestations" cbor:"previous_epoch_attestations"`
	CurrentEpochAttestations  []PendingAttestation `json:"current_epoch_attestations" cbor:"current_epoch_attestations"`

	JustificationBits           Bitvector4 `json:"justification_bits" cbor:"justification_bits"`
	PreviousJustifiedCheckpoint Checkpoint `json:"previous_justified_checkpoint" cbor:"previous_justified_checkpoint"`
	CurrentJustifiedCheckpoint  Checkpoint `json:"current_justified_checkpoint" cbor:"current_justified_checkpoint"`
	FinalizedCheckpoint         Checkpoint `json:"finalized_checkpoint" cbor:"finalized_checkpoint"`
}

// NewBeaconState returns a state at the given slot with every fixed-size
// vector allocated and every list empty.
func NewBeaconState(slot Slot) *BeaconState {
	return &BeaconState{
		Slot:                      slot,
		BlockRoots:                make([]Root, SlotsPerHistoricalRoot),
		StateRoots:                make([]Root, SlotsPerHistoricalRoot),
		HistoricalRoots:           []Root{},
		Eth1DataVotes:             []Eth1Data{},
		Validators:                []Validator{},
		Balances:                  []Gwei{},
		RandaoMixes:               make([]Root, EpochsPerHistoricalVector),
		Slashings:                 make([]Gwei, EpochsPerSlashingsVector),
		PreviousEpochAttestations: []PendingAttestation{},
		CurrentEpochAttestations:  []PendingAttestation{},
	}
}

// AddValidator appends a validator with its balance and returns its index.
func (s *BeaconState) AddValidator(v Validator, balance Gwei) ValidatorIndex {
	s.Validators = append(s.Validators, v)
	s.Balances = append(s.Balances, balance)
	return ValidatorIndex(len(s.Validators) - 1)
}

// Validate checks vector lengths and list limits.
func (s *BeaconState) Validate() error {
	checks := []struct {
		name  string
		n     int
		want  uint64
		exact bool
	}{
		{"block_roots", len(s.BlockRoots), SlotsPerHistoricalRoot, true},
		{"state_roots", len(s.StateRoots), SlotsPerHistoricalRoot, true},
		{"historical_roots", len(s.HistoricalRoots), HistoricalRootsLimit, false},
		{"eth1_data_votes", len(s.Eth1DataVotes), Eth1DataVotesLimit, false},
		{"validators", len(s.Validators), ValidatorRegistryLimit, false},
		{"balances", len(s.Balances), ValidatorRegistryLimit, false},
		{"randao_mixes", len(s.RandaoMixes), EpochsPerHistoricalVector, true},
		{"slashings", len(s.Slashings), EpochsPerSlashingsVector, true},
		{"previous_epoch_attestations", len(s.PreviousEpochAttestations), PendingAttestationsLimit, false},
		{"current_epoch_attestations", len(s.CurrentEpochAttestations), PendingAttestationsLimit, false},
	}
	for _, c := range checks {
		if c.exact && uint64(c.n) != c.want {
			return fmt.Errorf("%w: %s has %d elements, want %d", ErrInvalidLength, c.name, c.n, c.want)
		}
		if !c.exact && uint64(c.n) > c.want {
			return fmt.Errorf("%w: %s has %d elements, limit %d", ErrInvalidLength, c.name, c.n, c.want)
		}
	}
	if s.JustificationBits[0]>>JustificationBitsLength != 0 {
		return fmt.Errorf("%w: justification_bits %#x", ErrInvalidLength, s.JustificationBits[0])
	}
	return nil
}

// HashTreeRoot returns the state root. It fails when the state does not
// satisfy Validate or holds a malformed bitlist.
func (s *BeaconState) HashTreeRoot() ([32]byte, error) {
	if err := s.Validate(); err != nil {
		return [32]byte{}, err
	}
	prev, err := attestationsRoot(s.PreviousEpochAttestations)
	if err != nil {
		return [32]byte{}, fmt.Errorf("beacon: previous_epoch_attestations: %w", err)
	}
	cur, err := attestationsRoot(s.CurrentEpochAttestations)
	if err != nil {
		return [32]byte{}, fmt.Errorf("beacon: current_epoch_attestations: %w", err)
	}

	votes := make([][32]byte, len(s.Eth1DataVotes))
	for i := range s.Eth1DataVotes {
		votes[i] = s.Eth1DataVotes[i].HashTreeRoot()
	}
	validators := make([][32]byte, len(s.Validators))
	for i := range s.Validators {
		validators[i] = s.Validators[i].HashTreeRoot()
	}
	var bits [32]byte
	bits[0] = s.JustificationBits[0]

	return ssz.HashTreeRootContainer(
		ssz.HashTreeRootUint64(s.GenesisTime),
		s.GenesisValidatorsRoot,
		ssz.HashTreeRootUint64(uint64(s.Slot)),
		s.Fork.HashTreeRoot(),
		s.LatestBlockHeader.HashTreeRoot(),
		ssz.HashTreeRootVector(roots(s.BlockRoots)),
		ssz.HashTreeRootVector(roots(s.StateRoots)),
		ssz.HashTreeRootList(roots(s.HistoricalRoots), HistoricalRootsLimit),
		s.Eth1Data.HashTreeRoot(),
		ssz.HashTreeRootList(votes, Eth1DataVotesLimit),
		ssz.HashTreeRootUint64(s.Eth1DepositIndex),
		ssz.HashTreeRootList(validators, ValidatorRegistryLimit),
		ssz.HashTreeRootUint64List(gweis(s.Balances), ValidatorRegistryLimit),
		ssz.HashTreeRootVector(roots(s.RandaoMixes)),
		ssz.HashTreeRootUint64Vector(gweis(s.Slashings)),
		prev,
		cur,
		bits,
		s.PreviousJustifiedCheckpoint.HashTreeRoot(),
		s.CurrentJustifiedCheckpoint.HashTreeRoot(),
		s.FinalizedCheckpoint.HashTreeRoot(),
	), nil
}

func attestationsRoot(atts []PendingAttestation) ([32]byte, error) {
	rs := make([][32]byte, len(atts))
	for i := range atts {
		r, err := atts[i].HashTreeRoot()
		if err != nil {
			return [32]byte{}, fmt.Errorf("%d: %w", i, err)
		}
		rs[i] = r
	}
	return ssz.HashTreeRootList(rs, PendingAttestationsLimit), nil
}

func roots(rs []Root) [][32]byte {
	out := make([][32]byte, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

func gweis(gs []Gwei) []uint64 {
	out := make([]uint64, len(gs))
	for i, g := range gs {
		out[i] = uint64(g)
	}
	return out
}
