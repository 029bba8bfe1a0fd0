package beacon

import (
	"fmt"

	"github.com/eth2030/cloracle/ssz"
)

// Checkpoint is an epoch boundary block reference.
type Checkpoint struct {
	Epoch Epoch `json:"epoch" cbor:"epoch"`
	Root  Root  `json:"root" cbor:"root"`
}

// HashTreeRoot returns the SSZ root of the checkpoint.
func (c *Checkpoint) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootContainer(ssz.HashTreeRootUint64(uint64(c.Epoch)), c.Root)
}

// Fork records the current and previous fork versions.
type Fork struct {
	PreviousVersion Version `json:"previous_version" cbor:"previous_version"`
	CurrentVersion  Version `json:"current_version" cbor:"current_version"`
	Epoch           Epoch   `json:"epoch" cbor:"epoch"`
}

// HashTreeRoot returns the SSZ root of the fork.
func (f *Fork) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootContainer(
		ssz.HashTreeRootBytes4(f.PreviousVersion),
		ssz.HashTreeRootBytes4(f.CurrentVersion),
		ssz.HashTreeRootUint64(uint64(f.Epoch)),
	)
}

// VersionAt returns the fork version in effect at epoch.
func (f *Fork) VersionAt(epoch Epoch) Version {
	if epoch < f.Epoch {
		return f.PreviousVersion
	}
	return f.CurrentVersion
}

// Eth1Data is a vote on the deposit contract state.
type Eth1Data struct {
	DepositRoot  Root   `json:"deposit_root" cbor:"deposit_root"`
	DepositCount uint64 `json:"deposit_count,string" cbor:"deposit_count"`
	BlockHash    Root   `json:"block_hash" cbor:"block_hash"`
}

// HashTreeRoot returns the SSZ root of the eth1 data.
func (e *Eth1Data) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootContainer(e.DepositRoot, ssz.HashTreeRootUint64(e.DepositCount), e.BlockHash)
}

// BeaconBlockHeader summarises a block by the root of its body.
type BeaconBlockHeader struct {
	Slot          Slot           `json:"slot" cbor:"slot"`
	ProposerIndex ValidatorIndex `json:"proposer_index" cbor:"proposer_index"`
	ParentRoot    Root           `json:"parent_root" cbor:"parent_root"`
	StateRoot     Root           `json:"state_root" cbor:"state_root"`
	BodyRoot      Root           `json:"body_root" cbor:"body_root"`
}

// HashTreeRoot returns the block root.
func (h *BeaconBlockHeader) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootContainer(
		ssz.HashTreeRootUint64(uint64(h.Slot)),
		ssz.HashTreeRootUint64(uint64(h.ProposerIndex)),
		h.ParentRoot,
		h.StateRoot,
		h.BodyRoot,
	)
}

// SignedBeaconBlockHeader is a header with its proposer signature.
type SignedBeaconBlockHeader struct {
	Message   BeaconBlockHeader `json:"message" cbor:"message"`
	Signature BLSSignature      `json:"signature" cbor:"signature"`
}

// HashTreeRoot returns the SSZ root of the signed container. This is not
// the block root; see BlockRoot.
func (s *SignedBeaconBlockHeader) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootContainer(s.Message.HashTreeRoot(), ssz.HashTreeRootBytes96(s.Signature))
}

// BlockRoot returns the root of the header message.
func (s *SignedBeaconBlockHeader) BlockRoot() [32]byte {
	return s.Message.HashTreeRoot()
}

// Validator is one registry entry.
type Validator struct {
	Pubkey                     BLSPubkey `json:"pubkey" cbor:"pubkey"`
	WithdrawalCredentials      Root      `json:"withdrawal_credentials" cbor:"withdrawal_credentials"`
	EffectiveBalance           Gwei      `json:"effective_balance" cbor:"effective_balance"`
	Slashed                    bool      `json:"slashed" cbor:"slashed"`
	ActivationEligibilityEpoch Epoch     `json:"activation_eligibility_epoch" cbor:"activation_eligibility_epoch"`
	ActivationEpoch            Epoch     `json:"activation_epoch" cbor:"activation_epoch"`
	ExitEpoch                  Epoch     `json:"exit_epoch" cbor:"exit_epoch"`
	WithdrawableEpoch          Epoch     `json:"withdrawable_epoch" cbor:"withdrawable_epoch"`
}

// HashTreeRoot returns the SSZ root of the validator.
func (v *Validator) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootContainer(
		ssz.HashTreeRootBytes48(v.Pubkey),
		v.WithdrawalCredentials,
		ssz.HashTreeRootUint64(uint64(v.EffectiveBalance)),
		ssz.HashTreeRootBool(v.Slashed),
		ssz.HashTreeRootUint64(uint64(v.ActivationEligibilityEpoch)),
		ssz.HashTreeRootUint64(uint64(v.ActivationEpoch)),
		ssz.HashTreeRootUint64(uint64(v.ExitEpoch)),
		ssz.HashTreeRootUint64(uint64(v.WithdrawableEpoch)),
	)
}

// AttestationData is the vote carried by an attestation.
type AttestationData struct {
	Slot            Slot       `json:"slot" cbor:"slot"`
	Index           uint64     `json:"index,string" cbor:"index"`
	BeaconBlockRoot Root       `json:"beacon_block_root" cbor:"beacon_block_root"`
	Source          Checkpoint `json:"source" cbor:"source"`
	Target          Checkpoint `json:"target" cbor:"target"`
}

// HashTreeRoot returns the SSZ root of the attestation data.
func (a *AttestationData) HashTreeRoot() [32]byte {
	return ssz.HashTreeRootContainer(
		ssz.HashTreeRootUint64(uint64(a.Slot)),
		ssz.HashTreeRootUint64(a.Index),
		a.BeaconBlockRoot,
		a.Source.HashTreeRoot(),
		a.Target.HashTreeRoot(),
	)
}

// PendingAttestation is an attestation awaiting epoch processing.
type PendingAttestation struct {
	AggregationBits Bitlist         `json:"aggregation_bits" cbor:"aggregation_bits"`
	Data            AttestationData `json:"data" cbor:"data"`
	InclusionDelay  Slot            `json:"inclusion_delay" cbor:"inclusion_delay"`
	ProposerIndex   ValidatorIndex  `json:"proposer_index" cbor:"proposer_index"`
}

// HashTreeRoot returns the SSZ root of the pending attestation. It fails
// when the aggregation bits are not a valid bitlist.
func (p *PendingAttestation) HashTreeRoot() ([32]byte, error) {
	bits, err := ssz.HashTreeRootBitlist(p.AggregationBits, MaxValidatorsPerCommittee)
	if err != nil {
		return [32]byte{}, fmt.Errorf("aggregation_bits: %w", err)
	}
	return ssz.HashTreeRootContainer(
		bits,
		p.Data.HashTreeRoot(),
		ssz.HashTreeRootUint64(uint64(p.InclusionDelay)),
		ssz.HashTreeRootUint64(uint64(p.ProposerIndex)),
	), nil
}
