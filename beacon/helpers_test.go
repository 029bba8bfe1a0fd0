package beacon

// lidoCredentials is the 0x01 credential of a sample withdrawal vault.
var lidoCredentials = Root{
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xb9, 0xd7, 0x93, 0x48,
	0x78, 0xb5, 0xfb, 0x96, 0x10, 0xb3, 0xfe, 0x8a, 0x5e, 0x44, 0x1e, 0x8f, 0xad, 0x7e, 0x29, 0x3f,
}

func testValidator(i byte, creds Root) Validator {
	return Validator{
		Pubkey:                     BLSPubkey{0xa0, i},
		WithdrawalCredentials:      creds,
		EffectiveBalance:           32_000_000_000,
		ActivationEligibilityEpoch: 0,
		ActivationEpoch:            0,
		ExitEpoch:                  FarFutureEpoch,
		WithdrawableEpoch:          FarFutureEpoch,
	}
}

func testState() *BeaconState {
	s := NewBeaconState(6400)
	s.GenesisTime = 1606824023
	s.GenesisValidatorsRoot = Root{0x4b, 0x36}
	s.Fork = Fork{PreviousVersion: Version{0, 0, 0, 0}, CurrentVersion: Version{0, 0, 0, 1}, Epoch: 100}
	s.LatestBlockHeader = BeaconBlockHeader{Slot: 6400, ProposerIndex: 1, ParentRoot: Root{1}, BodyRoot: Root{2}}
	s.BlockRoots[5] = Root{5}
	s.RandaoMixes[7] = Root{7}
	s.Slashings[3] = 1_000_000_000
	s.HistoricalRoots = append(s.HistoricalRoots, Root{9})
	s.Eth1Data = Eth1Data{DepositRoot: Root{3}, DepositCount: 2, BlockHash: Root{4}}
	s.Eth1DataVotes = append(s.Eth1DataVotes, s.Eth1Data)
	s.Eth1DepositIndex = 2
	s.AddValidator(testValidator(1, lidoCredentials), 32_000_000_000)
	s.AddValidator(testValidator(2, Root{0x00, 0x11}), 31_000_000_000)
	s.PreviousEpochAttestations = append(s.PreviousEpochAttestations, PendingAttestation{
		AggregationBits: Bitlist{0x0b},
		Data: AttestationData{
			Slot:            6399,
			BeaconBlockRoot: Root{6},
			Source:          Checkpoint{Epoch: 198, Root: Root{8}},
			Target:          Checkpoint{Epoch: 199, Root: Root{9}},
		},
		InclusionDelay: 1,
		ProposerIndex:  0,
	})
	s.JustificationBits = Bitvector4{0x07}
	s.FinalizedCheckpoint = Checkpoint{Epoch: 198, Root: Root{8}}
	return s
}

func testSignedHeader(stateRoot Root) *SignedBeaconBlockHeader {
	return &SignedBeaconBlockHeader{
		Message: BeaconBlockHeader{
			Slot:          6400,
			ProposerIndex: 1,
			ParentRoot:    Root{0xaa},
			StateRoot:     stateRoot,
			BodyRoot:      Root{0xbb},
		},
		Signature: BLSSignature{0xc0},
	}
}
