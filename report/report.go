// Package report derives the staking report from a verified beacon state.
package report

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/eth2030/cloracle/beacon"
)

// EncodedLength is the size of an ABI encoded Report.
const EncodedLength = 4 * 32

// ErrMalformed is returned by DecodeReport.
var ErrMalformed = errors.New("report: malformed")

var reportArgs abi.Arguments

func init() {
	u256, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	reportArgs = abi.Arguments{
		{Name: "clBalanceGwei", Type: u256},
		{Name: "withdrawalVaultBalanceWei", Type: u256},
		{Name: "totalDepositedValidators", Type: u256},
		{Name: "totalExitedValidators", Type: u256},
	}
}

// Report is the oracle output for one snapshot.
type Report struct {
	CLBalanceGwei             uint256.Int
	WithdrawalVaultBalanceWei uint256.Int
	TotalDepositedValidators  uint256.Int
	TotalExitedValidators     uint256.Int
}

// Encode returns the ABI encoding of the tuple
// (uint256,uint256,uint256,uint256).
func (r *Report) Encode() ([]byte, error) {
	return reportArgs.Pack(
		r.CLBalanceGwei.ToBig(),
		r.WithdrawalVaultBalanceWei.ToBig(),
		r.TotalDepositedValidators.ToBig(),
		r.TotalExitedValidators.ToBig(),
	)
}

// DecodeReport parses an ABI encoded report.
func DecodeReport(data []byte) (*Report, error) {
	if len(data) != EncodedLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformed, len(data))
	}
	vals, err := reportArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var r Report
	for i, dst := range []*uint256.Int{
		&r.CLBalanceGwei, &r.WithdrawalVaultBalanceWei, &r.TotalDepositedValidators, &r.TotalExitedValidators,
	} {
		b, ok := vals[i].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("%w: field %d", ErrMalformed, i)
		}
		dst.SetFromBig(b)
	}
	return &r, nil
}

func (r *Report) String() string {
	return fmt.Sprintf("Report{clBalanceGwei: %s, withdrawalVaultBalanceWei: %s, totalDeposited: %s, totalExited: %s}",
		r.CLBalanceGwei.Dec(), r.WithdrawalVaultBalanceWei.Dec(),
		r.TotalDepositedValidators.Dec(), r.TotalExitedValidators.Dec())
}

// MainnetWithdrawalCredentials is the 0x01 credential of the mainnet
// withdrawal vault.
var MainnetWithdrawalCredentials = credentials("0xb9d7934878b5fb9610b3fe8a5e441e8fad7e293f")

// HoleskyWithdrawalCredentials is the 0x01 credential of the Holesky
// withdrawal vault.
var HoleskyWithdrawalCredentials = credentials("0xF0179dEC45a37423EAD4FaD5fCb136197872EAd9")

// credentials builds an execution-address withdrawal credential.
func credentials(addr string) [32]byte {
	var c [32]byte
	c[0] = 0x01
	copy(c[12:], common.HexToAddress(addr).Bytes())
	return c
}

// Deriver selects validators by withdrawal credentials and aggregates
// their balances. It is a pure function of the state.
type Deriver struct {
	WithdrawalCredentials [32]byte
	SlotsPerEpoch         uint64
}

// NewDeriver returns a Deriver with the mainnet epoch length.
func NewDeriver(creds [32]byte) Deriver {
	return Deriver{WithdrawalCredentials: creds, SlotsPerEpoch: beacon.SlotsPerEpoch}
}

// Derive computes the report. Validators and balances are paired by
// index; entries beyond the shorter of the two are ignored. A validator
// counts as exited once its exit epoch is at or before the state epoch.
// The vault balance needs execution-layer data and is always zero.
func (d Deriver) Derive(s *beacon.BeaconState) *Report {
	spe := d.SlotsPerEpoch
	if spe == 0 {
		spe = beacon.SlotsPerEpoch
	}
	epoch := beacon.Epoch(uint64(s.Slot) / spe)
	n := min(len(s.Validators), len(s.Balances))

	var balance, deposited, exited uint64
	for i := 0; i < n; i++ {
		v := &s.Validators[i]
		if [32]byte(v.WithdrawalCredentials) != d.WithdrawalCredentials {
			continue
		}
		balance += uint64(s.Balances[i])
		deposited++
		if v.ExitEpoch <= epoch {
			exited++
		}
	}

	r := &Report{}
	r.CLBalanceGwei.SetUint64(balance)
	r.TotalDepositedValidators.SetUint64(deposited)
	r.TotalExitedValidators.SetUint64(exited)
	return r
}
