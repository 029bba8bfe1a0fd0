package rollup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2030/cloracle/report"
)

type fakeRunner struct {
	calls int
	fail  bool
}

func (f *fakeRunner) Run(_ context.Context, payload []byte) (*report.Report, error) {
	f.calls++
	if f.fail || string(payload) == "bad" {
		return nil, errors.New("pipeline failed")
	}
	r := &report.Report{}
	r.CLBalanceGwei.SetUint64(63_000_000_000)
	r.TotalDepositedValidators.SetUint64(2)
	return r, nil
}

func TestAppAcceptsWithOneNotice(t *testing.T) {
	runner := &fakeRunner{}
	resp := NewApp(runner, nil, nil).Handle(context.Background(), AdvanceState{Payload: []byte("good")})
	require.Equal(t, StatusAccept, resp.Status)
	require.Len(t, resp.Notices, 1)

	r, err := report.DecodeReport(resp.Notices[0])
	require.NoError(t, err)
	require.Equal(t, uint64(63_000_000_000), r.CLBalanceGwei.Uint64())
	require.Equal(t, uint64(2), r.TotalDepositedValidators.Uint64())
}

func TestAppRejectsFailures(t *testing.T) {
	runner := &fakeRunner{fail: true}
	resp := NewApp(runner, nil, nil).Handle(context.Background(), AdvanceState{Payload: []byte("x")})
	require.Equal(t, Reject(), resp)
	require.Empty(t, resp.Notices)
	require.Equal(t, 1, runner.calls)
}

func TestAppRejectsInspect(t *testing.T) {
	runner := &fakeRunner{}
	resp := NewApp(runner, nil, nil).Handle(context.Background(), InspectState{Payload: []byte("q")})
	require.Equal(t, StatusReject, resp.Status)
	require.Empty(t, resp.Notices)
	require.Zero(t, runner.calls)
}

func TestAcceptReject(t *testing.T) {
	require.Equal(t, Response{Status: StatusAccept}, Accept())
	require.Equal(t, [][]byte{{1}, {2}}, Accept([]byte{1}, []byte{2}).Notices)
	require.Equal(t, StatusReject, Reject().Status)
}
