package oracle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2030/cloracle/crypto"
	"github.com/eth2030/cloracle/manifest"
	"github.com/eth2030/cloracle/preimage"
	"github.com/eth2030/cloracle/trust"
)

func TestInputRoundTrip(t *testing.T) {
	in := &Input{BlockRoot: [32]byte{1, 2, 3}, ManifestHash: [32]byte{31: 9}}
	data, err := in.Encode()
	require.NoError(t, err)
	require.Len(t, data, InputLength)
	require.Equal(t, in.BlockRoot[:], data[:32])
	require.Equal(t, in.ManifestHash[:], data[32:])

	got, err := DecodeInput(data)
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestDecodeInputRejectsLength(t *testing.T) {
	for _, n := range []int{0, 32, 63, 65, 96} {
		_, err := DecodeInput(make([]byte, n))
		require.ErrorIs(t, err, ErrMalformedInput, "length %d", n)
	}
}

func TestClassify(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("outer: %w", err) }
	cases := map[error]string{
		nil:                                        OutcomeOK,
		wrap(ErrMalformedInput):                    OutcomeDecode,
		wrap(manifest.ErrMalformed):                OutcomeDecode,
		wrap(trust.ErrHeaderDecode):                OutcomeDecode,
		wrap(trust.ErrBodyDecode):                  OutcomeDecode,
		wrap(preimage.ErrOracleMiss):               OutcomeOracleMiss,
		wrap(preimage.ErrOracleUnavailable):        OutcomeOracleUnavailable,
		&trust.RootMismatchError{Object: "header"}: OutcomeRootMismatch,
		&trust.RootMismatchError{Object: "state"}:  OutcomeRootMismatch,
		wrap(trust.ErrProposerSignature):           OutcomeSignature,
		crypto.ErrBLSUnavailable:                   OutcomeSignature,
		wrap(context.Canceled):                     OutcomeCanceled,
		errors.New("something else"):               OutcomeOther,
	}
	for err, want := range cases {
		require.Equal(t, want, Classify(err), "%v", err)
	}
}
