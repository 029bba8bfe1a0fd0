//go:build !blst

package trust

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2030/cloracle/crypto"
)

func TestProposerCheckNeedsBLS(t *testing.T) {
	_, state, h := encodedPair(t)
	h.Message.ProposerIndex = 0
	_, err := New(nil, WithProposerSignatureCheck()).VerifyBody(state, h)
	require.ErrorIs(t, err, crypto.ErrBLSUnavailable)
}
