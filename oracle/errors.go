package oracle

import (
	"context"
	"errors"

	"github.com/eth2030/cloracle/crypto"
	"github.com/eth2030/cloracle/manifest"
	"github.com/eth2030/cloracle/preimage"
	"github.com/eth2030/cloracle/trust"
)

// Failure kinds reported by Classify.
const (
	OutcomeOK                = "ok"
	OutcomeDecode            = "decode"
	OutcomeOracleMiss        = "oracle_miss"
	OutcomeOracleUnavailable = "oracle_unavailable"
	OutcomeRootMismatch      = "root_mismatch"
	OutcomeSignature         = "signature"
	OutcomeCanceled          = "canceled"
	OutcomeOther             = "other"
)

// Classify maps a Run error to a short failure kind for logs and metrics.
func Classify(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, ErrMalformedInput),
		errors.Is(err, manifest.ErrMalformed),
		errors.Is(err, trust.ErrHeaderDecode),
		errors.Is(err, trust.ErrBodyDecode):
		return OutcomeDecode
	case errors.Is(err, preimage.ErrOracleMiss):
		return OutcomeOracleMiss
	case errors.Is(err, preimage.ErrOracleUnavailable):
		return OutcomeOracleUnavailable
	case errors.Is(err, trust.ErrHeaderRootMismatch), errors.Is(err, trust.ErrBodyRootMismatch):
		return OutcomeRootMismatch
	case errors.Is(err, trust.ErrProposerSignature), errors.Is(err, crypto.ErrBLSUnavailable):
		return OutcomeSignature
	default:
		return OutcomeOther
	}
}
