package preimage

import "errors"

// Oracle errors. Both are permanent for the current invocation; the core
// never retries.
var (
	// ErrOracleMiss means the host answered but has no preimage for the
	// requested hash.
	ErrOracleMiss = errors.New("preimage: oracle miss")

	// ErrOracleUnavailable means the host could not be reached or its
	// answer could not be decoded.
	ErrOracleUnavailable = errors.New("preimage: oracle unavailable")

	// ErrNotFound is returned by a Store that does not hold a preimage.
	ErrNotFound = errors.New("preimage: not found")

	// ErrDigestMismatch is returned when uploaded data does not hash to the
	// digest it was submitted under.
	ErrDigestMismatch = errors.New("preimage: digest mismatch")

	// ErrUnsupportedHashType is returned for any tag other than Keccak-256.
	ErrUnsupportedHashType = errors.New("preimage: unsupported hash type")
)
