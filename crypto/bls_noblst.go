//go:build !blst

package crypto

// BLSAvailable reports whether the binary was built with a BLS backend.
const BLSAvailable = false

// VerifyBLS always fails with ErrBLSUnavailable. Build with -tags blst to
// enable real verification.
func VerifyBLS(pubkey, msg, sig []byte) error {
	return ErrBLSUnavailable
}
