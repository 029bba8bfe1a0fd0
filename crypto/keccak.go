// Package crypto provides the hash and signature primitives used by the
// oracle: legacy Keccak-256 for content addressing and BLS12-381 signature
// verification for beacon block proposers.
package crypto

import "golang.org/x/crypto/sha3"

// Keccak256 calculates the Keccak-256 hash of the given data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Array calculates Keccak-256 and returns it as a fixed-size array.
func Keccak256Array(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], Keccak256(data...))
	return out
}
