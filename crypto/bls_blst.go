//go:build blst

// Real BLS12-381 verification using the supranational/blst library.
//
// Build with: go build -tags blst
// Test with:  go test -tags blst ./crypto/ -run BLS
package crypto

import (
	"errors"

	blst "github.com/supranational/blst/bindings/go"
)

// BLSAvailable reports whether the binary was built with a BLS backend.
const BLSAvailable = true

// ErrBLSKeyGen is returned when key generation fails.
var ErrBLSKeyGen = errors.New("bls: key generation failed")

// VerifyBLS checks a single BLS signature. pubkey must be a 48-byte
// compressed G1 point and sig a 96-byte compressed G2 point.
func VerifyBLS(pubkey, msg, sig []byte) error {
	if len(pubkey) != BLSPubkeySize {
		return ErrBLSInvalidPubkey
	}
	if len(sig) != BLSSignatureSize {
		return ErrBLSInvalidSignature
	}
	pk := new(blst.P1Affine).Uncompress(pubkey)
	if pk == nil {
		return ErrBLSInvalidPubkey
	}
	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return ErrBLSInvalidSignature
	}
	if !s.Verify(true, pk, true, msg, blsDST) {
		return ErrBLSVerifyFailed
	}
	return nil
}

// BLSKeyGen derives a key pair from input key material of at least 32
// bytes. Returns the compressed public key and the serialized secret key.
func BLSKeyGen(ikm []byte) (pubkey, secretKey []byte, err error) {
	if len(ikm) < 32 {
		return nil, nil, ErrBLSKeyGen
	}
	sk := blst.KeyGen(ikm)
	if sk == nil {
		return nil, nil, ErrBLSKeyGen
	}
	return new(blst.P1Affine).From(sk).Compress(), sk.Serialize(), nil
}

// BLSSign signs msg with a serialized secret key and returns the
// compressed signature.
func BLSSign(secretKey, msg []byte) ([]byte, error) {
	sk := new(blst.SecretKey).Deserialize(secretKey)
	if sk == nil {
		return nil, ErrBLSKeyGen
	}
	sig := new(blst.P2Affine).Sign(sk, msg, blsDST)
	if sig == nil {
		return nil, ErrBLSInvalidSignature
	}
	return sig.Compress(), nil
}
