package crypto

import "errors"

// Key and signature sizes for the MinPk scheme used by Ethereum.
const (
	BLSPubkeySize    = 48 // compressed G1
	BLSSignatureSize = 96 // compressed G2
)

// BLS errors.
var (
	ErrBLSUnavailable      = errors.New("bls: binary built without blst support")
	ErrBLSInvalidPubkey    = errors.New("bls: invalid public key")
	ErrBLSInvalidSignature = errors.New("bls: invalid signature")
	ErrBLSVerifyFailed     = errors.New("bls: signature verification failed")
)

// blsDST is the domain separation tag for Ethereum BLS signatures.
var blsDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")
