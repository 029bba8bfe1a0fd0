// Package ssz implements the Merkleization half of Simple Serialize (SSZ),
// the commitment scheme used by the Ethereum consensus layer. Containers
// are reduced to a single 32-byte hash tree root from the roots of their
// fields.
//
// See https://github.com/ethereum/consensus-specs/blob/dev/ssz/simple-serialize.md
package ssz

// BytesPerChunk is the number of bytes in each leaf chunk for Merkleization.
const BytesPerChunk = 32
