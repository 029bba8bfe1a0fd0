// hash_tree.go holds the precomputed zero hash table and tree depth helpers
// shared by every Merkleization routine in this package.
package ssz

import (
	"crypto/sha256"
	"math/bits"
	"sync"
)

// maxCachedZeroHashDepth is the maximum depth of precomputed zero hashes.
// 64 levels supports trees of up to 2^64 leaves.
const maxCachedZeroHashDepth = 64

// cachedZeroHashTable[0] = Bytes32() (all zeros)
// cachedZeroHashTable[i] = sha256(cachedZeroHashTable[i-1] || cachedZeroHashTable[i-1])
var (
	cachedZeroHashesOnce sync.Once
	cachedZeroHashTable  [maxCachedZeroHashDepth + 1][32]byte
)

func initZeroHashCache() {
	cachedZeroHashesOnce.Do(func() {
		for i := 1; i <= maxCachedZeroHashDepth; i++ {
			cachedZeroHashTable[i] = hash(cachedZeroHashTable[i-1], cachedZeroHashTable[i-1])
		}
	})
}

// ZeroHash returns the root of a tree of the given depth containing only
// zero leaves. Depth 0 is a 32-byte zero chunk.
func ZeroHash(depth int) [32]byte {
	initZeroHashCache()
	if depth < 0 {
		return [32]byte{}
	}
	if depth > maxCachedZeroHashDepth {
		h := cachedZeroHashTable[maxCachedZeroHashDepth]
		for i := maxCachedZeroHashDepth; i < depth; i++ {
			h = hash(h, h)
		}
		return h
	}
	return cachedZeroHashTable[depth]
}

// hash combines two 32-byte inputs using SHA-256.
func hash(a, b [32]byte) [32]byte {
	var combined [64]byte
	copy(combined[:32], a[:])
	copy(combined[32:], b[:])
	return sha256.Sum256(combined[:])
}

// treeDepth returns the number of levels above the leaves for a tree that
// can hold limit leaves: the smallest d with 2^d >= limit.
func treeDepth(limit uint64) int {
	if limit <= 1 {
		return 0
	}
	return bits.Len64(limit - 1)
}

// ChunkCountBasic returns the number of 32-byte chunks needed to pack
// n values of the given element size.
func ChunkCountBasic(n, elemByteSize uint64) uint64 {
	return (n*elemByteSize + BytesPerChunk - 1) / BytesPerChunk
}

// ChunkCountBitlist returns the chunk limit for a Bitlist[N]. Each chunk
// holds 256 bits.
func ChunkCountBitlist(maxLen uint64) uint64 {
	return (maxLen + 255) / 256
}
