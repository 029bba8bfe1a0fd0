package ssz

import (
	"encoding/binary"
	"errors"
)

// ErrInvalidBitlist is returned for a serialized bitlist without a
// sentinel bit or exceeding its limit.
var ErrInvalidBitlist = errors.New("ssz: invalid bitlist")

// Pack packs a sequence of SSZ serialized values into 32-byte chunks,
// right-padding the last chunk with zeros if needed.
func Pack(serialized []byte) [][32]byte {
	if len(serialized) == 0 {
		return [][32]byte{{}}
	}
	numChunks := (len(serialized) + BytesPerChunk - 1) / BytesPerChunk
	chunks := make([][32]byte, numChunks)
	for i := 0; i < numChunks; i++ {
		start := i * BytesPerChunk
		end := start + BytesPerChunk
		if end > len(serialized) {
			end = len(serialized)
		}
		copy(chunks[i][:], serialized[start:end])
	}
	return chunks
}

// Merkleize computes the Merkle root of chunks virtually padded with zero
// chunks up to limit leaves. A limit smaller than len(chunks) is raised to
// len(chunks). Only the populated part of the tree is materialized, so
// limits such as the 2^40 validator registry cost nothing extra.
func Merkleize(chunks [][32]byte, limit uint64) [32]byte {
	count := uint64(len(chunks))
	if limit < count {
		limit = count
	}
	depth := treeDepth(limit)
	if count == 0 {
		return ZeroHash(depth)
	}

	layer := make([][32]byte, len(chunks))
	copy(layer, chunks)
	for d := 0; d < depth; d++ {
		next := make([][32]byte, (len(layer)+1)/2)
		for i := range next {
			right := ZeroHash(d)
			if 2*i+1 < len(layer) {
				right = layer[2*i+1]
			}
			next[i] = hash(layer[2*i], right)
		}
		layer = next
	}
	return layer[0]
}

// MixInLength mixes a Merkle root with a length value, used for
// variable-size types (lists, bitlists, byte lists).
func MixInLength(root [32]byte, length uint64) [32]byte {
	var lengthChunk [32]byte
	binary.LittleEndian.PutUint64(lengthChunk[:8], length)
	return hash(root, lengthChunk)
}

// --- Hash tree root functions for basic types ---

// HashTreeRootBool computes the hash tree root of a boolean.
func HashTreeRootBool(v bool) [32]byte {
	var chunk [32]byte
	if v {
		chunk[0] = 1
	}
	return chunk
}

// HashTreeRootUint64 computes the hash tree root of a uint64.
func HashTreeRootUint64(v uint64) [32]byte {
	var chunk [32]byte
	binary.LittleEndian.PutUint64(chunk[:8], v)
	return chunk
}

// HashTreeRootBytes4 computes the hash tree root of a 4-byte fixed vector
// (fork versions).
func HashTreeRootBytes4(b [4]byte) [32]byte {
	var chunk [32]byte
	copy(chunk[:4], b[:])
	return chunk
}

// HashTreeRootBytes48 computes the hash tree root of a 48-byte fixed vector
// such as a BLS public key.
func HashTreeRootBytes48(b [48]byte) [32]byte {
	return Merkleize(Pack(b[:]), 0)
}

// HashTreeRootBytes96 computes the hash tree root of a 96-byte fixed vector
// such as a BLS signature.
func HashTreeRootBytes96(b [96]byte) [32]byte {
	return Merkleize(Pack(b[:]), 0)
}

// --- Hash tree root functions for composite types ---

// HashTreeRootContainer computes the hash tree root of a container from
// the roots of its fields, in declaration order.
func HashTreeRootContainer(fieldRoots ...[32]byte) [32]byte {
	return Merkleize(fieldRoots, 0)
}

// HashTreeRootVector computes the hash tree root of a vector of composite
// elements given their roots.
func HashTreeRootVector(elementRoots [][32]byte) [32]byte {
	return Merkleize(elementRoots, 0)
}

// HashTreeRootList computes the hash tree root of a list of composite
// elements given their roots and the list's maximum length.
func HashTreeRootList(elementRoots [][32]byte, maxLen uint64) [32]byte {
	root := Merkleize(elementRoots, maxLen)
	return MixInLength(root, uint64(len(elementRoots)))
}

// HashTreeRootUint64Vector computes the hash tree root of a Vector[uint64, N].
func HashTreeRootUint64Vector(values []uint64) [32]byte {
	return Merkleize(Pack(packUint64s(values)), ChunkCountBasic(uint64(len(values)), 8))
}

// HashTreeRootUint64List computes the hash tree root of a List[uint64, maxLen].
func HashTreeRootUint64List(values []uint64, maxLen uint64) [32]byte {
	var chunks [][32]byte
	if len(values) > 0 {
		chunks = Pack(packUint64s(values))
	}
	root := Merkleize(chunks, ChunkCountBasic(maxLen, 8))
	return MixInLength(root, uint64(len(values)))
}

// HashTreeRootBitlist computes the hash tree root of a serialized
// Bitlist[maxLen], including its trailing sentinel bit.
func HashTreeRootBitlist(serialized []byte, maxLen uint64) ([32]byte, error) {
	bits, n, err := unpackBitlist(serialized)
	if err != nil {
		return [32]byte{}, err
	}
	if n > maxLen {
		return [32]byte{}, ErrInvalidBitlist
	}
	var chunks [][32]byte
	if len(bits) > 0 {
		chunks = Pack(bits)
	}
	root := Merkleize(chunks, ChunkCountBitlist(maxLen))
	return MixInLength(root, n), nil
}

// unpackBitlist strips the sentinel bit from a serialized bitlist and
// returns the packed data bits and their count.
func unpackBitlist(serialized []byte) ([]byte, uint64, error) {
	if len(serialized) == 0 {
		return nil, 0, ErrInvalidBitlist
	}
	last := serialized[len(serialized)-1]
	if last == 0 {
		return nil, 0, ErrInvalidBitlist
	}
	msb := 7
	for last&(1<<uint(msb)) == 0 {
		msb--
	}
	n := uint64(len(serialized)-1)*8 + uint64(msb)

	out := make([]byte, len(serialized))
	copy(out, serialized)
	out[len(out)-1] &^= 1 << uint(msb)
	return out[:(n+7)/8], n, nil
}

func packUint64s(values []uint64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}
