package ssz

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func sha256Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// naiveMerkleize builds the full padded tree; used to cross-check the
// sparse implementation for small limits.
func naiveMerkleize(chunks [][32]byte, limit int) [32]byte {
	size := 1
	for size < limit || size < len(chunks) {
		size <<= 1
	}
	layer := make([][32]byte, size)
	copy(layer, chunks)
	for len(layer) > 1 {
		next := make([][32]byte, len(layer)/2)
		for i := range next {
			next[i] = sha256Hash(append(layer[2*i][:], layer[2*i+1][:]...))
		}
		layer = next
	}
	return layer[0]
}

// --- Pack tests ---

func TestPackNilReturnsZeroChunk(t *testing.T) {
	chunks := Pack(nil)
	if len(chunks) != 1 {
		t.Fatalf("Pack(nil) should return 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != [32]byte{} {
		t.Error("Pack(nil) chunk should be zero")
	}
}

func TestPackMultipleChunks(t *testing.T) {
	data := make([]byte, 64)
	data[0] = 1
	data[32] = 2
	chunks := Pack(data)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0][0] != 1 || chunks[1][0] != 2 {
		t.Error("chunk contents mismatch")
	}
}

func TestPackPartialChunk(t *testing.T) {
	chunks := Pack([]byte{0xab, 0xcd})
	if len(chunks) != 1 {
		t.Fatalf("Pack(2 bytes) should return 1 chunk, got %d", len(chunks))
	}
	if chunks[0][0] != 0xab || chunks[0][1] != 0xcd {
		t.Error("data mismatch in partial chunk")
	}
	for i := 2; i < 32; i++ {
		if chunks[0][i] != 0 {
			t.Errorf("byte %d should be zero, got %d", i, chunks[0][i])
		}
	}
}

// --- Merkleize tests ---

func TestMerkleizeSingleChunk(t *testing.T) {
	var chunk [32]byte
	chunk[0] = 0xab
	if root := Merkleize([][32]byte{chunk}, 0); root != chunk {
		t.Error("Merkleize of single chunk should return the chunk itself")
	}
}

func TestMerkleizeTwoChunks(t *testing.T) {
	var a, b [32]byte
	a[0] = 1
	b[0] = 2
	root := Merkleize([][32]byte{a, b}, 0)
	expected := sha256Hash(append(a[:], b[:]...))
	if root != expected {
		t.Fatalf("Merkleize(2 chunks) = %x, want %x", root, expected)
	}
}

func TestMerkleizeWithLimit(t *testing.T) {
	var chunk [32]byte
	chunk[0] = 0xff
	root := Merkleize([][32]byte{chunk}, 4)

	z := [32]byte{}
	left := sha256Hash(append(chunk[:], z[:]...))
	right := sha256Hash(append(z[:], z[:]...))
	expected := sha256Hash(append(left[:], right[:]...))
	if root != expected {
		t.Fatalf("Merkleize with limit=4 mismatch")
	}
}

func TestMerkleizeMatchesFullTree(t *testing.T) {
	for count := 0; count <= 9; count++ {
		for _, limit := range []int{0, 1, 3, 8, 16, 32} {
			chunks := make([][32]byte, count)
			for i := range chunks {
				chunks[i][0] = byte(i + 1)
				chunks[i][31] = byte(limit)
			}
			got := Merkleize(chunks, uint64(limit))
			want := naiveMerkleize(chunks, limit)
			if got != want {
				t.Errorf("Merkleize(count=%d, limit=%d) = %x, want %x", count, limit, got, want)
			}
		}
	}
}

func TestMerkleizeEmptyIsZeroHash(t *testing.T) {
	if got := Merkleize(nil, 1<<40); got != ZeroHash(40) {
		t.Fatalf("Merkleize(nil, 2^40) = %x, want ZeroHash(40)", got)
	}
}

func TestZeroHashChain(t *testing.T) {
	for d := 1; d <= 10; d++ {
		prev := ZeroHash(d - 1)
		if ZeroHash(d) != sha256Hash(append(prev[:], prev[:]...)) {
			t.Fatalf("ZeroHash(%d) is not hash of two ZeroHash(%d)", d, d-1)
		}
	}
	if ZeroHash(0) != [32]byte{} {
		t.Fatal("ZeroHash(0) must be the zero chunk")
	}
}

func TestTreeDepth(t *testing.T) {
	tests := []struct {
		limit uint64
		want  int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {1 << 40, 40},
	}
	for _, tt := range tests {
		if got := treeDepth(tt.limit); got != tt.want {
			t.Errorf("treeDepth(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

// --- MixInLength tests ---

func TestMixInLengthValue(t *testing.T) {
	var root [32]byte
	root[0] = 0xaa
	result := MixInLength(root, 42)

	var lenChunk [32]byte
	binary.LittleEndian.PutUint64(lenChunk[:8], 42)
	expected := sha256Hash(append(root[:], lenChunk[:]...))
	if result != expected {
		t.Fatalf("MixInLength mismatch")
	}
}

// --- Basic and composite types ---

func TestHashTreeRootUint64(t *testing.T) {
	root := HashTreeRootUint64(0x0102030405060708)
	if root[0] != 0x08 || root[7] != 0x01 {
		t.Fatalf("uint64 root not little-endian: %x", root)
	}
	for i := 8; i < 32; i++ {
		if root[i] != 0 {
			t.Fatalf("byte %d should be zero", i)
		}
	}
}

func TestHashTreeRootBool(t *testing.T) {
	if HashTreeRootBool(false) != [32]byte{} {
		t.Error("hash_tree_root(false) should be zero chunk")
	}
	if r := HashTreeRootBool(true); r[0] != 1 {
		t.Error("hash_tree_root(true) should start with 1")
	}
}

func TestHashTreeRootBytes48(t *testing.T) {
	var pk [48]byte
	pk[0], pk[47] = 0x11, 0x22
	var c0, c1 [32]byte
	copy(c0[:], pk[:32])
	copy(c1[:16], pk[32:])
	want := sha256Hash(append(c0[:], c1[:]...))
	if got := HashTreeRootBytes48(pk); got != want {
		t.Fatalf("HashTreeRootBytes48 = %x, want %x", got, want)
	}
}

func TestHashTreeRootUint64List(t *testing.T) {
	values := []uint64{1, 2, 3, 4, 5}
	got := HashTreeRootUint64List(values, 16)

	packed := Pack(packUint64s(values))
	want := MixInLength(naiveMerkleize(packed, 4), 5)
	if got != want {
		t.Fatalf("HashTreeRootUint64List = %x, want %x", got, want)
	}
}

func TestHashTreeRootUint64ListEmpty(t *testing.T) {
	got := HashTreeRootUint64List(nil, 1<<40)
	want := MixInLength(ZeroHash(treeDepth(ChunkCountBasic(1<<40, 8))), 0)
	if got != want {
		t.Fatalf("empty list root = %x, want %x", got, want)
	}
}

func TestHashTreeRootListCountsElements(t *testing.T) {
	roots := [][32]byte{{1}, {2}}
	a := HashTreeRootList(roots, 4)
	b := HashTreeRootList(roots[:1], 4)
	if a == b {
		t.Fatal("lists of different length must have different roots")
	}
}

func TestHashTreeRootBitlist(t *testing.T) {
	// Five set bits followed by the sentinel at bit 5: 0b0011_1111.
	got, err := HashTreeRootBitlist([]byte{0x3f}, 2048)
	if err != nil {
		t.Fatalf("HashTreeRootBitlist: %v", err)
	}
	var chunk [32]byte
	chunk[0] = 0x1f
	want := MixInLength(Merkleize([][32]byte{chunk}, ChunkCountBitlist(2048)), 5)
	if got != want {
		t.Fatalf("HashTreeRootBitlist = %x, want %x", got, want)
	}
}

func TestHashTreeRootBitlistSentinelOnly(t *testing.T) {
	got, err := HashTreeRootBitlist([]byte{0x01}, 2048)
	if err != nil {
		t.Fatalf("HashTreeRootBitlist: %v", err)
	}
	want := MixInLength(ZeroHash(treeDepth(ChunkCountBitlist(2048))), 0)
	if got != want {
		t.Fatalf("empty bitlist root = %x, want %x", got, want)
	}
}

func TestHashTreeRootBitlistInvalid(t *testing.T) {
	if _, err := HashTreeRootBitlist(nil, 8); err != ErrInvalidBitlist {
		t.Errorf("nil bitlist error = %v, want ErrInvalidBitlist", err)
	}
	if _, err := HashTreeRootBitlist([]byte{0xff, 0x00}, 64); err != ErrInvalidBitlist {
		t.Errorf("missing sentinel error = %v, want ErrInvalidBitlist", err)
	}
	if _, err := HashTreeRootBitlist([]byte{0xff, 0x01}, 4); err != ErrInvalidBitlist {
		t.Errorf("over-limit error = %v, want ErrInvalidBitlist", err)
	}
}
