package world

import (
	"crypto/sha256"
	"encoding/binary"
)

// ChunkSize is the side length of a cubic chunk, in blocks.
const ChunkSize = 16

// ChunkVolume is the number of blocks held by one chunk.
const ChunkVolume = ChunkSize * ChunkSize * ChunkSize

type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func (v Vec3i) Offset(dx, dy, dz int) Vec3i {
	return Vec3i{X: v.X + dx, Y: v.Y + dy, Z: v.Z + dz}
}

// ChunkKey identifies a chunk by its position in chunk space
// (world coordinate floor-divided by ChunkSize).
type ChunkKey struct {
	CX int
	CY int
	CZ int
}

// BlockIndex maps chunk-local coordinates to the flat block array.
// The order is fixed at (x*S + y)*S + z — x outermost, z fastest —
// and doubles as the serialization order of a chunk record.
func BlockIndex(x, y, z int) int {
	return (x*ChunkSize+y)*ChunkSize + z
}

type Chunk struct {
	Key    ChunkKey
	Blocks []uint16 // len = ChunkVolume, see BlockIndex

	// dirty marks the cached mesh stale: set on any mutation of this
	// chunk or of a neighbor block on a shared face, cleared by the
	// mesh rebuild pass.
	dirty bool

	hash      [32]byte
	hashStale bool
}

func NewChunk(key ChunkKey) *Chunk {
	return &Chunk{
		Key:       key,
		Blocks:    make([]uint16, ChunkVolume),
		hashStale: true,
	}
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[BlockIndex(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	i := BlockIndex(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
	c.hashStale = true
}

func (c *Chunk) Dirty() bool { return c.dirty }

// MarkDirty flags the cached mesh stale without touching block data.
// Used when a neighbor chunk edit invalidates a shared face.
func (c *Chunk) MarkDirty() { c.dirty = true }

// ClearDirty is called by the mesh pass after a successful rebuild.
func (c *Chunk) ClearDirty() { c.dirty = false }

// Digest hashes the raw block array deterministically.
func (c *Chunk) Digest() [32]byte {
	if c.hashStale || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.hashStale = false
	}
	return c.hash
}
