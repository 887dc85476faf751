package world

import "sort"

// Generator fills a freshly created chunk with initial terrain.
// A nil generator leaves new chunks all air.
type Generator interface {
	Generate(key ChunkKey, blocks []uint16)
}

// ChunkStore owns every chunk of the world. Chunks are created lazily on
// first mutation and live for the whole session; reads of absent chunks
// return air without creating anything.
//
// Accessed only from the simulation goroutine.
type ChunkStore struct {
	gen    Generator
	chunks map[ChunkKey]*Chunk
}

func NewChunkStore(gen Generator) *ChunkStore {
	return &ChunkStore{
		gen:    gen,
		chunks: map[ChunkKey]*Chunk{},
	}
}

// Split converts a world coordinate into the owning chunk key and the
// chunk-local coordinate.
func Split(pos Vec3i) (ChunkKey, int, int, int) {
	k := ChunkKey{
		CX: floorDiv(pos.X, ChunkSize),
		CY: floorDiv(pos.Y, ChunkSize),
		CZ: floorDiv(pos.Z, ChunkSize),
	}
	return k, mod(pos.X, ChunkSize), mod(pos.Y, ChunkSize), mod(pos.Z, ChunkSize)
}

// GetBlock returns the block at a world coordinate, or air (0) if the
// owning chunk does not exist. It never creates a chunk.
func (s *ChunkStore) GetBlock(pos Vec3i) uint16 {
	k, lx, ly, lz := Split(pos)
	ch, ok := s.chunks[k]
	if !ok {
		return 0
	}
	return ch.Get(lx, ly, lz)
}

// GetBlockNumber is the pick-block query: same contract as GetBlock,
// kept distinct because callers use it to copy a block id out of the
// world rather than to test occupancy.
func (s *ChunkStore) GetBlockNumber(pos Vec3i) uint16 {
	return s.GetBlock(pos)
}

// SetBlock writes a block at a world coordinate, creating (and
// generating) the owning chunk if absent. The owning chunk is marked
// dirty; if the local coordinate lies on a chunk boundary, each loaded
// neighbor across that face is marked dirty too, since its face-culling
// decision depends on the new value.
func (s *ChunkStore) SetBlock(pos Vec3i, b uint16) {
	k, lx, ly, lz := Split(pos)
	ch := s.getOrGenChunk(k)
	if ch.Get(lx, ly, lz) == b {
		return
	}
	ch.Set(lx, ly, lz, b)
	s.markBoundaryNeighbors(k, lx, ly, lz)
}

func (s *ChunkStore) markBoundaryNeighbors(k ChunkKey, lx, ly, lz int) {
	mark := func(nk ChunkKey) {
		if n, ok := s.chunks[nk]; ok {
			n.MarkDirty()
		}
	}
	switch lx {
	case 0:
		mark(ChunkKey{CX: k.CX - 1, CY: k.CY, CZ: k.CZ})
	case ChunkSize - 1:
		mark(ChunkKey{CX: k.CX + 1, CY: k.CY, CZ: k.CZ})
	}
	switch ly {
	case 0:
		mark(ChunkKey{CX: k.CX, CY: k.CY - 1, CZ: k.CZ})
	case ChunkSize - 1:
		mark(ChunkKey{CX: k.CX, CY: k.CY + 1, CZ: k.CZ})
	}
	switch lz {
	case 0:
		mark(ChunkKey{CX: k.CX, CY: k.CY, CZ: k.CZ - 1})
	case ChunkSize - 1:
		mark(ChunkKey{CX: k.CX, CY: k.CY, CZ: k.CZ + 1})
	}
}

// Chunk returns the chunk at a key, or nil if not loaded.
func (s *ChunkStore) Chunk(k ChunkKey) *Chunk {
	return s.chunks[k]
}

func (s *ChunkStore) LoadedCount() int { return len(s.chunks) }

// LoadedChunkKeys returns every loaded chunk key in deterministic order.
func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// DirtyChunkKeys returns the keys of every chunk whose cached mesh is
// stale, in deterministic order. Flags are not cleared here; the mesh
// pass clears them after each successful rebuild.
func (s *ChunkStore) DirtyChunkKeys() []ChunkKey {
	var keys []ChunkKey
	for k, ch := range s.chunks {
		if ch.Dirty() {
			keys = append(keys, k)
		}
	}
	sortKeys(keys)
	return keys
}

func (s *ChunkStore) getOrGenChunk(k ChunkKey) *Chunk {
	if ch, ok := s.chunks[k]; ok {
		return ch
	}
	ch := NewChunk(k)
	if s.gen != nil {
		s.gen.Generate(k, ch.Blocks)
	}
	ch.MarkDirty()
	_ = ch.Digest() // initialize digest
	s.chunks[k] = ch

	// Loaded neighbors drew conservative faces against this chunk while
	// it did not exist; re-evaluate them now that it does.
	for _, nk := range [6]ChunkKey{
		{CX: k.CX + 1, CY: k.CY, CZ: k.CZ},
		{CX: k.CX - 1, CY: k.CY, CZ: k.CZ},
		{CX: k.CX, CY: k.CY + 1, CZ: k.CZ},
		{CX: k.CX, CY: k.CY - 1, CZ: k.CZ},
		{CX: k.CX, CY: k.CY, CZ: k.CZ + 1},
		{CX: k.CX, CY: k.CY, CZ: k.CZ - 1},
	} {
		if n, ok := s.chunks[nk]; ok {
			n.MarkDirty()
		}
	}
	return ch
}

func sortKeys(keys []ChunkKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		return keys[i].CZ < keys[j].CZ
	})
}

func floorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
