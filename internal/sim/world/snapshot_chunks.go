package world

import (
	"fmt"

	snapv1 "github.com/CrispyFlowe/python-minecraft-clone/internal/persistence/snapshot"
)

// ExportLoadedChunks converts every loaded chunk into snapshot records,
// in deterministic key order.
func (s *ChunkStore) ExportLoadedChunks() []snapv1.ChunkRecord {
	keys := s.LoadedChunkKeys()
	out := make([]snapv1.ChunkRecord, 0, len(keys))
	for _, k := range keys {
		ch := s.chunks[k]
		blocks := make([]uint16, len(ch.Blocks))
		copy(blocks, ch.Blocks)
		out = append(out, snapv1.ChunkRecord{
			CX:     k.CX,
			CY:     k.CY,
			CZ:     k.CZ,
			Blocks: blocks,
		})
	}
	return out
}

// ImportChunks rebuilds a chunk store from snapshot records. Chunks
// absent from the snapshot stay ungenerated and are created lazily on
// first touch, exactly as in a fresh world.
func ImportChunks(gen Generator, chunkSize int, records []snapv1.ChunkRecord) (*ChunkStore, error) {
	if chunkSize != ChunkSize {
		return nil, fmt.Errorf("snapshot chunk size mismatch: got %d, want %d", chunkSize, ChunkSize)
	}
	s := NewChunkStore(gen)
	for _, rec := range records {
		if len(rec.Blocks) != ChunkVolume {
			return nil, fmt.Errorf("snapshot chunk (%d,%d,%d): blocks length mismatch: got %d, want %d",
				rec.CX, rec.CY, rec.CZ, len(rec.Blocks), ChunkVolume)
		}
		ch := NewChunk(ChunkKey{CX: rec.CX, CY: rec.CY, CZ: rec.CZ})
		copy(ch.Blocks, rec.Blocks)
		ch.MarkDirty() // loaded chunks need a first mesh build
		_ = ch.Digest()
		s.chunks[ch.Key] = ch
	}
	return s, nil
}
