// Package mesh turns a chunk's block array into renderable geometry.
// Build is a pure function of the chunk and its six axis-aligned
// neighbors; it holds no state and touches no graphics API.
package mesh

import (
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/catalogs"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/world"
)

// Data is the renderable geometry of one chunk: parallel per-vertex
// arrays plus an index list, ready for upload by the rendering
// collaborator.
type Data struct {
	Positions []float32 // 3 per vertex, world space
	TexCoords []float32 // 3 per vertex: u, v, texture-array layer
	Shading   []float32 // 1 per vertex, constant per face
	Indices   []uint32
}

func (d *Data) VertexCount() int { return len(d.Positions) / 3 }
func (d *Data) FaceCount() int   { return len(d.Indices) / 6 }

// BlockFunc answers a block id at a world coordinate. Lookups outside
// the chunk being meshed go through it; returning 0 (air) for unloaded
// chunks keeps the culling conservative — the face is drawn rather than
// leaving a hole, and re-evaluates when the neighbor loads.
type BlockFunc func(pos world.Vec3i) uint16

// Build emits one quad for every voxel face not occluded by a solid
// neighbor. Voxels are visited in flat-index order and faces in face-id
// order, so identical inputs always yield identical buffers.
func Build(ch *world.Chunk, neighbor BlockFunc, cat *catalogs.BlockCatalog) *Data {
	d := &Data{}
	base := world.Vec3i{
		X: ch.Key.CX * world.ChunkSize,
		Y: ch.Key.CY * world.ChunkSize,
		Z: ch.Key.CZ * world.ChunkSize,
	}

	for x := 0; x < world.ChunkSize; x++ {
		for y := 0; y < world.ChunkSize; y++ {
			for z := 0; z < world.ChunkSize; z++ {
				b := ch.Get(x, y, z)
				if b == 0 {
					continue
				}
				for face := 0; face < catalogs.FaceCount; face++ {
					nx := x + faceDirs[face][0]
					ny := y + faceDirs[face][1]
					nz := z + faceDirs[face][2]

					var adj uint16
					if nx >= 0 && nx < world.ChunkSize &&
						ny >= 0 && ny < world.ChunkSize &&
						nz >= 0 && nz < world.ChunkSize {
						adj = ch.Get(nx, ny, nz)
					} else if neighbor != nil {
						adj = neighbor(base.Offset(nx, ny, nz))
					}
					if cat.Solid(adj) {
						continue
					}
					d.appendFace(b, face, base.X+x, base.Y+y, base.Z+z, cat)
				}
			}
		}
	}
	return d
}

func (d *Data) appendFace(b uint16, face, wx, wy, wz int, cat *catalogs.BlockCatalog) {
	start := uint32(d.VertexCount())
	layer := float32(cat.FaceLayer(b, face))
	shade := faceShade[face]

	for i := 0; i < 4; i++ {
		v := faceVerts[face][i]
		d.Positions = append(d.Positions,
			float32(wx)+v[0], float32(wy)+v[1], float32(wz)+v[2])
		d.TexCoords = append(d.TexCoords, faceUVs[i][0], faceUVs[i][1], layer)
		d.Shading = append(d.Shading, shade)
	}
	for _, i := range faceIndices {
		d.Indices = append(d.Indices, start+i)
	}
}
