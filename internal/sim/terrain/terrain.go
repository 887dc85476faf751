// Package terrain is the optional worldgen collaborator: it fills
// chunks that have no saved data. The world core works identically with
// a nil generator (all-air chunks).
package terrain

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/tuning"
	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/world"
)

// Block ids the generator emits, matching configs/blocks.json.
type Palette struct {
	Grass uint16
	Dirt  uint16
	Stone uint16
	Sand  uint16
}

type Generator struct {
	seed  int64
	cfg   tuning.Terrain
	pal   Palette
	noise opensimplex.Noise
}

func New(seed int64, cfg tuning.Terrain, pal Palette) *Generator {
	return &Generator{
		seed:  seed,
		cfg:   cfg,
		pal:   pal,
		noise: opensimplex.New(seed),
	}
}

// Generate writes initial terrain for one chunk: a simplex-noise
// heightmap with a grass surface, dirt beneath, stone below that, plus
// deterministic hash-rolled stone and sand variation. Same seed and key
// always produce the same blocks.
func (g *Generator) Generate(key world.ChunkKey, blocks []uint16) {
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			wx := key.CX*world.ChunkSize + x
			wz := key.CZ*world.ChunkSize + z
			h := g.heightAt(wx, wz)

			for y := 0; y < world.ChunkSize; y++ {
				wy := key.CY*world.ChunkSize + y
				var b uint16
				switch {
				case wy > h:
					continue // air
				case wy == h:
					b = g.pal.Grass
					if hash3(g.seed, wx, wy, wz)%1000 < uint64(clampPermille(g.cfg.SandPermille)) {
						b = g.pal.Sand
					}
				case wy > h-g.cfg.DirtDepth:
					b = g.pal.Dirt
					if hash3(g.seed, wx, wy, wz)%1000 < uint64(clampPermille(g.cfg.StonePermille)) {
						b = g.pal.Stone
					}
				default:
					b = g.pal.Stone
				}
				blocks[world.BlockIndex(x, y, z)] = b
			}
		}
	}
}

func (g *Generator) heightAt(wx, wz int) int {
	scale := g.cfg.HeightScale
	if scale <= 0 {
		scale = 1
	}
	n := g.noise.Eval2(float64(wx)/scale, float64(wz)/scale) // [-1, 1]
	return int(n * float64(g.cfg.HeightAmplitude))
}

func clampPermille(v int) int {
	if v < 0 {
		return 0
	}
	if v > 1000 {
		return 1000
	}
	return v
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
