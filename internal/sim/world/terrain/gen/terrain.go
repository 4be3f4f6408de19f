// Package gen holds the reference chunk generators: base terrain from
// layered opensimplex noise, plus deterministic forest and flora passes.
// Every generator is a pure function of the world seed and the chunk
// coordinate, so regenerating a chunk always reproduces the same volume.
package gen

import (
	"github.com/ojrac/opensimplex-go"

	"terravox/internal/sim/world/logic/mathx"
	"terravox/internal/sim/world/terrain/store"
)

const (
	seaLevel    = 32
	baseHeight  = 40
	heightSpan  = 48
	dirtDepth   = 3
	beachMargin = 1
)

// Terrain fills a chunk with a heightmapped stone/dirt/grass column per
// (x,z), sand near the water line and still water up to sea level.
type Terrain struct {
	noise opensimplex.Noise
}

func NewTerrain(seed int64) *Terrain {
	return &Terrain{noise: opensimplex.New(seed)}
}

func (t *Terrain) Generate(c *store.Chunk) {
	for z := 0; z < store.Depth; z++ {
		for x := 0; x < store.Width; x++ {
			wx := c.Coord.X*store.Width + x
			wz := c.Coord.Z*store.Depth + z
			h := t.surfaceHeight(wx, wz)

			for y := 0; y <= h; y++ {
				switch {
				case y == h && h <= seaLevel+beachMargin:
					c.SetBlock(x, y, z, store.BlockSand)
				case y == h:
					c.SetBlock(x, y, z, store.BlockGrass)
				case y >= h-dirtDepth:
					c.SetBlock(x, y, z, store.BlockDirt)
				default:
					c.SetBlock(x, y, z, store.BlockStone)
				}
			}
			for y := h + 1; y <= seaLevel; y++ {
				c.SetBlock(x, y, z, store.BlockWater)
			}
		}
	}
}

// surfaceHeight folds three noise octaves into a terrain height in
// [1, baseHeight+heightSpan].
func (t *Terrain) surfaceHeight(wx, wz int) int {
	fx := float64(wx)
	fz := float64(wz)

	v := t.noise.Eval2(fx/96, fz/96)
	v += 0.5 * t.noise.Eval2(fx/48, fz/48)
	v += 0.25 * t.noise.Eval2(fx/24, fz/24)
	v /= 1.75

	h := baseHeight + int(v*float64(heightSpan)/2)
	return mathx.Clamp(h, 1, store.Height-treeMaxHeight-2)
}
