package gen

import (
	"terravox/internal/sim/world/logic/mathx"
	"terravox/internal/sim/world/terrain/store"
)

const (
	treeMaxHeight = 7
	treeMinHeight = 4

	// Roughly one tree per 170 surface columns.
	treePermille = 6
)

// Forest plants trees on grass columns, hash-placed so chunk regeneration
// is reproducible. Runs after Terrain.
type Forest struct {
	seed int64
}

func NewForest(seed int64) *Forest {
	return &Forest{seed: seed}
}

func (f *Forest) Generate(c *store.Chunk) {
	// Keep trunks away from the chunk rim so canopies stay chunk-local;
	// cross-chunk object placement is not worth the coupling here.
	for z := 2; z < store.Depth-2; z++ {
		for x := 2; x < store.Width-2; x++ {
			wx := c.Coord.X*store.Width + x
			wz := c.Coord.Z*store.Depth + z
			h := mathx.Hash2(f.seed, wx, wz)
			if h%1000 >= treePermille {
				continue
			}

			y := surfaceOf(c, x, z)
			if b, ok := c.Block(x, y, z); !ok || b != store.BlockGrass {
				continue
			}
			height := treeMinHeight + int(h>>12)%(treeMaxHeight-treeMinHeight+1)
			f.plantTree(c, x, y, z, height)
		}
	}
}

func (f *Forest) plantTree(c *store.Chunk, x, y, z, height int) {
	c.SetBlock(x, y, z, store.BlockDirt)
	for i := 1; i <= height; i++ {
		c.SetBlock(x, y+i, z, store.BlockWood)
	}
	top := y + height
	for dz := -2; dz <= 2; dz++ {
		for dx := -2; dx <= 2; dx++ {
			for dy := 0; dy <= 2; dy++ {
				if dx == 0 && dz == 0 && dy < 2 {
					continue
				}
				if mathx.AbsInt(dx)+mathx.AbsInt(dz)+dy > 3 {
					continue
				}
				if b, ok := c.Block(x+dx, top+dy-1, z+dz); ok && b == store.BlockAir {
					c.SetBlock(x+dx, top+dy-1, z+dz, store.BlockLeaves)
				}
			}
		}
	}
}

// surfaceOf finds the highest non-air, non-water block in a column.
func surfaceOf(c *store.Chunk, x, z int) int {
	for y := store.Height - 1; y >= 0; y-- {
		b, ok := c.Block(x, y, z)
		if !ok {
			return 0
		}
		if b != store.BlockAir && b != store.BlockWater && b != store.BlockTallGrass && b != store.BlockFlower {
			return y
		}
	}
	return 0
}
