package gen

import (
	"terravox/internal/sim/world/logic/mathx"
	"terravox/internal/sim/world/terrain/store"
)

const (
	grassPermille  = 40
	flowerPermille = 6
)

// Flora sprinkles tall grass and flowers onto grass columns. The update
// scheduler also re-runs it on random visible chunks over time, which is
// what re-vegetates terrain the player has dug up.
type Flora struct {
	seed int64

	// salt decorrelates repeated passes over the same chunk; the world
	// bumps it via Reseed so evolution plants in new spots.
	salt int
}

func NewFlora(seed int64) *Flora {
	return &Flora{seed: seed}
}

// Reseed shifts the placement pattern for the next pass.
func (f *Flora) Reseed(salt int) {
	f.salt = salt
}

func (f *Flora) Generate(c *store.Chunk) {
	for z := 0; z < store.Depth; z++ {
		for x := 0; x < store.Width; x++ {
			wx := c.Coord.X*store.Width + x
			wz := c.Coord.Z*store.Depth + z
			h := mathx.Hash3(f.seed, wx, f.salt, wz)
			roll := h % 1000
			if roll >= grassPermille+flowerPermille {
				continue
			}

			y := surfaceOf(c, x, z)
			if b, ok := c.Block(x, y, z); !ok || b != store.BlockGrass {
				continue
			}
			if b, ok := c.Block(x, y+1, z); !ok || b != store.BlockAir {
				continue
			}
			if roll < grassPermille {
				c.SetBlock(x, y+1, z, store.BlockTallGrass)
			} else {
				c.SetBlock(x, y+1, z, store.BlockFlower)
			}
		}
	}
}
