package gen

import (
	"testing"

	"terravox/internal/sim/world/terrain/store"
)

func generate(seed int64, coord store.Coord) *store.Chunk {
	c := store.NewChunk(coord)
	c.Generate([]store.Generator{NewTerrain(seed), NewForest(seed)})
	return c
}

func TestTerrain_Deterministic(t *testing.T) {
	a := generate(42, store.Coord{X: 3, Z: 5})
	b := generate(42, store.Coord{X: 3, Z: 5})
	for y := 0; y < store.Height; y++ {
		for z := 0; z < store.Depth; z++ {
			for x := 0; x < store.Width; x++ {
				ba, _ := a.Block(x, y, z)
				bb, _ := b.Block(x, y, z)
				if ba != bb {
					t.Fatalf("volume differs at (%d,%d,%d): %d != %d", x, y, z, ba, bb)
				}
			}
		}
	}
}

func TestTerrain_SeedChangesTerrain(t *testing.T) {
	a := generate(1, store.Coord{X: 3, Z: 5})
	b := generate(2, store.Coord{X: 3, Z: 5})
	diff := 0
	for y := 0; y < store.Height; y++ {
		for z := 0; z < store.Depth; z++ {
			for x := 0; x < store.Width; x++ {
				ba, _ := a.Block(x, y, z)
				bb, _ := b.Block(x, y, z)
				if ba != bb {
					diff++
				}
			}
		}
	}
	if diff == 0 {
		t.Fatalf("different seeds produced identical chunks")
	}
}

func TestTerrain_ColumnStructure(t *testing.T) {
	c := store.NewChunk(store.Coord{X: 2, Z: 2})
	NewTerrain(42).Generate(c)

	for z := 0; z < store.Depth; z++ {
		for x := 0; x < store.Width; x++ {
			// Ground at the bottom.
			if b, _ := c.Block(x, 0, z); b != store.BlockStone {
				t.Fatalf("column (%d,%d) bottom = %d, want stone", x, z, b)
			}
			// No floating water: every water block sits at or below sea level.
			for y := seaLevel + 1; y < store.Height; y++ {
				if b, _ := c.Block(x, y, z); b == store.BlockWater {
					t.Fatalf("water above sea level at (%d,%d,%d)", x, y, z)
				}
			}
			// Air at the very top; terrain never reaches the ceiling.
			if b, _ := c.Block(x, store.Height-1, z); b != store.BlockAir {
				t.Fatalf("column (%d,%d) reaches the chunk ceiling", x, z)
			}
		}
	}
}

func TestForest_TrunksOnGrassOnly(t *testing.T) {
	seed := int64(7)
	bare := store.NewChunk(store.Coord{X: 1, Z: 1})
	NewTerrain(seed).Generate(bare)

	c := store.NewChunk(store.Coord{X: 1, Z: 1})
	c.Generate([]store.Generator{NewTerrain(seed), NewForest(seed)})

	for z := 0; z < store.Depth; z++ {
		for x := 0; x < store.Width; x++ {
			for y := 1; y < store.Height; y++ {
				b, _ := c.Block(x, y, z)
				if b != store.BlockWood {
					continue
				}
				below, _ := c.Block(x, y-1, z)
				if below != store.BlockWood && below != store.BlockDirt {
					t.Fatalf("trunk block at (%d,%d,%d) sits on %d", x, y, z, below)
				}
				// The pre-forest column must have been a grass surface.
				if below == store.BlockDirt {
					if was, _ := bare.Block(x, y-1, z); was != store.BlockGrass {
						t.Fatalf("tree planted on non-grass surface (%d) at (%d,%d)", was, x, z)
					}
				}
			}
		}
	}
}

func TestFlora_PlantsOnGrassWithAirAbove(t *testing.T) {
	seed := int64(11)
	c := store.NewChunk(store.Coord{X: 6, Z: 6})
	NewTerrain(seed).Generate(c)

	f := NewFlora(seed)
	f.Generate(c)

	found := false
	for z := 0; z < store.Depth; z++ {
		for x := 0; x < store.Width; x++ {
			for y := 1; y < store.Height; y++ {
				b, _ := c.Block(x, y, z)
				if b != store.BlockTallGrass && b != store.BlockFlower {
					continue
				}
				found = true
				if below, _ := c.Block(x, y-1, z); below != store.BlockGrass {
					t.Fatalf("plant at (%d,%d,%d) sits on %d, want grass", x, y, z, below)
				}
			}
		}
	}
	_ = found // sparse placement; some chunks legitimately stay bare
}

func TestFlora_ReseedMovesPlacement(t *testing.T) {
	seed := int64(11)

	plants := func(salt int) map[[3]int]bool {
		c := store.NewChunk(store.Coord{X: 6, Z: 6})
		NewTerrain(seed).Generate(c)
		f := NewFlora(seed)
		f.Reseed(salt)
		f.Generate(c)

		out := make(map[[3]int]bool)
		for z := 0; z < store.Depth; z++ {
			for x := 0; x < store.Width; x++ {
				for y := 1; y < store.Height; y++ {
					b, _ := c.Block(x, y, z)
					if b == store.BlockTallGrass || b == store.BlockFlower {
						out[[3]int{x, y, z}] = true
					}
				}
			}
		}
		return out
	}

	a := plants(1)
	b := plants(2)
	same := len(a) == len(b)
	if same {
		for k := range a {
			if !b[k] {
				same = false
				break
			}
		}
	}
	if same && len(a) > 0 {
		t.Fatalf("reseeding left the placement pattern unchanged")
	}
}
