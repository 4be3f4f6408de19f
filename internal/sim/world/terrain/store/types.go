package store

// Chunk dimensions in blocks. The index scheme below is baked into the
// persistence format; never change one without the other.
const (
	Width  = 16
	Height = 128
	Depth  = 16

	BlocksPerChunk = Width * Height * Depth
)

// Block type ids.
const (
	BlockAir uint8 = iota
	BlockStone
	BlockDirt
	BlockGrass
	BlockSand
	BlockWater
	BlockWood
	BlockLeaves
	BlockTallGrass
	BlockFlower
)

// Opaque reports whether a block stops light. Water and plant blocks let
// light through; everything else except air blocks it.
func Opaque(b uint8) bool {
	switch b {
	case BlockAir, BlockWater, BlockTallGrass, BlockFlower:
		return false
	default:
		return true
	}
}

// Coord identifies a chunk in chunk-grid space. Both axes are non-negative
// in this world; negative coordinates are rejected at the cache boundary.
type Coord struct {
	X int
	Z int
}

// Generator fills a chunk's block volume deterministically from its
// coordinate and a world seed. Multiple generators apply in a fixed order.
type Generator interface {
	Generate(c *Chunk)
}

func index(x, y, z int) int {
	return x + z*Width + y*Width*Depth
}

func inRange(x, y, z int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height && z >= 0 && z < Depth
}
