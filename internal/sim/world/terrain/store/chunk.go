package store

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Chunk is the authoritative storage for one Width x Height x Depth block
// volume plus its per-block light values and update flags. A chunk starts
// fresh (content not generated) and moves through generated/dirty states as
// the scheduler touches it; see the world package for the lifecycle.
//
// Chunks are not internally synchronized. All mutation funnels through the
// single world update goroutine or the accessor surface, which serializes
// against it.
type Chunk struct {
	Coord Coord

	blocks []uint8
	light  []uint8

	fresh      bool
	dirty      bool
	lightDirty bool
}

func NewChunk(c Coord) *Chunk {
	return &Chunk{
		Coord:      c,
		blocks:     make([]uint8, BlocksPerChunk),
		light:      make([]uint8, BlocksPerChunk),
		fresh:      true,
		lightDirty: true,
	}
}

// Block returns the block type at a local position, comma-ok on range.
func (c *Chunk) Block(x, y, z int) (uint8, bool) {
	if !inRange(x, y, z) {
		return 0, false
	}
	return c.blocks[index(x, y, z)], true
}

// SetBlock writes a block type at a local position and marks the chunk
// dirty. Out-of-range writes are ignored.
func (c *Chunk) SetBlock(x, y, z int, b uint8) {
	if !inRange(x, y, z) {
		return
	}
	i := index(x, y, z)
	if c.blocks[i] == b {
		return
	}
	c.blocks[i] = b
	c.dirty = true
}

// Light returns the light value at a local position, comma-ok on range.
func (c *Chunk) Light(x, y, z int) (uint8, bool) {
	if !inRange(x, y, z) {
		return 0, false
	}
	return c.light[index(x, y, z)], true
}

// SetLight writes a light value at a local position and marks the chunk
// dirty so its vertices are rebuilt with the new shading.
func (c *Chunk) SetLight(x, y, z int, v uint8) {
	if !inRange(x, y, z) {
		return
	}
	i := index(x, y, z)
	if c.light[i] == v {
		return
	}
	c.light[i] = v
	c.dirty = true
}

// CanSeeSky reports whether no opaque block sits above the given local
// position within this chunk's column.
func (c *Chunk) CanSeeSky(x, y, z int) bool {
	if !inRange(x, y, z) {
		return false
	}
	for yy := y + 1; yy < Height; yy++ {
		if Opaque(c.blocks[index(x, yy, z)]) {
			return false
		}
	}
	return true
}

// ComputeSunlight fills the (x,z) column top-down with the given daylight
// value until the first opaque block, zeroing the light below it.
func (c *Chunk) ComputeSunlight(x, z int, daylight uint8) {
	covered := false
	for y := Height - 1; y >= 0; y-- {
		i := index(x, y, z)
		if Opaque(c.blocks[i]) {
			covered = true
		}
		v := daylight
		if covered {
			v = 0
		}
		if c.light[i] != v {
			c.light[i] = v
			c.dirty = true
		}
	}
}

// Generate runs the configured generators over a fresh chunk. A no-op if
// the chunk was generated before.
func (c *Chunk) Generate(gens []Generator) {
	if !c.fresh {
		return
	}
	for _, g := range gens {
		g.Generate(c)
	}
	c.fresh = false
	c.dirty = true
	c.lightDirty = true
}

func (c *Chunk) Fresh() bool      { return c.fresh }
func (c *Chunk) Dirty() bool      { return c.dirty }
func (c *Chunk) LightDirty() bool { return c.lightDirty }

func (c *Chunk) MarkDirty()       { c.dirty = true }
func (c *Chunk) ClearDirty()      { c.dirty = false }
func (c *Chunk) MarkLightDirty()  { c.lightDirty = true }
func (c *Chunk) ClearLightDirty() { c.lightDirty = false }

// DistanceTo returns the distance from the chunk's center to a world-space
// position, projected onto the XZ plane. Used only for ordering and
// eviction.
func (c *Chunk) DistanceTo(p mgl32.Vec3) float64 {
	cx := float64(c.Coord.X*Width) + float64(Width)/2
	cz := float64(c.Coord.Z*Depth) + float64(Depth)/2
	dx := cx - float64(p.X())
	dz := cz - float64(p.Z())
	return math.Sqrt(dx*dx + dz*dz)
}

// Volume copies for persistence.

type ChunkData struct {
	CX, CZ int
	Blocks []uint8
	Light  []uint8
}

// Export snapshots the chunk's volumes for serialization.
func (c *Chunk) Export() ChunkData {
	d := ChunkData{
		CX:     c.Coord.X,
		CZ:     c.Coord.Z,
		Blocks: make([]uint8, BlocksPerChunk),
		Light:  make([]uint8, BlocksPerChunk),
	}
	copy(d.Blocks, c.blocks)
	copy(d.Light, c.light)
	return d
}

// Restore rebuilds a chunk from persisted volumes. The chunk comes back
// generated with its light intact, but dirty so its vertices are rebuilt.
func Restore(d ChunkData) *Chunk {
	c := NewChunk(Coord{X: d.CX, Z: d.CZ})
	copy(c.blocks, d.Blocks)
	copy(c.light, d.Light)
	c.fresh = false
	c.dirty = true
	c.lightDirty = false
	return c
}
