package store

import "testing"

func TestChunk_BlockRangeChecks(t *testing.T) {
	c := NewChunk(Coord{})
	if _, ok := c.Block(-1, 0, 0); ok {
		t.Fatalf("negative x must be out of range")
	}
	if _, ok := c.Block(0, Height, 0); ok {
		t.Fatalf("y=Height must be out of range")
	}
	c.SetBlock(0, 0, 0, BlockStone)
	if b, ok := c.Block(0, 0, 0); !ok || b != BlockStone {
		t.Fatalf("got (%d,%v), want (%d,true)", b, ok, BlockStone)
	}
}

func TestChunk_FlagLifecycle(t *testing.T) {
	c := NewChunk(Coord{X: 1, Z: 1})
	if !c.Fresh() || !c.LightDirty() || c.Dirty() {
		t.Fatalf("new chunk: fresh=%v lightDirty=%v dirty=%v", c.Fresh(), c.LightDirty(), c.Dirty())
	}

	c.SetBlock(2, 3, 4, BlockDirt)
	if !c.Dirty() {
		t.Fatalf("a block write must dirty the chunk")
	}
	c.ClearDirty()

	// Writing the same value again is a no-op.
	c.SetBlock(2, 3, 4, BlockDirt)
	if c.Dirty() {
		t.Fatalf("an equal-value write must not dirty the chunk")
	}
}

func TestChunk_GenerateOnce(t *testing.T) {
	calls := 0
	g := generatorFunc(func(c *Chunk) {
		calls++
		c.SetBlock(0, 0, 0, BlockStone)
	})

	c := NewChunk(Coord{})
	c.Generate([]Generator{g})
	c.Generate([]Generator{g})
	if calls != 1 {
		t.Fatalf("generator ran %d times, want 1", calls)
	}
	if c.Fresh() {
		t.Fatalf("generated chunk must not stay fresh")
	}
	if !c.Dirty() || !c.LightDirty() {
		t.Fatalf("generation must leave the chunk dirty and light-dirty")
	}
}

type generatorFunc func(*Chunk)

func (f generatorFunc) Generate(c *Chunk) { f(c) }

func TestChunk_CanSeeSky(t *testing.T) {
	c := NewChunk(Coord{})
	if !c.CanSeeSky(4, 10, 4) {
		t.Fatalf("empty column must see the sky")
	}
	c.SetBlock(4, 20, 4, BlockStone)
	if c.CanSeeSky(4, 10, 4) {
		t.Fatalf("stone above must block the sky")
	}
	if !c.CanSeeSky(4, 20, 4) {
		t.Fatalf("the covering block itself still sees the sky")
	}
	// Water does not block the sky.
	c2 := NewChunk(Coord{})
	c2.SetBlock(4, 20, 4, BlockWater)
	if !c2.CanSeeSky(4, 10, 4) {
		t.Fatalf("water above must not block the sky")
	}
}

func TestChunk_ComputeSunlight(t *testing.T) {
	c := NewChunk(Coord{})
	c.SetBlock(3, 40, 3, BlockStone)
	c.ComputeSunlight(3, 3, 16)

	if v, _ := c.Light(3, 60, 3); v != 16 {
		t.Fatalf("light above cover = %d, want 16", v)
	}
	if v, _ := c.Light(3, 40, 3); v != 0 {
		t.Fatalf("light at cover = %d, want 0", v)
	}
	if v, _ := c.Light(3, 10, 3); v != 0 {
		t.Fatalf("light below cover = %d, want 0", v)
	}
}

func TestChunk_ExportRestore(t *testing.T) {
	c := NewChunk(Coord{X: 2, Z: 7})
	c.SetBlock(1, 2, 3, BlockGrass)
	c.SetLight(1, 3, 3, 12)

	r := Restore(c.Export())
	if r.Coord != c.Coord {
		t.Fatalf("coord = %+v, want %+v", r.Coord, c.Coord)
	}
	if b, _ := r.Block(1, 2, 3); b != BlockGrass {
		t.Fatalf("restored block = %d, want %d", b, BlockGrass)
	}
	if v, _ := r.Light(1, 3, 3); v != 12 {
		t.Fatalf("restored light = %d, want 12", v)
	}
	if r.Fresh() {
		t.Fatalf("restored chunk must not be fresh")
	}
	if r.LightDirty() {
		t.Fatalf("restored chunk carries its light; it must not be light-dirty")
	}
	if !r.Dirty() {
		t.Fatalf("restored chunk must be dirty so its vertices rebuild")
	}
}
