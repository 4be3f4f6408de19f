package world

import "terravox/internal/sim/world/terrain/store"

// Sentinel returned by the int-valued accessors when a block or light
// value is unavailable. These run on the render hot path, so failure is a
// value here, never an error.
const NoValue = -1

// chunkPos maps a world-space block axis value to its chunk coordinate.
// Plain division is correct because negative chunk coordinates never hold
// chunks in this world.
func chunkPosX(x int) int { return x / store.Width }
func chunkPosZ(z int) int { return z / store.Depth }

// localPos maps world-space block coordinates to chunk-local ones.
func localPos(x, y, z int) (int, int, int) {
	return x - chunkPosX(x)*store.Width, y, z - chunkPosZ(z)*store.Depth
}

// chunkFor resolves the chunk that owns a world-space block position,
// loading or creating it on demand. Comma-ok; false for negative or
// vertical out-of-range positions.
func (w *World) chunkFor(x, y, z int) (*store.Chunk, bool) {
	if x < 0 || z < 0 || y < 0 || y >= store.Height {
		return nil, false
	}
	c := w.loadOrCreateChunk(chunkPosX(x), chunkPosZ(z))
	if c == nil {
		return nil, false
	}
	return c, true
}

// BlockAt looks up a block by world coordinates. The comma-ok result makes
// the sentinel surface below testable without error control flow.
func (w *World) BlockAt(x, y, z int) (uint8, bool) {
	c, ok := w.chunkFor(x, y, z)
	if !ok {
		return 0, false
	}
	lx, ly, lz := localPos(x, y, z)
	return c.Block(lx, ly, lz)
}

// LightAt looks up a light value by world coordinates, comma-ok.
func (w *World) LightAt(x, y, z int) (uint8, bool) {
	c, ok := w.chunkFor(x, y, z)
	if !ok {
		return 0, false
	}
	lx, ly, lz := localPos(x, y, z)
	return c.Light(lx, ly, lz)
}

// SetLightAt writes a light value by world coordinates. Part of the
// light.BlockView surface; unavailable positions are skipped.
func (w *World) SetLightAt(x, y, z int, v uint8) {
	c, ok := w.chunkFor(x, y, z)
	if !ok {
		return
	}
	lx, ly, lz := localPos(x, y, z)
	c.SetLight(lx, ly, lz, v)
}

// GetBlock returns the block type at a world position, or NoValue when the
// chunk is unavailable.
func (w *World) GetBlock(x, y, z int) int {
	b, ok := w.BlockAt(x, y, z)
	if !ok {
		return NoValue
	}
	return int(b)
}

// GetLight returns the light value at a world position, or NoValue.
func (w *World) GetLight(x, y, z int) int {
	v, ok := w.LightAt(x, y, z)
	if !ok {
		return NoValue
	}
	return int(v)
}

// CanBlockSeeTheSky reports whether nothing opaque sits above the position.
// False when the chunk is unavailable.
func (w *World) CanBlockSeeTheSky(x, y, z int) bool {
	c, ok := w.chunkFor(x, y, z)
	if !ok {
		return false
	}
	lx, ly, lz := localPos(x, y, z)
	return c.CanSeeSky(lx, ly, lz)
}

// SetSunlight writes a raw light value at a world position. Mostly a
// tooling hook; gameplay mutation goes through SetBlock.
func (w *World) SetSunlight(x, y, z int, intensity uint8) {
	w.SetLightAt(x, y, z, intensity)
}

// SetBlock places a block at a world position. With overwrite unset, only
// air is replaced. With update set, the owning column's sunlight is
// recomputed, light is spread or unspread from the change, and the chunk
// is queued for a scheduler pass. Returns false when no chunk is available
// at the position.
func (w *World) SetBlock(x, y, z int, blockType uint8, update, overwrite bool) bool {
	c, ok := w.chunkFor(x, y, z)
	if !ok {
		return false
	}
	lx, ly, lz := localPos(x, y, z)

	cur, ok := c.Block(lx, ly, lz)
	if !ok {
		return false
	}
	if !overwrite && cur != store.BlockAir {
		return false
	}
	c.SetBlock(lx, ly, lz, blockType)

	if update {
		old, _ := c.Light(lx, ly, lz)
		c.ComputeSunlight(lx, lz, w.Daylight())
		w.refreshLightFromNeighbors(x, y, z)
		next, _ := c.Light(lx, ly, lz)

		if next > old {
			w.lights.Spread(x, y, z, next)
		} else if next < old {
			w.lights.Unspread(x, y, z, old)
		}
		w.pending.Add(c)
	}
	return true
}

// refreshLightFromNeighbors re-derives a block's light from its brightest
// face neighbor when the column's sunlight alone left it dark.
func (w *World) refreshLightFromNeighbors(x, y, z int) {
	b, ok := w.BlockAt(x, y, z)
	if !ok || store.Opaque(b) {
		return
	}
	cur, _ := w.LightAt(x, y, z)

	var best uint8
	for _, d := range [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}} {
		if v, ok := w.LightAt(x+d[0], y+d[1], z+d[2]); ok && v > best {
			best = v
		}
	}
	if best > 1 && best-1 > cur {
		w.SetLightAt(x, y, z, best-1)
	}
}
