// Package light implements flood-fill light propagation over world-space
// block coordinates. The engine sees the world only through the BlockView
// interface, so spreading crosses chunk boundaries wherever the view's
// coordinate mapping can resolve a block.
//
// Both directions run on an explicit worklist with a step bound instead of
// recursion; the original recursive formulation overflows the stack on
// large open areas.
package light

import "terravox/internal/sim/world/terrain/store"

// BlockView is the minimal world surface the engine needs. Lookups are
// comma-ok: a false result means the position is unavailable (unloaded
// chunk, out of range) and the fill stops there.
type BlockView interface {
	BlockAt(x, y, z int) (uint8, bool)
	LightAt(x, y, z int) (uint8, bool)
	SetLightAt(x, y, z int, v uint8)
}

type pos struct{ x, y, z int }

var faces = [6]pos{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Engine spreads and removes light through a BlockView. maxSteps bounds a
// single fill so one call can never walk the whole cache.
type Engine struct {
	view     BlockView
	maxSteps int
}

func NewEngine(view BlockView, maxSteps int) *Engine {
	if maxSteps <= 0 {
		maxSteps = 1 << 16
	}
	return &Engine{view: view, maxSteps: maxSteps}
}

// Spread floods decreasing light outward from (x,y,z) at the given
// intensity. Neighbors only brighten, never darken, so the fill terminates
// once no block improves.
func (e *Engine) Spread(x, y, z int, intensity uint8) {
	if intensity == 0 {
		return
	}
	if cur, ok := e.view.LightAt(x, y, z); !ok || cur > intensity {
		return
	}
	e.view.SetLightAt(x, y, z, intensity)

	type item struct {
		p     pos
		level uint8
	}
	queue := []item{{pos{x, y, z}, intensity}}
	steps := 0

	for len(queue) > 0 && steps < e.maxSteps {
		it := queue[0]
		queue = queue[1:]
		steps++

		if it.level <= 1 {
			continue
		}
		next := it.level - 1
		for _, f := range faces {
			nx, ny, nz := it.p.x+f.x, it.p.y+f.y, it.p.z+f.z
			b, ok := e.view.BlockAt(nx, ny, nz)
			if !ok || store.Opaque(b) {
				continue
			}
			cur, ok := e.view.LightAt(nx, ny, nz)
			if !ok || cur >= next {
				continue
			}
			e.view.SetLightAt(nx, ny, nz, next)
			queue = append(queue, item{pos{nx, ny, nz}, next})
		}
	}
}

// Unspread removes light that derived from (x,y,z) when that block's value
// dropped from old. Blocks strictly dimmer than their upstream value are
// zeroed and traversed; blocks at or above it are independent sources and
// become re-seeds, flooded back in afterwards.
func (e *Engine) Unspread(x, y, z int, old uint8) {
	if old == 0 {
		return
	}

	type item struct {
		p     pos
		level uint8
	}
	queue := []item{{pos{x, y, z}, old}}
	var seeds []item
	steps := 0

	for len(queue) > 0 && steps < e.maxSteps {
		it := queue[0]
		queue = queue[1:]
		steps++

		for _, f := range faces {
			nx, ny, nz := it.p.x+f.x, it.p.y+f.y, it.p.z+f.z
			cur, ok := e.view.LightAt(nx, ny, nz)
			if !ok || cur == 0 {
				continue
			}
			if cur < it.level {
				e.view.SetLightAt(nx, ny, nz, 0)
				queue = append(queue, item{pos{nx, ny, nz}, cur})
			} else {
				seeds = append(seeds, item{pos{nx, ny, nz}, cur})
			}
		}
	}

	for _, s := range seeds {
		e.Spread(s.p.x, s.p.y, s.p.z, s.level)
	}
}
