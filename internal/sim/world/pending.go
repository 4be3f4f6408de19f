package world

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"terravox/internal/sim/world/terrain/store"
)

// pendingSet tracks chunks awaiting a scheduler pass. Enqueueing is
// idempotent; a chunk queued twice is processed once. Both the accessor
// surface and the scheduler goroutine touch it.
type pendingSet struct {
	mu sync.Mutex
	m  map[store.Coord]*store.Chunk
}

func newPendingSet() *pendingSet {
	return &pendingSet{m: make(map[store.Coord]*store.Chunk)}
}

func (p *pendingSet) Add(c *store.Chunk) {
	if c == nil {
		return
	}
	p.mu.Lock()
	p.m[c.Coord] = c
	p.mu.Unlock()
}

func (p *pendingSet) Remove(coord store.Coord) {
	p.mu.Lock()
	delete(p.m, coord)
	p.mu.Unlock()
}

func (p *pendingSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

func (p *pendingSet) Empty() bool { return p.Len() == 0 }

// Nearest returns the pending chunk closest to pos, or nil when the set is
// empty. Ties break on whichever entry the scan sees first.
func (p *pendingSet) Nearest(pos mgl32.Vec3) *store.Chunk {
	p.mu.Lock()
	defer p.mu.Unlock()

	var best *store.Chunk
	bestDist := 0.0
	for _, c := range p.m {
		d := c.DistanceTo(pos)
		if best == nil || d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
