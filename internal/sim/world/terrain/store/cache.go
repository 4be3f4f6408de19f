package store

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// EvictFunc is invoked for each chunk removed by an eviction pass, before
// the chunk is dropped from the cache. Callers use it to persist the chunk
// and to drop it from any pending-update bookkeeping.
type EvictFunc func(*Chunk)

// Cache is a bounded mapping from chunk coordinate to chunk. When an
// insertion finds the cache at capacity, a single eviction pass removes a
// fixed batch of the chunks farthest from the current focus position.
//
// The cache is touched by both the render-facing accessor surface and the
// background update goroutine, so all state is guarded by one mutex.
type Cache struct {
	capacity int
	batch    int
	onEvict  EvictFunc

	mu      sync.Mutex
	chunks  map[Coord]*Chunk
	seq     map[Coord]uint64
	nextSeq uint64
	focus   mgl32.Vec3
}

func NewCache(capacity, batch int, onEvict EvictFunc) *Cache {
	if capacity <= 0 {
		capacity = 1024
	}
	if batch <= 0 {
		batch = 32
	}
	return &Cache{
		capacity: capacity,
		batch:    batch,
		onEvict:  onEvict,
		chunks:   make(map[Coord]*Chunk, capacity),
		seq:      make(map[Coord]uint64, capacity),
	}
}

// SetFocus updates the position eviction measures distance against.
func (c *Cache) SetFocus(p mgl32.Vec3) {
	c.mu.Lock()
	c.focus = p
	c.mu.Unlock()
}

// Get is a lookup with no side effects.
func (c *Cache) Get(coord Coord) *Chunk {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chunks[coord]
}

// LoadOrCreate returns the cached chunk for coord, building and inserting
// one via build when absent. Negative coordinates yield nil: the caller
// must treat that as "no chunk here". If the cache is at capacity the
// insertion runs exactly one eviction pass first; the insertion itself
// never re-triggers eviction.
func (c *Cache) LoadOrCreate(coord Coord, build func(Coord) *Chunk) *Chunk {
	if coord.X < 0 || coord.Z < 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ch := c.chunks[coord]; ch != nil {
		return ch
	}

	if len(c.chunks) >= c.capacity {
		c.evictLocked()
	}

	ch := build(coord)
	if ch == nil {
		return nil
	}
	c.chunks[coord] = ch
	c.seq[coord] = c.nextSeq
	c.nextSeq++
	return ch
}

// evictLocked removes up to batch chunks, farthest from focus first.
// Ordering ties break on insertion order, so repeated passes are stable.
func (c *Cache) evictLocked() {
	ordered := c.orderedLocked()

	n := c.batch
	if n > len(ordered) {
		n = len(ordered)
	}
	for i := 0; i < n; i++ {
		victim := ordered[len(ordered)-1-i]
		if c.onEvict != nil {
			c.onEvict(victim)
		}
		delete(c.chunks, victim.Coord)
		delete(c.seq, victim.Coord)
	}
}

// orderedLocked returns all cached chunks by ascending distance to focus.
func (c *Cache) orderedLocked() []*Chunk {
	out := make([]*Chunk, 0, len(c.chunks))
	for _, ch := range c.chunks {
		out = append(out, ch)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di := out[i].DistanceTo(c.focus)
		dj := out[j].DistanceTo(c.focus)
		if di != dj {
			return di < dj
		}
		return c.seq[out[i].Coord] < c.seq[out[j].Coord]
	})
	return out
}

// MarkAllDirty flags every cached chunk for vertex regeneration. Used after
// a global daylight change.
func (c *Cache) MarkAllDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.chunks {
		ch.MarkDirty()
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chunks)
}

// Snapshot returns every cached chunk in insertion order. Used for teardown
// serialization.
func (c *Cache) Snapshot() []*Chunk {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Chunk, 0, len(c.chunks))
	for _, ch := range c.chunks {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		return c.seq[out[i].Coord] < c.seq[out[j].Coord]
	})
	return out
}
