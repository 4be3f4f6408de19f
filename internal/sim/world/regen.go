package world

import (
	"sync"

	"terravox/internal/sim/world/terrain/store"
)

// regenQueue hands chunks whose geometry changed over to the rendering
// collaborator. The scheduler pushes, the render side pops; the queue
// never blocks the scheduler: when full, the oldest entry is dropped and
// reported to the caller, who must re-mark that chunk so the signal is
// not lost.
type regenQueue struct {
	mu    sync.Mutex
	items []store.Coord
	seen  map[store.Coord]struct{}
	limit int
}

func newRegenQueue(limit int) *regenQueue {
	if limit <= 0 {
		limit = 256
	}
	return &regenQueue{
		seen:  make(map[store.Coord]struct{}),
		limit: limit,
	}
}

// Push enqueues coord, deduplicating against entries already queued. When
// the queue is full the oldest entry is evicted to make room; the evicted
// coord is returned so the caller can restore its dirty mark.
func (q *regenQueue) Push(coord store.Coord) (dropped store.Coord, overflow bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, dup := q.seen[coord]; dup {
		return store.Coord{}, false
	}
	if len(q.items) >= q.limit {
		dropped = q.items[0]
		overflow = true
		q.items = q.items[1:]
		delete(q.seen, dropped)
	}
	q.items = append(q.items, coord)
	q.seen[coord] = struct{}{}
	return dropped, overflow
}

func (q *regenQueue) Pop() (store.Coord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return store.Coord{}, false
	}
	coord := q.items[0]
	q.items = q.items[1:]
	delete(q.seen, coord)
	return coord, true
}

func (q *regenQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// NextRegen pops the next chunk marked for vertex regeneration. The render
// collaborator calls this once per frame.
func (w *World) NextRegen() (store.Coord, bool) {
	return w.regen.Pop()
}
