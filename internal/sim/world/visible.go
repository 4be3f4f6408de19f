package world

import (
	"time"

	"terravox/internal/sim/world/terrain/store"
)

// playerChunk returns the chunk coordinate under the player.
func (w *World) playerChunk() (int, int) {
	p := w.PlayerPosition()
	return chunkPosX(int(p.X())), chunkPosZ(int(p.Z()))
}

// IsChunkVisible reports whether a chunk falls inside the viewing
// rectangle around the player's current chunk. Judged against the live
// player position, not the window snapshot, so a stale snapshot cannot
// keep a far chunk "visible".
func (w *World) IsChunkVisible(c *store.Chunk) bool {
	if c == nil {
		return false
	}
	pcx, pcz := w.playerChunk()
	half := w.cfg.ViewDistance / 2
	return c.Coord.X >= pcx-half && c.Coord.X < pcx+half &&
		c.Coord.Z >= pcz-half && c.Coord.Z < pcz+half
}

// refreshVisibleWindow rebuilds the visible-chunk snapshot by walking the
// viewing rectangle, loading or creating every cell, and queueing any
// chunk that still needs generation, light, or vertex work. Rate-limited
// by the scheduler to once per WindowRefreshEvery.
func (w *World) refreshVisibleWindow() {
	pcx, pcz := w.playerChunk()
	half := w.cfg.ViewDistance / 2

	visible := make([]*store.Chunk, 0, w.cfg.ViewDistance*w.cfg.ViewDistance)
	for x := -half; x < half; x++ {
		for z := -half; z < half; z++ {
			c := w.loadOrCreateChunk(pcx+x, pcz+z)
			if c == nil {
				continue
			}
			if c.Fresh() || c.Dirty() || c.LightDirty() {
				w.pending.Add(c)
			}
			visible = append(visible, c)
		}
	}

	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
}

func (w *World) visibleSnapshot() []*store.Chunk {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

// VisibleChunkCount is a diagnostic for the metrics surface.
func (w *World) VisibleChunkCount() int {
	return len(w.visibleSnapshot())
}

// QueueAllVisible enqueues every chunk in the current window for a
// scheduler pass.
func (w *World) QueueAllVisible() {
	for _, c := range w.visibleSnapshot() {
		w.pending.Add(c)
	}
}

// maybeRefreshWindow runs the window rebuild at most once per configured
// interval.
func (w *World) maybeRefreshWindow(now time.Time) {
	w.mu.Lock()
	due := now.Sub(w.lastWindow) >= w.cfg.WindowRefreshEvery
	if due {
		w.lastWindow = now
	}
	w.mu.Unlock()
	if due {
		w.refreshVisibleWindow()
	}
}
