package world

import (
	"fmt"
	"time"

	"terravox/internal/sim/world/terrain/store"
)

// Start launches the background update loop. A world is started at most
// once; Suspend and Resume pause and continue the loop, Close tears it
// down.
func (w *World) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.updating = true
	w.mu.Unlock()
	go w.runLoop()
}

// Suspend parks the update loop before its next iteration. An in-flight
// chunk update finishes first; there is no preemption.
func (w *World) Suspend() {
	w.mu.Lock()
	w.updating = false
	w.mu.Unlock()
}

// Resume wakes a suspended update loop.
func (w *World) Resume() {
	w.mu.Lock()
	w.updating = true
	w.mu.Unlock()
	w.cond.Broadcast()
}

// Close stops the update loop, waits for it to exit, then serializes every
// cached chunk exactly once. Safe to call more than once.
func (w *World) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closing = true
		started := w.started
		w.mu.Unlock()
		w.cond.Broadcast()
		if started {
			<-w.loopDone
		}
		w.writeAllChunks()
	})
}

// writeAllChunks persists the full cache; used only during teardown.
func (w *World) writeAllChunks() {
	if w.db == nil {
		return
	}
	for _, c := range w.cache.Snapshot() {
		if err := w.db.Save(c.Export()); err != nil {
			w.logf("teardown save chunk (%d,%d): %v", c.Coord.X, c.Coord.Z, err)
		}
	}
}

// runLoop is the single background scheduler. Each iteration drains one
// pending chunk (nearest to the player first), advances the day/night
// clock, runs the slow flora evolution pass, refreshes the visible window
// at most once per second, and sleeps briefly to cap loop frequency.
func (w *World) runLoop() {
	defer close(w.loopDone)

	for {
		w.mu.Lock()
		for !w.updating && !w.closing {
			w.cond.Wait()
		}
		if w.closing {
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()

		if c := w.pending.Nearest(w.PlayerPosition()); c != nil {
			start := time.Now()
			if err := w.processChunk(c); err != nil {
				// Leave the chunk pending; a later tick retries it.
				w.logf("process chunk (%d,%d): %v", c.Coord.X, c.Coord.Z, err)
			}
			w.observeUpdateDuration(time.Since(start))
		}

		now := time.Now()
		w.advanceClock(now)
		w.evolveChunks()
		w.maybeRefreshWindow(now)

		time.Sleep(w.cfg.UpdateInterval)
	}
}

// processChunk is the scheduler's unit of work: make sure the chunk and
// its lateral neighbors are generated, recompute light if needed, pass
// neighbor dirt outward one scheduler tick at a time, and hand the chunk
// to the regeneration queue once its geometry settled.
func (w *World) processChunk(c *store.Chunk) error {
	if c == nil {
		return fmt.Errorf("nil chunk")
	}

	// Visibility may have moved on since the chunk was queued.
	if !w.IsChunkVisible(c) {
		w.pending.Remove(c.Coord)
		return nil
	}

	c.Generate(w.generators)

	neighbors := w.loadNeighbors(c)
	for _, nc := range neighbors {
		if nc != nil {
			nc.Generate(w.generators)
		}
	}

	if c.LightDirty() {
		w.relightChunk(c)
		c.ClearLightDirty()
	}

	// Spread follow-up work outward instead of recursing across the
	// window in one pass.
	for _, nc := range neighbors {
		if nc != nil && nc.Dirty() && w.IsChunkVisible(nc) {
			w.pending.Add(nc)
		}
	}

	if c.Dirty() && w.IsChunkVisible(c) {
		if dropped, overflow := w.regen.Push(c.Coord); overflow {
			// The evicted entry was clean by the time it was queued;
			// restore its dirty mark so its regen is retried, not lost.
			if dc := w.cache.Get(dropped); dc != nil {
				dc.MarkDirty()
				w.pending.Add(dc)
			}
		}
		c.ClearDirty()
	}

	w.pending.Remove(c.Coord)

	w.mu.Lock()
	w.statGenerate++
	w.mu.Unlock()
	return nil
}

// loadNeighbors returns the four lateral neighbors, nil where a neighbor
// coordinate is invalid.
func (w *World) loadNeighbors(c *store.Chunk) [4]*store.Chunk {
	cx, cz := c.Coord.X, c.Coord.Z
	return [4]*store.Chunk{
		w.loadOrCreateChunk(cx+1, cz),
		w.loadOrCreateChunk(cx-1, cz),
		w.loadOrCreateChunk(cx, cz+1),
		w.loadOrCreateChunk(cx, cz-1),
	}
}

// relightChunk recomputes the chunk's light from scratch: sunlight per
// column at the current daylight level, then a flood from every lit block
// so light settles across chunk boundaries.
func (w *World) relightChunk(c *store.Chunk) {
	daylight := w.Daylight()
	for z := 0; z < store.Depth; z++ {
		for x := 0; x < store.Width; x++ {
			c.ComputeSunlight(x, z, daylight)
		}
	}

	baseX := c.Coord.X * store.Width
	baseZ := c.Coord.Z * store.Depth
	for z := 0; z < store.Depth; z++ {
		for x := 0; x < store.Width; x++ {
			for y := 0; y < store.Height; y++ {
				if v, ok := c.Light(x, y, z); ok && v > 1 {
					w.lights.Spread(baseX+x, y, baseZ+z, v)
				}
			}
		}
	}
}

// evolveChunks is the slow re-vegetation pass: when nothing is pending,
// run the flora generator over one random visible chunk and queue it.
func (w *World) evolveChunks() {
	if !w.pending.Empty() {
		return
	}
	visible := w.visibleSnapshot()
	if len(visible) == 0 {
		return
	}

	w.mu.Lock()
	c := visible[w.rng.Intn(len(visible))]
	salt := w.rng.Int()
	w.mu.Unlock()

	if c.Fresh() {
		return
	}
	w.flora.Reseed(salt)
	w.flora.Generate(c)
	w.pending.Add(c)
}

// observeUpdateDuration folds one measurement into the smoothed
// processing-duration statistic.
func (w *World) observeUpdateDuration(d time.Duration) {
	w.mu.Lock()
	w.statUpdateMS = (w.statUpdateMS + float64(d.Milliseconds())) / 2
	w.mu.Unlock()
}
