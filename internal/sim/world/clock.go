package world

import "time"

// DaylightFor maps an hour of day [0,24) onto a daylight level against the
// given maximum. The table is a step function: full light through the
// working day, stepped dusk from 18h, darkest through the small hours,
// stepped dawn from 6h.
func DaylightFor(hour int, max uint8) uint8 {
	m := float64(max)
	switch {
	case hour >= 8 && hour < 18:
		return max
	case hour >= 18 && hour < 20:
		return uint8(0.8 * m)
	case hour == 20:
		return uint8(0.6 * m)
	case hour == 21:
		return uint8(0.4 * m)
	case hour == 22 || hour == 23:
		return uint8(0.3 * m)
	case hour >= 0 && hour <= 5:
		return uint8(0.2 * m)
	case hour == 6:
		return uint8(0.3 * m)
	default: // hour == 7
		return uint8(0.6 * m)
	}
}

// IsDaytimeHour reports whether an hour counts as day. Hours 6 and 20 are
// both night: dawn has not broken yet, dusk already has.
func IsDaytimeHour(hour int) bool {
	return hour > 6 && hour < 20
}

// Hour returns the current in-game hour of day.
func (w *World) Hour() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hour
}

// SetHour forces the clock to an hour. The daylight level follows on the
// next scheduler pass.
func (w *World) SetHour(h int) {
	w.mu.Lock()
	w.hour = ((h % 24) + 24) % 24
	w.mu.Unlock()
}

// Daylight returns the current global daylight level.
func (w *World) Daylight() uint8 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.daylight
}

func (w *World) IsDaytime() bool { return IsDaytimeHour(w.Hour()) }

// advanceClock steps the in-game hour once per HourEvery of wall time, but
// only while no chunk update is pending; relighting the world mid-backlog
// would only grow the backlog. A change in the derived daylight level
// triggers a global relight: every cached chunk is dirtied and every
// visible chunk queued.
func (w *World) advanceClock(now time.Time) {
	w.mu.Lock()
	if now.Sub(w.lastDaytime) < w.cfg.HourEvery {
		w.mu.Unlock()
		return
	}
	if !w.pending.Empty() {
		w.mu.Unlock()
		return
	}
	w.hour = (w.hour + 1) % 24
	w.lastDaytime = now
	hour := w.hour

	old := w.daylight
	w.daylight = DaylightFor(hour, w.cfg.MaxLight)
	changed := w.daylight != old
	w.mu.Unlock()

	w.logf("daytime advanced to %dh", hour)

	if changed {
		w.relightAll()
	}
}

// relightAll marks the whole cache dirty and queues every visible chunk.
func (w *World) relightAll() {
	w.cache.MarkAllDirty()
	for _, c := range w.visibleSnapshot() {
		c.MarkLightDirty()
		w.pending.Add(c)
	}
}
