package world

// WorldMetrics is a point-in-time diagnostic snapshot for the metrics and
// observer surfaces.
type WorldMetrics struct {
	CachedChunks    int     `json:"cached_chunks"`
	PendingUpdates  int     `json:"pending_updates"`
	VisibleChunks   int     `json:"visible_chunks"`
	RegenQueue      int     `json:"regen_queue"`
	GeneratedChunks int     `json:"generated_chunks"`
	UpdateMS        float64 `json:"update_ms"`
	Hour            int     `json:"hour"`
	Daylight        uint8   `json:"daylight"`
	Daytime         bool    `json:"daytime"`
}

func (w *World) Metrics() WorldMetrics {
	w.mu.Lock()
	hour := w.hour
	daylight := w.daylight
	generated := w.statGenerate
	updateMS := w.statUpdateMS
	visible := len(w.visible)
	w.mu.Unlock()

	return WorldMetrics{
		CachedChunks:    w.cache.Len(),
		PendingUpdates:  w.pending.Len(),
		VisibleChunks:   visible,
		RegenQueue:      w.regen.Len(),
		GeneratedChunks: generated,
		UpdateMS:        updateMS,
		Hour:            hour,
		Daylight:        daylight,
		Daytime:         IsDaytimeHour(hour),
	}
}
