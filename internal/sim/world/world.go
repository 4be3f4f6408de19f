// Package world owns the runtime state of a terravox world: the bounded
// chunk cache, the pending-update set, the background update scheduler and
// the day/night clock. The render-facing side reads block and light values
// through the accessor surface and drains the vertex-regeneration queue;
// one background goroutine does everything else.
package world

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"terravox/internal/sim/world/light"
	"terravox/internal/sim/world/terrain/gen"
	"terravox/internal/sim/world/terrain/store"
)

// ChunkStore is the persistence collaborator. Chunks are saved on eviction
// and on teardown, and looked up on cache misses.
type ChunkStore interface {
	Save(d store.ChunkData) error
	Load(cx, cz int) (store.ChunkData, bool, error)
}

type WorldConfig struct {
	ID   string
	Seed int64

	// ViewDistance is the side length, in chunks, of the visible window.
	ViewDistance int
	// CacheCapacity bounds the chunk cache; EvictBatch chunks are dropped
	// per eviction pass.
	CacheCapacity int
	EvictBatch    int

	// MaxLight is the daylight value at full noon.
	MaxLight uint8

	// Scheduler cadences. Tests shrink these.
	HourEvery          time.Duration
	WindowRefreshEvery time.Duration
	UpdateInterval     time.Duration
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.ViewDistance <= 0 {
		c.ViewDistance = 16
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 1024
	}
	if c.EvictBatch <= 0 {
		c.EvictBatch = 32
	}
	if c.MaxLight == 0 {
		c.MaxLight = 16
	}
	if c.HourEvery <= 0 {
		c.HourEvery = 30 * time.Second
	}
	if c.WindowRefreshEvery <= 0 {
		c.WindowRefreshEvery = time.Second
	}
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = 15 * time.Millisecond
	}
}

type World struct {
	cfg WorldConfig
	log *log.Logger

	cache      *store.Cache
	db         ChunkStore
	generators []store.Generator
	flora      *gen.Flora
	lights     *light.Engine

	pending *pendingSet
	regen   *regenQueue

	// mu guards player position, the visible-window snapshot, the clock
	// and the shared stats below.
	mu        sync.Mutex
	playerPos mgl32.Vec3
	visible   []*store.Chunk

	hour         int
	daylight     uint8
	lastDaytime  time.Time
	lastWindow   time.Time
	statGenerate int
	statUpdateMS float64

	rng *rand.Rand

	// Scheduler control. cond shares mu.
	cond      *sync.Cond
	updating  bool
	closing   bool
	started   bool
	loopDone  chan struct{}
	closeOnce sync.Once
}

// New builds a world around the given persistence collaborator (nil for a
// memory-only world) and logger (nil for silent).
func New(cfg WorldConfig, db ChunkStore, logger *log.Logger) *World {
	cfg.applyDefaults()
	w := &World{
		cfg:      cfg,
		log:      logger,
		db:       db,
		flora:    gen.NewFlora(cfg.Seed),
		pending:  newPendingSet(),
		regen:    newRegenQueue(256),
		hour:     8,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		loopDone: make(chan struct{}),
	}
	w.generators = []store.Generator{
		gen.NewTerrain(cfg.Seed),
		gen.NewForest(cfg.Seed),
	}
	w.daylight = DaylightFor(w.hour, cfg.MaxLight)
	w.lastDaytime = time.Now()
	w.lastWindow = time.Time{}
	w.cache = store.NewCache(cfg.CacheCapacity, cfg.EvictBatch, w.evicted)
	w.lights = light.NewEngine(w, 0)
	w.cond = sync.NewCond(&w.mu)
	return w
}

// evicted persists a chunk on its way out of the cache and forgets any
// pending work for it.
func (w *World) evicted(c *store.Chunk) {
	w.pending.Remove(c.Coord)
	if w.db == nil {
		return
	}
	if err := w.db.Save(c.Export()); err != nil {
		w.logf("evict save chunk (%d,%d): %v", c.Coord.X, c.Coord.Z, err)
	}
}

// loadOrCreateChunk resolves a chunk coordinate to a cached chunk, loading
// it from the chunk store or creating it fresh. Negative coordinates yield
// nil.
func (w *World) loadOrCreateChunk(cx, cz int) *store.Chunk {
	return w.cache.LoadOrCreate(store.Coord{X: cx, Z: cz}, func(coord store.Coord) *store.Chunk {
		if w.db != nil {
			if d, ok, err := w.db.Load(coord.X, coord.Z); err != nil {
				w.logf("load chunk (%d,%d): %v", coord.X, coord.Z, err)
			} else if ok {
				return store.Restore(d)
			}
		}
		return store.NewChunk(coord)
	})
}

// SetPlayerPosition moves the focus the visible window and the eviction
// ordering follow.
func (w *World) SetPlayerPosition(p mgl32.Vec3) {
	w.mu.Lock()
	w.playerPos = p
	w.mu.Unlock()
	w.cache.SetFocus(p)
}

func (w *World) PlayerPosition() mgl32.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.playerPos
}

func (w *World) ID() string          { return w.cfg.ID }
func (w *World) Seed() int64         { return w.cfg.Seed }
func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) logf(format string, args ...any) {
	if w.log != nil {
		w.log.Printf(format, args...)
	}
}

func (w *World) String() string {
	m := w.Metrics()
	return fmt.Sprintf("world %s (cache: %d, pending: %d, visible: %d, hour: %dh, ud: %.2fms, seed: %d)",
		w.cfg.ID, m.CachedChunks, m.PendingUpdates, m.VisibleChunks, m.Hour, m.UpdateMS, w.cfg.Seed)
}
