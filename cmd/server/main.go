package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"terravox/internal/persistence/chunkdb"
	"terravox/internal/sim/tuning"
	"terravox/internal/sim/world"
	"terravox/internal/sim/world/terrain/store"
	"terravox/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		spawnX     = flag.Float64("spawn_x", 256, "initial player x")
		spawnZ     = flag.Float64("spawn_z", 256, "initial player z")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	db, err := chunkdb.Open(filepath.Join(worldDir, "chunks.db"))
	if err != nil {
		logger.Fatalf("open chunk db: %v", err)
	}

	w := world.New(world.WorldConfig{
		ID:                 *worldID,
		Seed:               *seed,
		ViewDistance:       tune.ViewDistance,
		CacheCapacity:      tune.CacheCapacity,
		EvictBatch:         tune.EvictBatch,
		MaxLight:           uint8(tune.MaxLight),
		HourEvery:          time.Duration(tune.HourEveryMs) * time.Millisecond,
		WindowRefreshEvery: time.Duration(tune.WindowRefreshMs) * time.Millisecond,
		UpdateInterval:     time.Duration(tune.UpdateSleepMs) * time.Millisecond,
	}, db, logger)

	spawnY := float32(store.Height)/2 + 1
	w.SetPlayerPosition(mgl32.Vec3{float32(*spawnX), spawnY, float32(*spawnZ)})
	w.Start()

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := w.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP terravox_world_hour Current world clock hour (0..23).\n")
		fmt.Fprintf(rw, "# TYPE terravox_world_hour gauge\n")
		fmt.Fprintf(rw, "terravox_world_hour{world=%q} %d\n", *worldID, m.Hour)

		fmt.Fprintf(rw, "# HELP terravox_world_daylight Current daylight intensity.\n")
		fmt.Fprintf(rw, "# TYPE terravox_world_daylight gauge\n")
		fmt.Fprintf(rw, "terravox_world_daylight{world=%q} %d\n", *worldID, m.Daylight)

		fmt.Fprintf(rw, "# HELP terravox_world_cached_chunks Chunks held in the cache.\n")
		fmt.Fprintf(rw, "# TYPE terravox_world_cached_chunks gauge\n")
		fmt.Fprintf(rw, "terravox_world_cached_chunks{world=%q} %d\n", *worldID, m.CachedChunks)

		fmt.Fprintf(rw, "# HELP terravox_world_visible_chunks Chunks inside the view window.\n")
		fmt.Fprintf(rw, "# TYPE terravox_world_visible_chunks gauge\n")
		fmt.Fprintf(rw, "terravox_world_visible_chunks{world=%q} %d\n", *worldID, m.VisibleChunks)

		fmt.Fprintf(rw, "# HELP terravox_world_queue_depth Work queue backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE terravox_world_queue_depth gauge\n")
		fmt.Fprintf(rw, "terravox_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "pending", m.PendingUpdates)
		fmt.Fprintf(rw, "terravox_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "regen", m.RegenQueue)

		fmt.Fprintf(rw, "# HELP terravox_world_generated_chunks_total Chunk updates processed since start.\n")
		fmt.Fprintf(rw, "# TYPE terravox_world_generated_chunks_total counter\n")
		fmt.Fprintf(rw, "terravox_world_generated_chunks_total{world=%q} %d\n", *worldID, m.GeneratedChunks)

		fmt.Fprintf(rw, "# HELP terravox_world_update_ms Smoothed chunk update duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE terravox_world_update_ms gauge\n")
		fmt.Fprintf(rw, "terravox_world_update_ms{world=%q} %.3f\n", *worldID, m.UpdateMS)
	})

	if envBool("TV_ENABLE_ADMIN_HTTP", true) {
		// Local-only admin endpoint.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				WorldID string             `json:"world_id"`
				Metrics world.WorldMetrics `json:"metrics"`
			}{
				WorldID: *worldID,
				Metrics: w.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
	} else {
		logger.Printf("admin endpoints disabled (TV_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("TV_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	obsSrv := observer.NewServer(w, time.Duration(tune.ObserverStateMs)*time.Millisecond, logger)
	mux.HandleFunc("/v1/observer", obsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("world=%s seed=%d listening on %s", *worldID, *seed, *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Flush the cache to disk before the process exits.
	w.Close()
	if err := db.Close(); err != nil {
		logger.Printf("close chunk db: %v", err)
	}
	logger.Printf("shutdown complete")
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
