// Package chunkdb stores chunk block and light volumes in a SQLite
// database, one row per chunk column, with zstd-compressed blobs.
package chunkdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"terravox/internal/sim/world/terrain/store"
)

type Store struct {
	db *sql.DB

	enc *zstd.Encoder
	dec *zstd.Decoder
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, enc: enc, dec: dec}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL keeps chunk save bursts (eviction, shutdown) from blocking reads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		cx INTEGER NOT NULL,
		cz INTEGER NOT NULL,
		blocks BLOB NOT NULL,
		light BLOB NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (cx, cz)
	);`)
	return err
}

func (s *Store) Save(d store.ChunkData) error {
	blocks := s.enc.EncodeAll(d.Blocks, nil)
	light := s.enc.EncodeAll(d.Light, nil)
	_, err := s.db.Exec(
		`INSERT INTO chunks (cx, cz, blocks, light, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cx, cz) DO UPDATE SET
		   blocks = excluded.blocks,
		   light = excluded.light,
		   updated_at = excluded.updated_at;`,
		d.CX, d.CZ, blocks, light, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save chunk (%d,%d): %w", d.CX, d.CZ, err)
	}
	return nil
}

func (s *Store) Load(cx, cz int) (store.ChunkData, bool, error) {
	var blocks, light []byte
	err := s.db.QueryRow(
		`SELECT blocks, light FROM chunks WHERE cx = ? AND cz = ?;`, cx, cz,
	).Scan(&blocks, &light)
	if err == sql.ErrNoRows {
		return store.ChunkData{}, false, nil
	}
	if err != nil {
		return store.ChunkData{}, false, fmt.Errorf("load chunk (%d,%d): %w", cx, cz, err)
	}

	d := store.ChunkData{CX: cx, CZ: cz}
	if d.Blocks, err = s.dec.DecodeAll(blocks, nil); err != nil {
		return store.ChunkData{}, false, fmt.Errorf("decode chunk (%d,%d) blocks: %w", cx, cz, err)
	}
	if d.Light, err = s.dec.DecodeAll(light, nil); err != nil {
		return store.ChunkData{}, false, fmt.Errorf("decode chunk (%d,%d) light: %w", cx, cz, err)
	}
	if len(d.Blocks) != store.BlocksPerChunk || len(d.Light) != store.BlocksPerChunk {
		return store.ChunkData{}, false, fmt.Errorf("chunk (%d,%d): bad volume size %d/%d", cx, cz, len(d.Blocks), len(d.Light))
	}
	return d, true, nil
}

// Count reports how many chunk columns have been persisted.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}
