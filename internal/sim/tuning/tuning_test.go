package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.ViewDistance != 16 || d.CacheCapacity != 1024 || d.EvictBatch != 32 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if d.MaxLight != 16 || d.HourEveryMs != 30000 || d.UpdateSleepMs != 15 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}

func TestLoad_OverridesSubsetKeepsRest(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(p, []byte("view_distance: 8\nhour_every_ms: 500\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tune, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.ViewDistance != 8 {
		t.Fatalf("view_distance = %d, want 8", tune.ViewDistance)
	}
	if tune.HourEveryMs != 500 {
		t.Fatalf("hour_every_ms = %d, want 500", tune.HourEveryMs)
	}
	// Unset keys keep their defaults.
	if tune.CacheCapacity != 1024 || tune.EvictBatch != 32 {
		t.Fatalf("defaults lost: %+v", tune)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("want not-exist error, got %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("view_distance: [nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("want parse error")
	}
}
