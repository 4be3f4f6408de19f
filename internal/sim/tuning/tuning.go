package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ViewDistance  int `yaml:"view_distance"`
	CacheCapacity int `yaml:"cache_capacity"`
	EvictBatch    int `yaml:"evict_batch"`
	MaxLight      int `yaml:"max_light"`

	HourEveryMs     int `yaml:"hour_every_ms"`
	WindowRefreshMs int `yaml:"window_refresh_ms"`
	UpdateSleepMs   int `yaml:"update_sleep_ms"`

	ObserverStateMs int `yaml:"observer_state_ms"`
}

func Defaults() Tuning {
	return Tuning{
		ViewDistance:    16,
		CacheCapacity:   1024,
		EvictBatch:      32,
		MaxLight:        16,
		HourEveryMs:     30000,
		WindowRefreshMs: 1000,
		UpdateSleepMs:   15,
		ObserverStateMs: 1000,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
