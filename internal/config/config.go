// Package config loads run parameters from an optional TOML file and applies
// the documented defaults.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/clipforge/mixdown/internal/theme"
)

// Default run parameters.
const (
	DefaultTargetCount    = 5
	DefaultMinDuration    = 10.0
	DefaultMaxDuration    = 30.0
	DefaultSegmentTimeout = 30 // seconds
)

// Config holds every tunable of a mix run. Zero values are replaced by the
// defaults in ApplyDefaults.
type Config struct {
	Theme          string  `toml:"theme"`
	TargetCount    int     `toml:"target_segment_count"`
	MinDuration    float64 `toml:"min_segment_duration"`
	MaxDuration    float64 `toml:"max_segment_duration"`
	TargetDuration float64 `toml:"target_duration"` // 0 means unlimited
	Workers        int     `toml:"workers"`
	SegmentTimeout int     `toml:"segment_timeout_seconds"`

	// Hum controls the mains notch: "auto", "off", "50" or "60".
	Hum string `toml:"hum"`

	// MetricsAddr, when set, serves Prometheus metrics (e.g. ":9091").
	MetricsAddr string `toml:"metrics_addr"`

	Themes map[string]theme.ProfileOverride `toml:"themes"`
}

// Load reads a TOML config. An empty path or missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.TargetCount <= 0 {
		c.TargetCount = DefaultTargetCount
	}
	if c.MinDuration <= 0 {
		c.MinDuration = DefaultMinDuration
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = DefaultMaxDuration
	}
	if c.SegmentTimeout <= 0 {
		c.SegmentTimeout = DefaultSegmentTimeout
	}
	if c.Hum == "" {
		c.Hum = "auto"
	}
}

// Validate rejects parameter combinations that cannot produce a mix.
func (c *Config) Validate() error {
	if c.MinDuration > c.MaxDuration {
		return fmt.Errorf("min_segment_duration %.1fs exceeds max_segment_duration %.1fs",
			c.MinDuration, c.MaxDuration)
	}
	if c.TargetDuration < 0 {
		return fmt.Errorf("target_duration must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	switch c.Hum {
	case "auto", "off", "none", "disabled", "50", "60":
	default:
		return fmt.Errorf("hum must be auto, off, 50 or 60, got %q", c.Hum)
	}
	return nil
}

// Overrides adapts the config's theme table for the theme package.
func (c *Config) Overrides() *theme.Overrides {
	return &theme.Overrides{Themes: c.Themes}
}
