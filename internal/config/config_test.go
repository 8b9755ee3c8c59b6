package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetCount != DefaultTargetCount {
		t.Errorf("TargetCount = %d, want %d", cfg.TargetCount, DefaultTargetCount)
	}
	if cfg.MinDuration != DefaultMinDuration || cfg.MaxDuration != DefaultMaxDuration {
		t.Errorf("durations = %.1f/%.1f, want %.1f/%.1f",
			cfg.MinDuration, cfg.MaxDuration, DefaultMinDuration, DefaultMaxDuration)
	}
	if cfg.SegmentTimeout != DefaultSegmentTimeout {
		t.Errorf("SegmentTimeout = %d, want %d", cfg.SegmentTimeout, DefaultSegmentTimeout)
	}
	if cfg.Hum != "auto" {
		t.Errorf("Hum = %q, want auto", cfg.Hum)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetCount != DefaultTargetCount {
		t.Errorf("TargetCount = %d, want %d", cfg.TargetCount, DefaultTargetCount)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixdown.toml")
	body := `
theme = "media-meltdown"
target_segment_count = 8
min_segment_duration = 6.0
max_segment_duration = 20.0
target_duration = 120.0
workers = 2
hum = "60"
metrics_addr = ":9091"

[themes.media-meltdown]
gain_db = 1.0
transition = "fade"
transition_ms = 400
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "media-meltdown" {
		t.Errorf("Theme = %q", cfg.Theme)
	}
	if cfg.TargetCount != 8 || cfg.MinDuration != 6.0 || cfg.MaxDuration != 20.0 {
		t.Errorf("selection params = %d/%.1f/%.1f", cfg.TargetCount, cfg.MinDuration, cfg.MaxDuration)
	}
	if cfg.TargetDuration != 120.0 || cfg.Workers != 2 {
		t.Errorf("budget/workers = %.1f/%d", cfg.TargetDuration, cfg.Workers)
	}
	if cfg.Hum != "60" || cfg.MetricsAddr != ":9091" {
		t.Errorf("hum/metrics = %q/%q", cfg.Hum, cfg.MetricsAddr)
	}
	ov, ok := cfg.Themes["media-meltdown"]
	if !ok {
		t.Fatal("missing media-meltdown override")
	}
	if ov.GainDB == nil || *ov.GainDB != 1.0 {
		t.Errorf("GainDB override = %v", ov.GainDB)
	}
	if ov.Transition == nil || *ov.Transition != "fade" {
		t.Errorf("Transition override = %v", ov.Transition)
	}
	// Defaults still fill what the file omits.
	if cfg.SegmentTimeout != DefaultSegmentTimeout {
		t.Errorf("SegmentTimeout = %d, want default", cfg.SegmentTimeout)
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("theme = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"min over max", func(c *Config) { c.MinDuration = 40 }, true},
		{"negative budget", func(c *Config) { c.TargetDuration = -1 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"bad hum", func(c *Config) { c.Hum = "400" }, true},
		{"hum off", func(c *Config) { c.Hum = "off" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
