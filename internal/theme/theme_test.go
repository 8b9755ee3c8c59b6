package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"best-of", BestOf},
		{"Best Of", BestOf},
		{"MEDIA_MELTDOWN", MediaMeltdown},
		{"conspiracy-corner", ConspiracyCorner},
		{"Donation Nation", DonationNation},
		{"musical-mayhem", MusicalMayhem},
		{"", BestOf},
		{"no such theme", BestOf},
	}
	for _, tt := range tests {
		if got := ParseKey(tt.in); got != tt.want {
			t.Errorf("ParseKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSlugRoundTrip(t *testing.T) {
	for _, k := range Keys() {
		if got := ParseKey(k.Slug()); got != k {
			t.Errorf("ParseKey(%q) = %v, want %v", k.Slug(), got, k)
		}
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	a := Lookup(BestOf)
	a.Bands[0].GainDB = 99
	a.Reverb.WetLevel = 99

	b := Lookup(BestOf)
	if b.Bands[0].GainDB == 99 {
		t.Error("mutating a looked-up profile changed the built-in EQ table")
	}
	if b.Reverb.WetLevel == 99 {
		t.Error("mutating a looked-up profile changed the built-in reverb")
	}
}

func TestProfileShapes(t *testing.T) {
	for _, k := range Keys() {
		p := Lookup(k)
		if p.HighpassHz <= 0 {
			t.Errorf("%v: highpass corner missing", k)
		}
		if len(p.Bands) < 2 {
			t.Errorf("%v: expected at least two EQ bands, got %d", k, len(p.Bands))
		}
		if p.Compressor.Ratio <= 1 {
			t.Errorf("%v: compressor ratio %.1f is not compressing", k, p.Compressor.Ratio)
		}
		if p.Limiter.ThresholdDB >= 0 {
			t.Errorf("%v: limiter threshold %.1f dB must sit below full scale", k, p.Limiter.ThresholdDB)
		}
	}
	if Lookup(MediaMeltdown).Reverb != nil {
		t.Error("Media Meltdown should run dry")
	}
	if Lookup(ConspiracyCorner).LowpassHz != 8000 {
		t.Error("Conspiracy Corner should carry its 8 kHz lowpass")
	}
}

func TestParseTransition(t *testing.T) {
	tests := []struct {
		in   string
		want TransitionKind
	}{
		{"crossfade", Crossfade},
		{"hard_cut", HardCut},
		{"hard-cut", HardCut},
		{"cut", HardCut},
		{"fade", Fade},
		{"overlap", Overlap},
		{"garbage", Crossfade},
	}
	for _, tt := range tests {
		if got := ParseTransition(tt.in); got != tt.want {
			t.Errorf("ParseTransition(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "themes.toml")
	doc := `
[themes.best-of]
gain_db = 1.5
transition = "hard_cut"

[themes.conspiracy-corner]
lowpass_hz = 6000.0
reverb_wet = 0.3
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	ov, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("LoadOverrides: %v", err)
	}

	best := ov.Apply(BestOf)
	if best.GainDB != 1.5 {
		t.Errorf("gain override not applied: got %.1f", best.GainDB)
	}
	if best.Transition.Kind != HardCut {
		t.Errorf("transition override not applied: got %v", best.Transition.Kind)
	}

	cc := ov.Apply(ConspiracyCorner)
	if cc.LowpassHz != 6000 {
		t.Errorf("lowpass override not applied: got %.0f", cc.LowpassHz)
	}
	if cc.Reverb == nil || cc.Reverb.WetLevel != 0.3 {
		t.Errorf("reverb wet override not applied: got %+v", cc.Reverb)
	}

	// Untouched themes keep their built-in values.
	mm := ov.Apply(MediaMeltdown)
	if mm.GainDB != Lookup(MediaMeltdown).GainDB {
		t.Error("unrelated theme was modified by overrides")
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	ov, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if got := ov.Apply(BestOf); got.GainDB != Lookup(BestOf).GainDB {
		t.Error("empty overrides changed a profile")
	}
}

func TestLoadOverridesBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[themes\n???"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOverrides(path); err == nil {
		t.Error("malformed TOML should fail to load")
	}
}
