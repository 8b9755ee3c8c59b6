package theme

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ProfileOverride is a partial adjustment to a built-in profile, loaded from
// the run configuration. Nil fields leave the built-in value untouched.
type ProfileOverride struct {
	HighpassHz   *float64 `toml:"highpass_hz"`
	LowpassHz    *float64 `toml:"lowpass_hz"`
	GainDB       *float64 `toml:"gain_db"`
	ReverbWet    *float64 `toml:"reverb_wet"`
	LimiterDB    *float64 `toml:"limiter_threshold_db"`
	Transition   *string  `toml:"transition"`
	TransitionMS *int     `toml:"transition_ms"`
}

// Overrides maps theme slugs to their adjustments.
type Overrides struct {
	Themes map[string]ProfileOverride `toml:"themes"`
}

// LoadOverrides reads a TOML override file. A missing file is not an error;
// it simply means no overrides.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Overrides{}, nil
		}
		return nil, fmt.Errorf("reading theme overrides: %w", err)
	}
	var ov Overrides
	if err := toml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parsing theme overrides %s: %w", path, err)
	}
	return &ov, nil
}

// Apply returns the profile for k with any configured overrides folded in.
func (ov *Overrides) Apply(k Key) Profile {
	p := Lookup(k)
	if ov == nil || ov.Themes == nil {
		return p
	}
	o, ok := ov.Themes[k.Slug()]
	if !ok {
		return p
	}
	if o.HighpassHz != nil {
		p.HighpassHz = *o.HighpassHz
	}
	if o.LowpassHz != nil {
		p.LowpassHz = *o.LowpassHz
	}
	if o.GainDB != nil {
		p.GainDB = *o.GainDB
	}
	if o.ReverbWet != nil && p.Reverb != nil {
		p.Reverb.WetLevel = *o.ReverbWet
	}
	if o.LimiterDB != nil {
		p.Limiter.ThresholdDB = *o.LimiterDB
	}
	if o.Transition != nil {
		p.Transition.Kind = ParseTransition(*o.Transition)
	}
	if o.TransitionMS != nil {
		p.Transition.Millis = *o.TransitionMS
	}
	return p
}
