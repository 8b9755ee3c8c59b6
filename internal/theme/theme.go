// Package theme defines the named mix themes and the processing profile each
// one applies: filter corners, EQ bands, dynamics, reverb and the transition
// style used between segments.
package theme

import "strings"

// Key identifies one of the built-in themes. The set is closed; unknown
// names resolve to BestOf rather than failing, so a mix can always be
// produced.
type Key int

const (
	BestOf Key = iota
	MediaMeltdown
	ConspiracyCorner
	DonationNation
	MusicalMayhem
)

// Keys lists every theme in declaration order.
func Keys() []Key {
	return []Key{BestOf, MediaMeltdown, ConspiracyCorner, DonationNation, MusicalMayhem}
}

func (k Key) String() string {
	switch k {
	case BestOf:
		return "Best Of"
	case MediaMeltdown:
		return "Media Meltdown"
	case ConspiracyCorner:
		return "Conspiracy Corner"
	case DonationNation:
		return "Donation Nation"
	case MusicalMayhem:
		return "Musical Mayhem"
	default:
		return "Best Of"
	}
}

// Slug returns the filesystem- and config-safe form of the theme name.
func (k Key) Slug() string {
	return strings.ReplaceAll(strings.ToLower(k.String()), " ", "-")
}

// ParseKey resolves a theme name or slug, case-insensitively. Anything
// unrecognized resolves to BestOf.
func ParseKey(s string) Key {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	norm = strings.ReplaceAll(norm, " ", "-")
	for _, k := range Keys() {
		if norm == k.Slug() {
			return k
		}
	}
	return BestOf
}

// TransitionKind selects how consecutive segments are joined in the mix.
type TransitionKind int

const (
	Crossfade TransitionKind = iota
	HardCut
	Fade
	Overlap
)

func (t TransitionKind) String() string {
	switch t {
	case Crossfade:
		return "crossfade"
	case HardCut:
		return "hard_cut"
	case Fade:
		return "fade"
	case Overlap:
		return "overlap"
	default:
		return "crossfade"
	}
}

// ParseTransition resolves a transition name. Unknown names resolve to
// Crossfade, the safest join.
func ParseTransition(s string) TransitionKind {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "hard_cut", "hardcut", "cut":
		return HardCut
	case "fade":
		return Fade
	case "overlap":
		return Overlap
	default:
		return Crossfade
	}
}

// Transition pairs a join style with its duration. Millis is ignored for
// HardCut.
type Transition struct {
	Kind   TransitionKind
	Millis int
}

// EQBand is one peaking-EQ stage.
type EQBand struct {
	FrequencyHz float64
	GainDB      float64
	Q           float64
}

// CompressorParams configures the downward compressor stage.
type CompressorParams struct {
	ThresholdDB float64
	Ratio       float64
	AttackMS    float64
	ReleaseMS   float64
}

// ReverbParams configures the reverb stage. A nil ReverbParams on a Profile
// means the theme runs dry.
type ReverbParams struct {
	RoomSize float64 // 0..1
	Damping  float64 // 0..1
	WetLevel float64 // 0..1
}

// LimiterParams configures the output limiter stage.
type LimiterParams struct {
	ThresholdDB float64
	ReleaseMS   float64
}

// Profile is the complete processing recipe for a theme. Profiles returned
// by Lookup are copies; callers may adjust them without affecting the
// built-in table.
type Profile struct {
	Key        Key
	HighpassHz float64
	LowpassHz  float64 // 0 disables the lowpass stage
	Bands      []EQBand
	Compressor CompressorParams
	Reverb     *ReverbParams
	GainDB     float64
	Limiter    LimiterParams
	Transition Transition
}

// builtin holds the tuned per-theme recipes. The numbers are voiced per
// theme: Best Of is a gentle broadcast polish, Media Meltdown is aggressive
// and dry, Conspiracy Corner is dark and roomy, Donation Nation is bright
// and warm, Musical Mayhem is punchy with the fastest attack.
var builtin = map[Key]Profile{
	BestOf: {
		Key:        BestOf,
		HighpassHz: 80,
		Bands: []EQBand{
			{FrequencyHz: 200, GainDB: 2, Q: 0.7},
			{FrequencyHz: 3000, GainDB: 1.5, Q: 1.2},
		},
		Compressor: CompressorParams{ThresholdDB: -18, Ratio: 3, AttackMS: 5, ReleaseMS: 100},
		Reverb:     &ReverbParams{RoomSize: 0.2, Damping: 0.5, WetLevel: 0.1},
		Limiter:    LimiterParams{ThresholdDB: -0.5, ReleaseMS: 50},
		Transition: Transition{Kind: Crossfade, Millis: 1000},
	},
	MediaMeltdown: {
		Key:        MediaMeltdown,
		HighpassHz: 100,
		Bands: []EQBand{
			{FrequencyHz: 800, GainDB: -2, Q: 1.5},
			{FrequencyHz: 4000, GainDB: 3, Q: 1.8},
		},
		Compressor: CompressorParams{ThresholdDB: -14, Ratio: 4, AttackMS: 2, ReleaseMS: 50},
		GainDB:     2,
		Limiter:    LimiterParams{ThresholdDB: -0.1, ReleaseMS: 25},
		Transition: Transition{Kind: HardCut},
	},
	ConspiracyCorner: {
		Key:        ConspiracyCorner,
		HighpassHz: 60,
		LowpassHz:  8000,
		Bands: []EQBand{
			{FrequencyHz: 120, GainDB: 1.5, Q: 0.8},
			{FrequencyHz: 2500, GainDB: -1, Q: 1.0},
		},
		Compressor: CompressorParams{ThresholdDB: -20, Ratio: 2.5, AttackMS: 10, ReleaseMS: 200},
		Reverb:     &ReverbParams{RoomSize: 0.4, Damping: 0.8, WetLevel: 0.15},
		Limiter:    LimiterParams{ThresholdDB: -1.0, ReleaseMS: 100},
		Transition: Transition{Kind: Fade, Millis: 800},
	},
	DonationNation: {
		Key:        DonationNation,
		HighpassHz: 85,
		Bands: []EQBand{
			{FrequencyHz: 150, GainDB: 2.5, Q: 0.6},
			{FrequencyHz: 3500, GainDB: 2.8, Q: 1.1},
			{FrequencyHz: 8000, GainDB: 1.2, Q: 0.9},
		},
		Compressor: CompressorParams{ThresholdDB: -16, Ratio: 2.8, AttackMS: 3, ReleaseMS: 80},
		Reverb:     &ReverbParams{RoomSize: 0.25, Damping: 0.4, WetLevel: 0.12},
		Limiter:    LimiterParams{ThresholdDB: -0.3, ReleaseMS: 40},
		Transition: Transition{Kind: Crossfade, Millis: 750},
	},
	MusicalMayhem: {
		Key:        MusicalMayhem,
		HighpassHz: 90,
		Bands: []EQBand{
			{FrequencyHz: 100, GainDB: 1.8, Q: 0.9},
			{FrequencyHz: 1200, GainDB: -0.5, Q: 1.2},
			{FrequencyHz: 5000, GainDB: 2.2, Q: 1.5},
		},
		Compressor: CompressorParams{ThresholdDB: -15, Ratio: 3.5, AttackMS: 1, ReleaseMS: 60},
		Reverb:     &ReverbParams{RoomSize: 0.35, Damping: 0.3, WetLevel: 0.18},
		Limiter:    LimiterParams{ThresholdDB: -0.2, ReleaseMS: 30},
		Transition: Transition{Kind: Overlap, Millis: 500},
	},
}

// Lookup returns a copy of the built-in profile for the key.
func Lookup(k Key) Profile {
	p, ok := builtin[k]
	if !ok {
		p = builtin[BestOf]
	}
	// Deep-copy the mutable parts so callers can't poison the table.
	bands := make([]EQBand, len(p.Bands))
	copy(bands, p.Bands)
	p.Bands = bands
	if p.Reverb != nil {
		rv := *p.Reverb
		p.Reverb = &rv
	}
	return p
}

// Mastering returns the final-bus profile applied to the assembled mix
// after every segment transition is in place. It is not a selectable theme.
func Mastering() Profile {
	return Profile{
		Bands: []EQBand{
			{FrequencyHz: 30, GainDB: -6, Q: 0.7},
			{FrequencyHz: 10000, GainDB: 1, Q: 0.8},
		},
		Compressor: CompressorParams{ThresholdDB: -8, Ratio: 2, AttackMS: 10, ReleaseMS: 100},
		Limiter:    LimiterParams{ThresholdDB: -0.1, ReleaseMS: 50},
	}
}
