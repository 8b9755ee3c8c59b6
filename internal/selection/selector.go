// Package selection turns feature series into ranked, spaced candidate
// segments for the mix, with onset and distributed fallbacks.
package selection

import (
	"fmt"
	"math"
	"sort"

	"github.com/clipforge/mixdown/internal/analysis"
)

// Method identifies which selection strategy produced a candidate.
type Method int

const (
	EnergyBased Method = iota
	OnsetBased
	Distributed
)

func (m Method) String() string {
	switch m {
	case EnergyBased:
		return "energy"
	case OnsetBased:
		return "onset"
	case Distributed:
		return "distributed"
	default:
		return "unknown"
	}
}

// Selection tuning constants.
const (
	// energyPercentile marks the top quarter of frames as high energy.
	energyPercentile = 75.0

	// runSplitGap breaks a high-energy run when consecutive qualifying
	// frames are further apart than this.
	runSplitGap = 2.0 // seconds

	// onsetConfidence and distributedConfidence are the fixed confidence
	// levels of the fallback strategies.
	onsetConfidence       = 0.7
	distributedConfidence = 0.5
)

// Candidate is one proposed time range of source audio. The list emitted by
// Select is immutable after selection and always chronologically sorted.
type Candidate struct {
	StartTime  float64 // seconds
	Duration   float64 // seconds
	Score      float64 // raw ranking score (mean RMS energy for EnergyBased)
	Confidence float64 // in [0, 1]
	Method     Method
}

// EndTime returns the exclusive end of the candidate range.
func (c Candidate) EndTime() float64 { return c.StartTime + c.Duration }

// Params configures selection. Zero values take the documented defaults.
type Params struct {
	TargetCount int     // default 5
	MinDuration float64 // seconds, default 10
	MaxDuration float64 // seconds, default 30
}

// Default selection parameters.
const (
	DefaultTargetCount = 5
	DefaultMinDuration = 10.0
	DefaultMaxDuration = 30.0
)

func (p Params) withDefaults() Params {
	if p.TargetCount <= 0 {
		p.TargetCount = DefaultTargetCount
	}
	if p.MinDuration <= 0 {
		p.MinDuration = DefaultMinDuration
	}
	if p.MaxDuration <= 0 {
		p.MaxDuration = DefaultMaxDuration
	}
	return p
}

// Validate rejects parameter combinations that cannot produce segments.
func (p Params) Validate() error {
	p = p.withDefaults()
	if p.MinDuration > p.MaxDuration {
		return fmt.Errorf("min duration %.1fs exceeds max duration %.1fs", p.MinDuration, p.MaxDuration)
	}
	return nil
}

// Select converts a feature series into at most TargetCount candidates, in
// chronological order. The energy-based path is preferred; when it cannot
// fill the request the selector falls back to onset anchors and finally to
// evenly distributed placement. Pass nil features (analysis failed) to go
// straight to the distributed path.
//
// Selection is fully deterministic: identical input always yields an
// identical candidate list.
func Select(feats *analysis.Features, sourceDuration float64, params Params) []Candidate {
	p := params.withDefaults()

	if feats != nil {
		if cands := selectByEnergy(feats, sourceDuration, p); len(cands) >= p.TargetCount {
			return cands
		}
		if cands := selectByOnsets(feats, sourceDuration, p); len(cands) >= p.TargetCount {
			return cands
		}
	}
	return selectDistributed(sourceDuration, p)
}

// selectByEnergy implements the preferred path: threshold at the 75th energy
// percentile, group qualifying frames into runs split on gaps over 2s, keep
// runs inside the duration bounds, rank by mean energy, and greedily pick
// spaced winners.
func selectByEnergy(feats *analysis.Features, sourceDuration float64, p Params) []Candidate {
	energies := feats.EnergySeries()
	if len(energies) == 0 {
		return nil
	}
	threshold := percentile(energies, energyPercentile)

	type run struct {
		start, end float64
		energySum  float64
		frames     int
	}
	var runs []run
	var cur *run
	for _, fr := range feats.Frames {
		if fr.RMSEnergy <= threshold {
			continue
		}
		if cur == nil || fr.TimeOffset-cur.end > runSplitGap {
			runs = append(runs, run{start: fr.TimeOffset, end: fr.TimeOffset})
			cur = &runs[len(runs)-1]
		}
		cur.end = fr.TimeOffset
		cur.energySum += fr.RMSEnergy
		cur.frames++
	}

	// Keep runs inside the duration bounds, clip the tail to the source.
	type scored struct {
		start, duration, meanEnergy float64
	}
	var usable []scored
	for _, r := range runs {
		dur := r.end - r.start
		if dur < p.MinDuration || dur > p.MaxDuration {
			continue
		}
		if r.start+dur > sourceDuration {
			dur = sourceDuration - r.start
			if dur < p.MinDuration {
				continue
			}
		}
		usable = append(usable, scored{start: r.start, duration: dur, meanEnergy: r.energySum / float64(r.frames)})
	}
	if len(usable) == 0 {
		return nil
	}

	// Rank by mean energy, breaking ties by start time so selection stays
	// deterministic.
	sort.Slice(usable, func(i, j int) bool {
		if usable[i].meanEnergy != usable[j].meanEnergy {
			return usable[i].meanEnergy > usable[j].meanEnergy
		}
		return usable[i].start < usable[j].start
	})

	maxEnergy := usable[0].meanEnergy
	var selected []Candidate
	for _, s := range usable {
		if len(selected) >= p.TargetCount {
			break
		}
		tooClose := false
		for _, prev := range selected {
			if math.Abs(s.start-prev.StartTime) < p.MinDuration {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		confidence := 1.0
		if maxEnergy > 0 {
			confidence = s.meanEnergy / maxEnergy
		}
		selected = append(selected, Candidate{
			StartTime:  s.start,
			Duration:   s.duration,
			Score:      s.meanEnergy,
			Confidence: confidence,
			Method:     EnergyBased,
		})
	}

	// Segments are always emitted chronologically, regardless of the order
	// they were picked in.
	sort.Slice(selected, func(i, j int) bool { return selected[i].StartTime < selected[j].StartTime })
	return selected
}

// selectByOnsets places evenly spaced anchors and snaps each to the nearest
// detected onset. Used when energy selection cannot fill the request but the
// material still has usable transient structure.
func selectByOnsets(feats *analysis.Features, sourceDuration float64, p Params) []Candidate {
	if len(feats.Onsets) == 0 || sourceDuration < p.MinDuration {
		return nil
	}

	stride := sourceDuration / float64(p.TargetCount)
	var selected []Candidate
	for i := 0; i < p.TargetCount; i++ {
		anchor := float64(i) * stride
		start := nearestOnset(feats.Onsets, anchor)
		if start+p.MinDuration > sourceDuration {
			start = sourceDuration - p.MinDuration
		}
		if start < 0 {
			start = 0
		}
		// Skip near-duplicate snaps; adjacent anchors can resolve to the
		// same onset in sparse material.
		dup := false
		for _, prev := range selected {
			if math.Abs(start-prev.StartTime) < p.MinDuration {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		selected = append(selected, Candidate{
			StartTime:  start,
			Duration:   p.MinDuration,
			Score:      onsetConfidence,
			Confidence: onsetConfidence,
			Method:     OnsetBased,
		})
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].StartTime < selected[j].StartTime })
	return selected
}

// selectDistributed is the last-resort path: divide the source into
// TargetCount+1 equal gaps and center one MinDuration segment on each
// interior boundary, clamped into bounds.
func selectDistributed(sourceDuration float64, p Params) []Candidate {
	if sourceDuration < p.MinDuration {
		return nil
	}

	gap := sourceDuration / float64(p.TargetCount+1)
	var selected []Candidate
	for i := 1; i <= p.TargetCount; i++ {
		start := float64(i)*gap - p.MinDuration/2
		if start < 0 {
			start = 0
		}
		if start+p.MinDuration > sourceDuration {
			start = sourceDuration - p.MinDuration
		}
		selected = append(selected, Candidate{
			StartTime:  start,
			Duration:   p.MinDuration,
			Score:      distributedConfidence,
			Confidence: distributedConfidence,
			Method:     Distributed,
		})
	}
	return selected
}

func nearestOnset(onsets []float64, anchor float64) float64 {
	best := onsets[0]
	for _, o := range onsets[1:] {
		if math.Abs(o-anchor) < math.Abs(best-anchor) {
			best = o
		}
	}
	return best
}

// percentile computes the pth percentile with linear interpolation between
// ranks, matching the usual numeric-library definition.
func percentile(values []float64, pct float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := pct / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
