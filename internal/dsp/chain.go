package dsp

import (
	"fmt"

	"github.com/clipforge/mixdown/internal/audio"
	"github.com/clipforge/mixdown/internal/theme"
)

// Chain is an ordered list of stages applied in place to one buffer.
// Chains carry filter state, so build a fresh Chain per segment when
// processing in parallel.
type Chain struct {
	stages []Stage
}

// NewChain composes stages in order.
func NewChain(stages ...Stage) *Chain { return &Chain{stages: stages} }

// humNotchQ keeps the mains notch narrow enough to leave voice untouched.
const humNotchQ = 30.0

// FromProfile builds the processing chain a theme prescribes. Stage order
// is fixed: hum notch, highpass, lowpass, EQ bands, compressor, reverb,
// static gain, limiter. humHz of 0 skips the notch; it is taken from the
// local mains frequency when hum removal is enabled.
func FromProfile(p theme.Profile, humHz float64) *Chain {
	var stages []Stage
	if humHz > 0 {
		stages = append(stages, Notch(humHz, humNotchQ))
	}
	if p.HighpassHz > 0 {
		stages = append(stages, Highpass(p.HighpassHz))
	}
	if p.LowpassHz > 0 {
		stages = append(stages, Lowpass(p.LowpassHz))
	}
	for _, band := range p.Bands {
		stages = append(stages, PeakingEQ(band.FrequencyHz, band.GainDB, band.Q))
	}
	if p.Compressor.Ratio > 1 {
		stages = append(stages, Compressor(
			p.Compressor.ThresholdDB, p.Compressor.Ratio,
			p.Compressor.AttackMS, p.Compressor.ReleaseMS))
	}
	if p.Reverb != nil && p.Reverb.WetLevel > 0 {
		stages = append(stages, Reverb(p.Reverb.RoomSize, p.Reverb.Damping, p.Reverb.WetLevel))
	}
	if p.GainDB != 0 {
		stages = append(stages, GainDB(p.GainDB))
	}
	stages = append(stages, Limiter(p.Limiter.ThresholdDB, p.Limiter.ReleaseMS))
	return NewChain(stages...)
}

// Process runs every stage in order. The first failing stage aborts the
// chain with its name attached.
func (c *Chain) Process(buf *audio.Buffer) error {
	for _, s := range c.stages {
		if err := s.Process(buf); err != nil {
			return fmt.Errorf("stage %s: %w", s.Name(), err)
		}
	}
	return nil
}

// StageNames reports the chain layout, used in run reports.
func (c *Chain) StageNames() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	return names
}
