package dsp

import (
	"fmt"
	"math"

	"github.com/clipforge/mixdown/internal/audio"
)

// compressor is a feed-forward downward compressor. The detector tracks the
// per-frame peak across channels so stereo images do not wander, and the
// gain computer runs in the dB domain with one-pole attack/release
// smoothing.
type compressor struct {
	thresholdDB float64
	ratio       float64
	attackMS    float64
	releaseMS   float64

	envelope float64 // smoothed gain reduction in dB, >= 0
}

// Compressor builds a downward compressor stage.
func Compressor(thresholdDB, ratio, attackMS, releaseMS float64) Stage {
	return &compressor{thresholdDB: thresholdDB, ratio: ratio, attackMS: attackMS, releaseMS: releaseMS}
}

func (c *compressor) Name() string {
	return fmt.Sprintf("compressor %.0fdB %.1f:1", c.thresholdDB, c.ratio)
}

// timeCoeff converts a time constant in milliseconds to a one-pole smoothing
// coefficient at the given rate.
func timeCoeff(ms float64, sampleRate int) float64 {
	if ms <= 0 {
		return 0
	}
	return math.Exp(-1.0 / (ms / 1000.0 * float64(sampleRate)))
}

func (c *compressor) Process(buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if c.ratio <= 1 {
		return fmt.Errorf("%s: ratio must exceed 1", c.Name())
	}
	attack := timeCoeff(c.attackMS, buf.SampleRate)
	release := timeCoeff(c.releaseMS, buf.SampleRate)

	ch := buf.Channels
	for i := 0; i < len(buf.Samples); i += ch {
		framePeak := 0.0
		for j := 0; j < ch; j++ {
			if a := math.Abs(buf.Samples[i+j]); a > framePeak {
				framePeak = a
			}
		}

		// Desired gain reduction for this frame.
		var target float64
		levelDB := audio.LinearToDB(framePeak)
		if over := levelDB - c.thresholdDB; over > 0 {
			target = over * (1 - 1/c.ratio)
		}

		// Attack when reduction is rising, release when falling.
		coeff := release
		if target > c.envelope {
			coeff = attack
		}
		c.envelope = target + coeff*(c.envelope-target)

		gain := audio.DBToLinear(-c.envelope)
		for j := 0; j < ch; j++ {
			buf.Samples[i+j] *= gain
		}
	}
	return nil
}

// limiter caps the buffer at a ceiling. Overshoot is removed with a single
// uniform gain reduction over the whole buffer, which preserves the
// waveform's shape at the cost of overall level.
type limiter struct {
	thresholdDB float64
	releaseMS   float64
}

// Limiter builds the output ceiling stage.
func Limiter(thresholdDB, releaseMS float64) Stage {
	return &limiter{thresholdDB: thresholdDB, releaseMS: releaseMS}
}

func (l *limiter) Name() string { return fmt.Sprintf("limiter %.1fdB", l.thresholdDB) }

func (l *limiter) Process(buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	ceiling := audio.DBToLinear(l.thresholdDB)
	peak := buf.Peak()
	if peak <= ceiling || peak == 0 {
		return nil
	}
	buf.Gain(ceiling / peak)
	return nil
}

// gainStage applies a fixed dB offset.
type gainStage struct {
	db float64
}

// GainDB builds a static gain stage.
func GainDB(db float64) Stage { return &gainStage{db: db} }

func (g *gainStage) Name() string { return fmt.Sprintf("gain %+.1fdB", g.db) }

func (g *gainStage) Process(buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	buf.GainDB(g.db)
	return nil
}
