// Package audio provides PCM buffers and WAV file I/O
package audio

import (
	"fmt"
	"math"
	"time"
)

// Buffer holds decoded PCM audio as interleaved float64 samples in [-1, 1].
// len(Samples) is always a multiple of Channels. A Buffer is owned by exactly
// one pipeline stage at a time; stages hand ownership forward and never alias
// a buffer they have passed on.
type Buffer struct {
	Samples    []float64
	SampleRate int
	Channels   int
}

// New allocates a silent buffer holding the given number of frames
// (samples per channel).
func New(frames, sampleRate, channels int) *Buffer {
	return &Buffer{
		Samples:    make([]float64, frames*channels),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Silence returns a silent buffer of the given duration.
func Silence(d time.Duration, sampleRate, channels int) *Buffer {
	frames := int(d.Seconds() * float64(sampleRate))
	return New(frames, sampleRate, channels)
}

// Frames returns the number of samples per channel.
func (b *Buffer) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Validate checks the buffer invariants: positive sample rate, at least one
// channel, and a sample count that divides evenly across channels.
func (b *Buffer) Validate() error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", b.SampleRate)
	}
	if b.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", b.Channels)
	}
	if len(b.Samples)%b.Channels != 0 {
		return fmt.Errorf("sample count %d not divisible by %d channels", len(b.Samples), b.Channels)
	}
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Samples:    make([]float64, len(b.Samples)),
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
	}
	copy(out.Samples, b.Samples)
	return out
}

// Mono returns a single-channel view of the audio, averaging channels.
// A buffer that is already mono is returned unchanged (no copy).
func (b *Buffer) Mono() *Buffer {
	if b.Channels == 1 {
		return b
	}
	frames := b.Frames()
	out := New(frames, b.SampleRate, 1)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < b.Channels; c++ {
			sum += b.Samples[i*b.Channels+c]
		}
		out.Samples[i] = sum / float64(b.Channels)
	}
	return out
}

// SliceSeconds extracts [start, start+duration) as a new buffer. The requested
// range must lie entirely within the source.
func (b *Buffer) SliceSeconds(start, duration float64) (*Buffer, error) {
	startFrame := int(start * float64(b.SampleRate))
	endFrame := startFrame + int(duration*float64(b.SampleRate))
	if start < 0 || startFrame >= b.Frames() || endFrame > b.Frames() {
		return nil, fmt.Errorf("slice [%.2fs, %.2fs) exceeds buffer bounds (%.2fs)",
			start, start+duration, b.Duration())
	}
	out := New(endFrame-startFrame, b.SampleRate, b.Channels)
	copy(out.Samples, b.Samples[startFrame*b.Channels:endFrame*b.Channels])
	return out, nil
}

// Append concatenates other onto b in place. Sample rates and channel counts
// must match.
func (b *Buffer) Append(other *Buffer) error {
	if other.SampleRate != b.SampleRate {
		return fmt.Errorf("sample rate mismatch: %d vs %d", b.SampleRate, other.SampleRate)
	}
	if other.Channels != b.Channels {
		return fmt.Errorf("channel count mismatch: %d vs %d", b.Channels, other.Channels)
	}
	b.Samples = append(b.Samples, other.Samples...)
	return nil
}

// FadeIn applies a linear fade-in over the first d seconds, clamped to the
// buffer length.
func (b *Buffer) FadeIn(d float64) {
	frames := b.fadeFrames(d)
	for i := 0; i < frames; i++ {
		gain := float64(i) / float64(frames)
		for c := 0; c < b.Channels; c++ {
			b.Samples[i*b.Channels+c] *= gain
		}
	}
}

// FadeOut applies a linear fade-out over the last d seconds, clamped to the
// buffer length.
func (b *Buffer) FadeOut(d float64) {
	frames := b.fadeFrames(d)
	total := b.Frames()
	for i := 0; i < frames; i++ {
		gain := float64(frames-1-i) / float64(frames)
		frame := total - frames + i
		for c := 0; c < b.Channels; c++ {
			b.Samples[frame*b.Channels+c] *= gain
		}
	}
}

func (b *Buffer) fadeFrames(d float64) int {
	frames := int(d * float64(b.SampleRate))
	if total := b.Frames(); frames > total {
		frames = total
	}
	if frames < 0 {
		frames = 0
	}
	return frames
}

// Peak returns the maximum absolute sample value.
func (b *Buffer) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root-mean-square level of the whole buffer.
func (b *Buffer) RMS() float64 {
	if len(b.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range b.Samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(b.Samples)))
}

// PeakNormalize scales the buffer so its peak sits at target (linear, e.g.
// 0.99). Silence is left untouched.
func (b *Buffer) PeakNormalize(target float64) {
	peak := b.Peak()
	if peak == 0 {
		return
	}
	gain := target / peak
	for i := range b.Samples {
		b.Samples[i] *= gain
	}
}

// Gain applies a uniform linear gain in place.
func (b *Buffer) Gain(g float64) {
	for i := range b.Samples {
		b.Samples[i] *= g
	}
}

// GainDB converts a dB gain to linear and applies it.
func (b *Buffer) GainDB(db float64) {
	b.Gain(DBToLinear(db))
}

// DBToLinear converts a decibel value to a linear amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDB converts a linear amplitude to decibels, flooring at -120 dB for
// silence rather than returning -Inf.
func LinearToDB(a float64) float64 {
	if a < 1e-6 {
		return -120.0
	}
	return 20.0 * math.Log10(a)
}
