// Package dsp implements the per-segment processing stages: biquad filters,
// dynamics, reverb and gain, composed into theme chains.
package dsp

import (
	"fmt"
	"math"

	"github.com/clipforge/mixdown/internal/audio"
)

// Stage is one in-place processing step. Stages hold filter state, so a
// Stage value must not be shared between buffers processed concurrently.
type Stage interface {
	Name() string
	Process(buf *audio.Buffer) error
}

// biquadKind selects the filter response.
type biquadKind int

const (
	biquadHighpass biquadKind = iota
	biquadLowpass
	biquadPeaking
	biquadNotch
)

// biquad is a direct-form-I two-pole filter using the standard audio-EQ
// cookbook coefficient formulas. Coefficients are derived per buffer since
// the sample rate is not known until Process.
type biquad struct {
	kind   biquadKind
	freqHz float64
	gainDB float64 // peaking only
	q      float64

	// per-channel delay lines
	x1, x2, y1, y2 []float64
}

func newBiquad(kind biquadKind, freqHz, gainDB, q float64) *biquad {
	return &biquad{kind: kind, freqHz: freqHz, gainDB: gainDB, q: q}
}

// Highpass builds a second-order highpass stage with the given corner.
func Highpass(freqHz float64) Stage { return newBiquad(biquadHighpass, freqHz, 0, math.Sqrt2/2) }

// Lowpass builds a second-order lowpass stage with the given corner.
func Lowpass(freqHz float64) Stage { return newBiquad(biquadLowpass, freqHz, 0, math.Sqrt2/2) }

// PeakingEQ builds a peaking band at freqHz with the given gain and width.
func PeakingEQ(freqHz, gainDB, q float64) Stage {
	return newBiquad(biquadPeaking, freqHz, gainDB, q)
}

// Notch builds a narrow rejection band, used for mains-hum removal.
func Notch(freqHz, q float64) Stage { return newBiquad(biquadNotch, freqHz, 0, q) }

func (b *biquad) Name() string {
	switch b.kind {
	case biquadHighpass:
		return fmt.Sprintf("highpass %.0fHz", b.freqHz)
	case biquadLowpass:
		return fmt.Sprintf("lowpass %.0fHz", b.freqHz)
	case biquadPeaking:
		return fmt.Sprintf("eq %.0fHz %+.1fdB", b.freqHz, b.gainDB)
	case biquadNotch:
		return fmt.Sprintf("notch %.0fHz", b.freqHz)
	default:
		return "biquad"
	}
}

// coefficients computes normalized b0..b2, a1, a2 for the current kind.
func (b *biquad) coefficients(sampleRate int) (b0, b1, b2, a1, a2 float64) {
	w0 := 2 * math.Pi * b.freqHz / float64(sampleRate)
	sin, cos := math.Sin(w0), math.Cos(w0)
	alpha := sin / (2 * b.q)

	var rb0, rb1, rb2, ra0, ra1, ra2 float64
	switch b.kind {
	case biquadHighpass:
		rb0 = (1 + cos) / 2
		rb1 = -(1 + cos)
		rb2 = (1 + cos) / 2
		ra0 = 1 + alpha
		ra1 = -2 * cos
		ra2 = 1 - alpha
	case biquadLowpass:
		rb0 = (1 - cos) / 2
		rb1 = 1 - cos
		rb2 = (1 - cos) / 2
		ra0 = 1 + alpha
		ra1 = -2 * cos
		ra2 = 1 - alpha
	case biquadPeaking:
		a := math.Pow(10, b.gainDB/40)
		rb0 = 1 + alpha*a
		rb1 = -2 * cos
		rb2 = 1 - alpha*a
		ra0 = 1 + alpha/a
		ra1 = -2 * cos
		ra2 = 1 - alpha/a
	case biquadNotch:
		rb0 = 1
		rb1 = -2 * cos
		rb2 = 1
		ra0 = 1 + alpha
		ra1 = -2 * cos
		ra2 = 1 - alpha
	}
	return rb0 / ra0, rb1 / ra0, rb2 / ra0, ra1 / ra0, ra2 / ra0
}

func (b *biquad) Process(buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if b.freqHz <= 0 {
		return fmt.Errorf("%s: frequency must be positive", b.Name())
	}
	// A band at or above Nyquist does not exist at this sample rate. The
	// stage passes the signal through unchanged so low-rate sources still
	// run the rest of the chain.
	if b.freqHz >= float64(buf.SampleRate)/2 {
		return nil
	}
	b0, b1, b2, a1, a2 := b.coefficients(buf.SampleRate)

	ch := buf.Channels
	if len(b.x1) != ch {
		b.x1 = make([]float64, ch)
		b.x2 = make([]float64, ch)
		b.y1 = make([]float64, ch)
		b.y2 = make([]float64, ch)
	}
	for i, x := range buf.Samples {
		c := i % ch
		y := b0*x + b1*b.x1[c] + b2*b.x2[c] - a1*b.y1[c] - a2*b.y2[c]
		b.x2[c], b.x1[c] = b.x1[c], x
		b.y2[c], b.y1[c] = b.y1[c], y
		buf.Samples[i] = y
	}
	return nil
}
