package dsp

import (
	"fmt"

	"github.com/clipforge/mixdown/internal/audio"
)

// Classic Schroeder topology: four parallel feedback combs with damping in
// the feedback path, followed by two series allpass diffusers. Delay lengths
// are the usual mutually-prime tunings at 44.1 kHz and are rescaled to the
// buffer's actual rate.
var (
	combTunings    = []int{1557, 1617, 1491, 1422}
	allpassTunings = []int{225, 556}
)

const (
	reverbBaseRate     = 44100
	combFeedbackBase   = 0.70 // feedback at room size 0
	combFeedbackScale  = 0.28 // added feedback at room size 1
	allpassFeedback    = 0.5
	stereoSpreadFrames = 23 // offsets the right channel's delay lines
)

type combFilter struct {
	buf    []float64
	idx    int
	filter float64 // damping lowpass state
	damp   float64
	feedbk float64
}

func (c *combFilter) process(x float64) float64 {
	out := c.buf[c.idx]
	c.filter = out*(1-c.damp) + c.filter*c.damp
	c.buf[c.idx] = x + c.filter*c.feedbk
	c.idx = (c.idx + 1) % len(c.buf)
	return out
}

type allpassFilter struct {
	buf []float64
	idx int
}

func (a *allpassFilter) process(x float64) float64 {
	delayed := a.buf[a.idx]
	out := delayed - x
	a.buf[a.idx] = x + delayed*allpassFeedback
	a.idx = (a.idx + 1) % len(a.buf)
	return out
}

type reverb struct {
	roomSize float64
	damping  float64
	wetLevel float64

	sampleRate int
	combs      [][]*combFilter    // per channel
	allpasses  [][]*allpassFilter // per channel
}

// Reverb builds a Schroeder reverb stage. roomSize, damping and wetLevel
// are all in [0, 1]; wetLevel 0 is a no-op passthrough.
func Reverb(roomSize, damping, wetLevel float64) Stage {
	return &reverb{roomSize: roomSize, damping: damping, wetLevel: wetLevel}
}

func (r *reverb) Name() string {
	return fmt.Sprintf("reverb room=%.2f wet=%.2f", r.roomSize, r.wetLevel)
}

func (r *reverb) init(sampleRate, channels int) {
	scale := float64(sampleRate) / float64(reverbBaseRate)
	feedback := combFeedbackBase + combFeedbackScale*r.roomSize

	r.sampleRate = sampleRate
	r.combs = make([][]*combFilter, channels)
	r.allpasses = make([][]*allpassFilter, channels)
	for ch := 0; ch < channels; ch++ {
		spread := ch * stereoSpreadFrames
		for _, tuning := range combTunings {
			n := int(float64(tuning+spread)*scale + 0.5)
			if n < 1 {
				n = 1
			}
			r.combs[ch] = append(r.combs[ch], &combFilter{
				buf: make([]float64, n), damp: r.damping, feedbk: feedback,
			})
		}
		for _, tuning := range allpassTunings {
			n := int(float64(tuning+spread)*scale + 0.5)
			if n < 1 {
				n = 1
			}
			r.allpasses[ch] = append(r.allpasses[ch], &allpassFilter{buf: make([]float64, n)})
		}
	}
}

func (r *reverb) Process(buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if r.wetLevel <= 0 {
		return nil
	}
	if r.sampleRate != buf.SampleRate || len(r.combs) != buf.Channels {
		r.init(buf.SampleRate, buf.Channels)
	}

	ch := buf.Channels
	dry := 1 - r.wetLevel
	for i, x := range buf.Samples {
		c := i % ch
		wet := 0.0
		for _, comb := range r.combs[c] {
			wet += comb.process(x)
		}
		wet /= float64(len(r.combs[c]))
		for _, ap := range r.allpasses[c] {
			wet = ap.process(wet)
		}
		buf.Samples[i] = x*dry + wet*r.wetLevel
	}
	return nil
}
