package pipeline

import (
	"fmt"

	"github.com/clipforge/mixdown/internal/audio"
	"github.com/clipforge/mixdown/internal/dsp"
	"github.com/clipforge/mixdown/internal/theme"
)

// normalizeTarget is the final mix peak after mastering, just under full
// scale so downstream encoders never clip the first sample.
const normalizeTarget = -0.1 // dBFS

// AssembleMix joins processed segments in order, applying transitions[i] at
// the boundary between segment i and i+1. Buffers too short for a requested
// transition degrade that boundary to a hard cut instead of failing. Segment
// buffers are consumed; the caller must not reuse them afterwards.
func AssembleMix(segments []*audio.Buffer, transitions []theme.Transition) (*audio.Buffer, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments to assemble")
	}
	if len(transitions) != len(segments)-1 {
		return nil, fmt.Errorf("%d transitions for %d segment boundaries",
			len(transitions), len(segments)-1)
	}
	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if seg.SampleRate != segments[0].SampleRate || seg.Channels != segments[0].Channels {
			return nil, fmt.Errorf("segment %d format differs from segment 0", i)
		}
	}

	result := segments[0].Clone()
	for i, next := range segments[1:] {
		tr := transitions[i]
		frames := transitionFrames(tr, result.SampleRate)
		kind := tr.Kind
		if tooShortFor(kind, frames, result, next) {
			kind = theme.HardCut
		}
		switch kind {
		case theme.Crossfade:
			joinCrossfade(result, next, frames)
		case theme.Fade:
			joinFade(result, next, frames)
		case theme.Overlap:
			joinOverlap(result, next, frames)
		default:
			// Formats were verified above, Append cannot fail here.
			_ = result.Append(next)
		}
	}
	return result, nil
}

// UniformTransitions expands one transition into the per-boundary list for a
// mix of the given segment count, which is how a theme's default join is
// applied everywhere.
func UniformTransitions(tr theme.Transition, segments int) []theme.Transition {
	if segments < 2 {
		return nil
	}
	out := make([]theme.Transition, segments-1)
	for i := range out {
		out[i] = tr
	}
	return out
}

// Master runs the final-bus chain over the assembled mix and normalizes the
// peak to just under full scale.
func Master(buf *audio.Buffer) error {
	chain := dsp.FromProfile(theme.Mastering(), 0)
	if err := chain.Process(buf); err != nil {
		return fmt.Errorf("mastering: %w", err)
	}
	buf.PeakNormalize(audio.DBToLinear(normalizeTarget))
	return nil
}

func transitionFrames(tr theme.Transition, sampleRate int) int {
	return tr.Millis * sampleRate / 1000
}

// tooShortFor reports whether either buffer cannot carry the transition, in
// which case the boundary falls back to a hard cut.
func tooShortFor(kind theme.TransitionKind, frames int, a, b *audio.Buffer) bool {
	if kind == theme.HardCut {
		return false
	}
	if frames <= 0 {
		return true
	}
	return a.Frames() < frames || b.Frames() < frames
}

// joinCrossfade overlaps the tail of result with the head of next, fading
// linearly in opposite directions and summing. The joined length is
// len(result) + len(next) - frames.
func joinCrossfade(result, next *audio.Buffer, frames int) {
	ch := result.Channels
	tailStart := (result.Frames() - frames) * ch
	for i := 0; i < frames; i++ {
		out := float64(frames-1-i) / float64(frames)
		in := float64(i) / float64(frames)
		for c := 0; c < ch; c++ {
			tail := result.Samples[tailStart+i*ch+c] * out
			head := next.Samples[i*ch+c] * in
			result.Samples[tailStart+i*ch+c] = tail + head
		}
	}
	result.Samples = append(result.Samples, next.Samples[frames*ch:]...)
}

// joinFade fades the boundary edges but concatenates without overlap.
func joinFade(result, next *audio.Buffer, frames int) {
	seconds := float64(frames) / float64(result.SampleRate)
	result.FadeOut(seconds)
	next.FadeIn(seconds)
	result.Samples = append(result.Samples, next.Samples...)
}

// joinOverlap additively mixes next into the last frames of result, then
// extends with whatever remains of next.
func joinOverlap(result, next *audio.Buffer, frames int) {
	ch := result.Channels
	offset := (result.Frames() - frames) * ch
	if extra := next.Frames() - frames; extra > 0 {
		result.Samples = append(result.Samples, make([]float64, extra*ch)...)
	}
	for i := 0; i < len(next.Samples); i++ {
		result.Samples[offset+i] += next.Samples[i]
	}
}
