// Package pipeline orchestrates one mix run: segment extraction and
// processing, parallel fan-out, transition assembly and mastering.
package pipeline

import (
	"context"

	"github.com/clipforge/mixdown/internal/audio"
	"github.com/clipforge/mixdown/internal/dsp"
	"github.com/clipforge/mixdown/internal/selection"
	"github.com/clipforge/mixdown/internal/theme"
)

// segmentFade is the fixed edge fade applied to every processed segment so
// boundaries never click, clamped to half the segment for very short cuts.
const segmentFade = 0.5 // seconds

// SegmentProcessor cuts one candidate from the shared source buffer and runs
// it through the theme's chain. The source is only ever read, so one
// processor can serve many workers concurrently; each call builds its own
// stateful chain.
type SegmentProcessor struct {
	Source  *audio.Buffer
	Profile theme.Profile
	HumHz   float64 // 0 disables the mains notch
}

// Process renders candidate idx into a newly allocated buffer. A range
// outside the source returns SegmentOutOfRangeError so the caller can skip
// the segment rather than abort the run.
func (p *SegmentProcessor) Process(ctx context.Context, idx int, cand selection.Candidate) (*audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, &SegmentProcessingError{Index: idx, Err: err}
	}

	seg, err := p.Source.SliceSeconds(cand.StartTime, cand.Duration)
	if err != nil {
		return nil, &SegmentOutOfRangeError{
			Index:          idx,
			StartTime:      cand.StartTime,
			Duration:       cand.Duration,
			SourceDuration: p.Source.Duration(),
		}
	}

	chain := dsp.FromProfile(p.Profile, p.HumHz)
	if err := chain.Process(seg); err != nil {
		return nil, &SegmentProcessingError{Index: idx, Err: err}
	}

	fade := segmentFade
	if half := seg.Duration() / 2; fade > half {
		fade = half
	}
	seg.FadeIn(fade)
	seg.FadeOut(fade)
	return seg, nil
}
