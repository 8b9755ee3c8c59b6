package pipeline

import (
	"math"
	"testing"

	"github.com/clipforge/mixdown/internal/audio"
	"github.com/clipforge/mixdown/internal/theme"
)

// constBuffer builds a buffer filled with a constant value, which makes
// fade and sum behavior easy to assert at exact positions.
func constBuffer(frames, rate, channels int, value float64) *audio.Buffer {
	buf := audio.New(frames, rate, channels)
	for i := range buf.Samples {
		buf.Samples[i] = value
	}
	return buf
}

func TestCrossfadeLength(t *testing.T) {
	// Two 1s buffers at 1kHz with a 200ms crossfade must join to
	// 1000 + 1000 - 200 frames.
	a := constBuffer(1000, 1000, 1, 0.5)
	b := constBuffer(1000, 1000, 1, 0.5)

	mix, err := AssembleMix([]*audio.Buffer{a, b}, UniformTransitions(theme.Transition{Kind: theme.Crossfade, Millis: 200}, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := mix.Frames(), 1800; got != want {
		t.Errorf("crossfade length = %d frames, want %d", got, want)
	}
}

func TestCrossfadeSumsOverlap(t *testing.T) {
	a := constBuffer(1000, 1000, 1, 0.5)
	b := constBuffer(1000, 1000, 1, 0.5)

	mix, err := AssembleMix([]*audio.Buffer{a, b}, UniformTransitions(theme.Transition{Kind: theme.Crossfade, Millis: 200}, 2))
	if err != nil {
		t.Fatal(err)
	}
	// Midway through the overlap the fade-out and fade-in gains sum to ~1,
	// so equal-level material stays at roughly its original level.
	mid := mix.Samples[900]
	if math.Abs(mid-0.5) > 0.01 {
		t.Errorf("overlap midpoint = %.3f, want ~0.5", mid)
	}
	// Before and after the overlap the signal is untouched.
	if mix.Samples[100] != 0.5 || mix.Samples[1700] != 0.5 {
		t.Error("samples outside the overlap were modified")
	}
}

func TestHardCutConcatenates(t *testing.T) {
	a := constBuffer(500, 1000, 1, 0.3)
	b := constBuffer(700, 1000, 1, 0.7)

	mix, err := AssembleMix([]*audio.Buffer{a, b}, UniformTransitions(theme.Transition{Kind: theme.HardCut}, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := mix.Frames(), 1200; got != want {
		t.Fatalf("hard cut length = %d, want %d", got, want)
	}
	if mix.Samples[499] != 0.3 || mix.Samples[500] != 0.7 {
		t.Error("hard cut modified samples at the boundary")
	}
}

func TestFadeConcatenatesWithFadedEdges(t *testing.T) {
	a := constBuffer(1000, 1000, 1, 0.5)
	b := constBuffer(1000, 1000, 1, 0.5)

	mix, err := AssembleMix([]*audio.Buffer{a, b}, UniformTransitions(theme.Transition{Kind: theme.Fade, Millis: 100}, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := mix.Frames(), 2000; got != want {
		t.Fatalf("fade length = %d, want %d (no overlap)", got, want)
	}
	// The last frame before the boundary fades toward zero, the first frame
	// after it starts at zero.
	if math.Abs(mix.Samples[999]) > 0.01 {
		t.Errorf("end of faded-out segment = %.3f, want ~0", mix.Samples[999])
	}
	if mix.Samples[1000] != 0 {
		t.Errorf("start of faded-in segment = %.3f, want 0", mix.Samples[1000])
	}
}

func TestOverlapMixesAdditively(t *testing.T) {
	a := constBuffer(1000, 1000, 1, 0.3)
	b := constBuffer(1000, 1000, 1, 0.4)

	mix, err := AssembleMix([]*audio.Buffer{a, b}, UniformTransitions(theme.Transition{Kind: theme.Overlap, Millis: 200}, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := mix.Frames(), 1800; got != want {
		t.Fatalf("overlap length = %d, want %d", got, want)
	}
	if got := mix.Samples[900]; math.Abs(got-0.7) > 1e-9 {
		t.Errorf("overlapped region = %.3f, want 0.7 (additive)", got)
	}
	if got := mix.Samples[1200]; math.Abs(got-0.4) > 1e-9 {
		t.Errorf("post-overlap region = %.3f, want 0.4", got)
	}
}

func TestTransitionDegradesToHardCut(t *testing.T) {
	// Buffers shorter than the transition must fall back to concatenation
	// instead of failing.
	kinds := []theme.TransitionKind{theme.Crossfade, theme.Fade, theme.Overlap}
	for _, kind := range kinds {
		a := constBuffer(50, 1000, 1, 0.3)
		b := constBuffer(50, 1000, 1, 0.7)
		mix, err := AssembleMix([]*audio.Buffer{a, b}, UniformTransitions(theme.Transition{Kind: kind, Millis: 200}, 2))
		if err != nil {
			t.Fatalf("%v: %v", kind, err)
		}
		if got, want := mix.Frames(), 100; got != want {
			t.Errorf("%v on short buffers: length %d, want %d (hard cut)", kind, got, want)
		}
		if mix.Samples[49] != 0.3 || mix.Samples[50] != 0.7 {
			t.Errorf("%v on short buffers modified samples", kind)
		}
	}
}

func TestAssemblePerBoundaryTransitions(t *testing.T) {
	// Three segments joined with different transitions per boundary: a hard
	// cut into b, then a 200ms crossfade into c.
	a := constBuffer(500, 1000, 1, 0.3)
	b := constBuffer(1000, 1000, 1, 0.5)
	c := constBuffer(1000, 1000, 1, 0.5)

	mix, err := AssembleMix([]*audio.Buffer{a, b, c}, []theme.Transition{
		{Kind: theme.HardCut},
		{Kind: theme.Crossfade, Millis: 200},
	})
	if err != nil {
		t.Fatal(err)
	}
	// 500 + 1000 (hard cut) + 1000 - 200 (crossfade overlap).
	if got, want := mix.Frames(), 2300; got != want {
		t.Fatalf("mixed-transition length = %d frames, want %d", got, want)
	}
	// Hard cut boundary is untouched.
	if mix.Samples[499] != 0.3 || mix.Samples[500] != 0.5 {
		t.Error("hard cut boundary modified samples")
	}
	// Crossfade midpoint between equal-level b and c stays near level.
	if got := mix.Samples[1400]; math.Abs(got-0.5) > 0.01 {
		t.Errorf("crossfade midpoint = %.3f, want ~0.5", got)
	}
}

func TestAssembleRejectsTransitionCountMismatch(t *testing.T) {
	a := constBuffer(100, 1000, 1, 0.5)
	b := constBuffer(100, 1000, 1, 0.5)
	if _, err := AssembleMix([]*audio.Buffer{a, b}, nil); err == nil {
		t.Error("missing boundary transition should fail assembly")
	}
	if _, err := AssembleMix([]*audio.Buffer{a.Clone()}, UniformTransitions(theme.Transition{Kind: theme.HardCut}, 2)); err == nil {
		t.Error("extra transitions should fail assembly")
	}
}

func TestAssembleRejectsMismatchedFormats(t *testing.T) {
	a := constBuffer(100, 44100, 1, 0.5)
	b := constBuffer(100, 22050, 1, 0.5)
	if _, err := AssembleMix([]*audio.Buffer{a, b}, UniformTransitions(theme.Transition{Kind: theme.HardCut}, 2)); err == nil {
		t.Error("mismatched sample rates should fail assembly")
	}

	c := constBuffer(100, 44100, 2, 0.5)
	if _, err := AssembleMix([]*audio.Buffer{a, c}, UniformTransitions(theme.Transition{Kind: theme.HardCut}, 2)); err == nil {
		t.Error("mismatched channel counts should fail assembly")
	}
}

func TestAssembleRejectsEmptyInput(t *testing.T) {
	if _, err := AssembleMix(nil, nil); err == nil {
		t.Error("empty segment list should fail assembly")
	}
}

func TestAssembleStereoCrossfade(t *testing.T) {
	a := constBuffer(1000, 1000, 2, 0.5)
	b := constBuffer(1000, 1000, 2, 0.5)

	mix, err := AssembleMix([]*audio.Buffer{a, b}, UniformTransitions(theme.Transition{Kind: theme.Crossfade, Millis: 200}, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := mix.Frames(), 1800; got != want {
		t.Errorf("stereo crossfade length = %d frames, want %d", got, want)
	}
	if len(mix.Samples)%2 != 0 {
		t.Error("stereo sample count must stay even")
	}
}

func TestMasterNormalizesPeak(t *testing.T) {
	// A loud 440Hz tone at 22.05kHz; after the mastering chain the peak must
	// sit at the normalize target.
	buf := audio.New(22050, 22050, 1)
	for i := range buf.Samples {
		buf.Samples[i] = 0.9 * math.Sin(2*math.Pi*440*float64(i)/22050)
	}
	if err := Master(buf); err != nil {
		t.Fatal(err)
	}
	want := audio.DBToLinear(normalizeTarget)
	if got := buf.Peak(); math.Abs(got-want) > 1e-6 {
		t.Errorf("mastered peak = %.6f, want %.6f", got, want)
	}
}

func TestMasterHandlesLowSampleRates(t *testing.T) {
	// The mastering chain's 10kHz air band sits above Nyquist for narrowband
	// speech rates; those sources must still master cleanly.
	for _, rate := range []int{8000, 16000} {
		buf := audio.New(rate, rate, 1)
		for i := range buf.Samples {
			buf.Samples[i] = 0.9 * math.Sin(2*math.Pi*440*float64(i)/float64(rate))
		}
		if err := Master(buf); err != nil {
			t.Fatalf("%d Hz: %v", rate, err)
		}
		want := audio.DBToLinear(normalizeTarget)
		if got := buf.Peak(); math.Abs(got-want) > 1e-6 {
			t.Errorf("%d Hz: mastered peak = %.6f, want %.6f", rate, got, want)
		}
	}
}
