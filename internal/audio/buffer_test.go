package audio

import (
	"math"
	"testing"
	"time"
)

func TestBufferFramesAndDuration(t *testing.T) {
	tests := []struct {
		name         string
		frames       int
		sampleRate   int
		channels     int
		wantDuration float64
	}{
		{"one second mono", 44100, 44100, 1, 1.0},
		{"half second stereo", 22050, 44100, 2, 0.5},
		{"empty", 0, 44100, 1, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.frames, tt.sampleRate, tt.channels)
			if got := b.Frames(); got != tt.frames {
				t.Errorf("Frames() = %d, want %d", got, tt.frames)
			}
			if got := b.Duration(); math.Abs(got-tt.wantDuration) > 1e-9 {
				t.Errorf("Duration() = %f, want %f", got, tt.wantDuration)
			}
			if err := b.Validate(); err != nil {
				t.Errorf("Validate() failed: %v", err)
			}
		})
	}
}

func TestValidateRejectsUnevenSamples(t *testing.T) {
	b := &Buffer{Samples: make([]float64, 3), SampleRate: 44100, Channels: 2}
	if err := b.Validate(); err == nil {
		t.Error("expected error for sample count not divisible by channels")
	}
}

func TestMonoAveragesChannels(t *testing.T) {
	b := &Buffer{
		Samples:    []float64{1.0, 0.0, 0.5, -0.5, -1.0, 1.0},
		SampleRate: 44100,
		Channels:   2,
	}
	mono := b.Mono()
	if mono.Channels != 1 {
		t.Fatalf("Mono() channels = %d, want 1", mono.Channels)
	}
	want := []float64{0.5, 0.0, 0.0}
	for i, w := range want {
		if math.Abs(mono.Samples[i]-w) > 1e-9 {
			t.Errorf("Mono() sample %d = %f, want %f", i, mono.Samples[i], w)
		}
	}
}

func TestMonoPassthrough(t *testing.T) {
	b := New(100, 44100, 1)
	if b.Mono() != b {
		t.Error("Mono() on a mono buffer should return the same buffer")
	}
}

func TestSliceSeconds(t *testing.T) {
	b := New(44100, 44100, 1) // 1 second
	for i := range b.Samples {
		b.Samples[i] = float64(i)
	}

	slice, err := b.SliceSeconds(0.25, 0.5)
	if err != nil {
		t.Fatalf("SliceSeconds failed: %v", err)
	}
	if got := slice.Frames(); got != 22050 {
		t.Errorf("slice frames = %d, want 22050", got)
	}
	if slice.Samples[0] != float64(11025) {
		t.Errorf("slice starts at sample %f, want 11025", slice.Samples[0])
	}

	// Modifying the slice must not touch the source.
	slice.Samples[0] = -1
	if b.Samples[11025] == -1 {
		t.Error("slice aliases the source buffer")
	}
}

func TestSliceSecondsOutOfRange(t *testing.T) {
	b := New(44100, 44100, 1) // 1 second

	for _, tc := range []struct {
		name            string
		start, duration float64
	}{
		{"past end", 0.9, 0.5},
		{"negative start", -0.1, 0.5},
		{"start beyond buffer", 2.0, 0.5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := b.SliceSeconds(tc.start, tc.duration); err == nil {
				t.Errorf("SliceSeconds(%f, %f) should fail", tc.start, tc.duration)
			}
		})
	}
}

func TestFades(t *testing.T) {
	b := New(1000, 1000, 1) // 1 second at 1kHz for easy math
	for i := range b.Samples {
		b.Samples[i] = 1.0
	}

	b.FadeIn(0.1)  // first 100 samples
	b.FadeOut(0.1) // last 100 samples

	if b.Samples[0] != 0 {
		t.Errorf("first sample after fade-in = %f, want 0", b.Samples[0])
	}
	if b.Samples[500] != 1.0 {
		t.Errorf("middle sample = %f, want 1.0 (untouched)", b.Samples[500])
	}
	if b.Samples[999] != 0 {
		t.Errorf("last sample after fade-out = %f, want 0", b.Samples[999])
	}
	// Fade ramps monotonically.
	for i := 1; i < 100; i++ {
		if b.Samples[i] < b.Samples[i-1] {
			t.Fatalf("fade-in not monotonic at sample %d", i)
		}
	}
}

func TestFadeLongerThanBuffer(t *testing.T) {
	b := New(100, 44100, 1)
	for i := range b.Samples {
		b.Samples[i] = 1.0
	}
	// 1 second fade on a ~2ms buffer must clamp, not panic.
	b.FadeIn(1.0)
	b.FadeOut(1.0)
}

func TestPeakNormalize(t *testing.T) {
	b := &Buffer{Samples: []float64{0.1, -0.5, 0.25}, SampleRate: 44100, Channels: 1}
	b.PeakNormalize(1.0)
	if math.Abs(b.Peak()-1.0) > 1e-9 {
		t.Errorf("peak after normalize = %f, want 1.0", b.Peak())
	}

	silent := New(100, 44100, 1)
	silent.PeakNormalize(1.0)
	if silent.Peak() != 0 {
		t.Error("normalizing silence should leave it silent")
	}
}

func TestSilence(t *testing.T) {
	b := Silence(500*time.Millisecond, 44100, 2)
	if got := b.Frames(); got != 22050 {
		t.Errorf("Silence frames = %d, want 22050", got)
	}
	if b.Peak() != 0 {
		t.Error("Silence buffer should be all zeros")
	}
}

func TestDBConversions(t *testing.T) {
	if got := DBToLinear(0); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("DBToLinear(0) = %f, want 1.0", got)
	}
	if got := DBToLinear(-6.0); math.Abs(got-0.5012) > 0.001 {
		t.Errorf("DBToLinear(-6) = %f, want ~0.5012", got)
	}
	if got := LinearToDB(1.0); math.Abs(got) > 1e-9 {
		t.Errorf("LinearToDB(1.0) = %f, want 0", got)
	}
	if got := LinearToDB(0); got != -120.0 {
		t.Errorf("LinearToDB(0) = %f, want -120 floor", got)
	}
}

func TestAppendMismatch(t *testing.T) {
	a := New(10, 44100, 1)
	if err := a.Append(New(10, 48000, 1)); err == nil {
		t.Error("expected sample rate mismatch error")
	}
	if err := a.Append(New(10, 44100, 2)); err == nil {
		t.Error("expected channel mismatch error")
	}
	if err := a.Append(New(10, 44100, 1)); err != nil {
		t.Errorf("matching append failed: %v", err)
	}
	if a.Frames() != 20 {
		t.Errorf("frames after append = %d, want 20", a.Frames())
	}
}
