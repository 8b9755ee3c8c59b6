// Package analysis extracts loudness and spectral features from PCM audio.
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/clipforge/mixdown/internal/audio"
)

// Default analysis window parameters. The hop determines feature resolution
// (~11.6ms at 44.1kHz); the frame is the FFT window and may overlap hops.
const (
	DefaultHopSize   = 512
	DefaultFrameSize = 2048
)

// Tempo search range in BPM. Speech-heavy material rarely tracks outside this
// band, and the autocorrelation peak gets unreliable beyond it.
const (
	tempoMinBPM = 60.0
	tempoMaxBPM = 180.0
)

// FeatureFrame holds the per-hop measurements for one analysis frame.
// Frames are immutable once produced and always emitted in time order.
type FeatureFrame struct {
	TimeOffset       float64 // seconds from buffer start
	RMSEnergy        float64 // linear RMS over the analysis window
	SpectralCentroid float64 // Hz, magnitude-weighted frequency centroid
	ZeroCrossingRate float64 // fraction of adjacent sample pairs crossing zero
}

// Features is the complete analysis result for one buffer.
type Features struct {
	Frames         []FeatureFrame
	Onsets         []float64 // onset times in seconds, ascending
	Tempo          float64   // estimated BPM, 0 when no periodicity was found
	SourceDuration float64   // seconds
	HopSize        int
	FrameSize      int
}

// Error reports that feature extraction could not be computed. Callers are
// expected to fall back to distributed segment selection rather than abort.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("analysis failed: %s", e.Reason)
}

// Options configures the extractor. Zero values select the defaults.
type Options struct {
	HopSize   int
	FrameSize int
}

// Extract computes per-frame RMS energy, spectral centroid, and zero-crossing
// rate over the whole buffer, plus a single global tempo estimate. The final
// partial frame is zero-padded to the window size. All-silent input yields
// zero-energy frames without error.
//
// Extract never panics; any condition that prevents analysis is reported as
// an *Error so the caller can take the distributed fallback path.
func Extract(buf *audio.Buffer, opts Options) (*Features, error) {
	if opts.HopSize <= 0 {
		opts.HopSize = DefaultHopSize
	}
	if opts.FrameSize <= 0 {
		opts.FrameSize = DefaultFrameSize
	}
	if buf == nil || len(buf.Samples) == 0 {
		return nil, &Error{Reason: "empty input buffer"}
	}
	if err := buf.Validate(); err != nil {
		return nil, &Error{Reason: err.Error()}
	}
	if opts.FrameSize < opts.HopSize {
		return nil, &Error{Reason: fmt.Sprintf("frame size %d smaller than hop size %d", opts.FrameSize, opts.HopSize)}
	}

	mono := buf.Mono()
	samples := mono.Samples
	sr := float64(mono.SampleRate)

	frameCount := (len(samples) + opts.HopSize - 1) / opts.HopSize
	frames := make([]FeatureFrame, 0, frameCount)

	fft := fourier.NewFFT(opts.FrameSize)
	window := hannWindow(opts.FrameSize)
	windowed := make([]float64, opts.FrameSize)
	coeffs := make([]complex128, opts.FrameSize/2+1)

	for start := 0; start < len(samples); start += opts.HopSize {
		end := start + opts.FrameSize
		if end > len(samples) {
			end = len(samples)
		}
		frame := samples[start:end]

		// Window + zero-pad for the spectral transform.
		n := copy(windowed, frame)
		for i := range windowed[:n] {
			windowed[i] *= window[i]
		}
		for i := n; i < opts.FrameSize; i++ {
			windowed[i] = 0
		}
		coeffs = fft.Coefficients(coeffs, windowed)

		frames = append(frames, FeatureFrame{
			TimeOffset:       float64(start) / sr,
			RMSEnergy:        rms(frame),
			SpectralCentroid: centroid(coeffs, fft, sr),
			ZeroCrossingRate: zeroCrossingRate(frame),
		})
	}

	hopSeconds := float64(opts.HopSize) / sr
	return &Features{
		Frames:         frames,
		Onsets:         detectOnsets(frames, hopSeconds),
		Tempo:          estimateTempo(frames, hopSeconds),
		SourceDuration: buf.Duration(),
		HopSize:        opts.HopSize,
		FrameSize:      opts.FrameSize,
	}, nil
}

// EnergySeries returns the RMS energy of every frame, in time order.
func (f *Features) EnergySeries() []float64 {
	out := make([]float64, len(f.Frames))
	for i, fr := range f.Frames {
		out[i] = fr.RMSEnergy
	}
	return out
}

// MeanEnergy returns the average RMS energy across all frames.
func (f *Features) MeanEnergy() float64 {
	if len(f.Frames) == 0 {
		return 0
	}
	var sum float64
	for _, fr := range f.Frames {
		sum += fr.RMSEnergy
	}
	return sum / float64(len(f.Frames))
}

// MeanCentroid returns the average spectral centroid across all frames.
func (f *Features) MeanCentroid() float64 {
	if len(f.Frames) == 0 {
		return 0
	}
	var sum float64
	for _, fr := range f.Frames {
		sum += fr.SpectralCentroid
	}
	return sum / float64(len(f.Frames))
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func zeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

// centroid computes the magnitude-weighted frequency center of mass in Hz.
// Silent frames (no spectral energy) yield 0.
func centroid(coeffs []complex128, fft *fourier.FFT, sampleRate float64) float64 {
	var weighted, total float64
	for i, c := range coeffs {
		mag := math.Hypot(real(c), imag(c))
		weighted += fft.Freq(i) * sampleRate * mag
		total += mag
	}
	if total < 1e-12 {
		return 0
	}
	return weighted / total
}

// hannWindow returns an n-point Hann window.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// detectOnsets finds times where the energy envelope jumps sharply: the
// half-wave rectified first difference exceeds mean + 1.5 stddev of the onset
// envelope. Onsets closer than 250ms to the previous one are suppressed.
func detectOnsets(frames []FeatureFrame, hopSeconds float64) []float64 {
	if len(frames) < 3 {
		return nil
	}

	diffs := make([]float64, len(frames)-1)
	var sum float64
	for i := 1; i < len(frames); i++ {
		if d := frames[i].RMSEnergy - frames[i-1].RMSEnergy; d > 0 {
			diffs[i-1] = d
			sum += d
		}
	}
	mean := sum / float64(len(diffs))
	var varSum float64
	for _, d := range diffs {
		varSum += (d - mean) * (d - mean)
	}
	threshold := mean + 1.5*math.Sqrt(varSum/float64(len(diffs)))
	if threshold < 1e-9 {
		return nil
	}

	const minSpacing = 0.25 // seconds
	var onsets []float64
	last := -minSpacing
	for i, d := range diffs {
		t := frames[i+1].TimeOffset
		if d > threshold && t-last >= minSpacing {
			onsets = append(onsets, t)
			last = t
		}
	}
	return onsets
}

// estimateTempo derives one global BPM figure from the periodicity of the
// frame energy series. Onset strength is the half-wave rectified first
// difference of RMS energy; its autocorrelation is scanned over lags
// corresponding to 60-180 BPM and the strongest peak wins. Returns 0 when the
// series is too short or has no usable periodicity.
func estimateTempo(frames []FeatureFrame, hopSeconds float64) float64 {
	if len(frames) < 8 || hopSeconds <= 0 {
		return 0
	}

	onset := make([]float64, len(frames)-1)
	var total float64
	for i := 1; i < len(frames); i++ {
		d := frames[i].RMSEnergy - frames[i-1].RMSEnergy
		if d > 0 {
			onset[i-1] = d
			total += d
		}
	}
	if total < 1e-9 {
		return 0
	}

	minLag := int(60.0 / tempoMaxBPM / hopSeconds)
	maxLag := int(60.0 / tempoMinBPM / hopSeconds)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}
	if maxLag <= minLag {
		return 0
	}

	bestLag, bestScore := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var score float64
		for i := lag; i < len(onset); i++ {
			score += onset[i] * onset[i-lag]
		}
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}
	return 60.0 / (float64(bestLag) * hopSeconds)
}
