package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clipforge/mixdown/internal/analysis"
	"github.com/clipforge/mixdown/internal/audio"
	"github.com/clipforge/mixdown/internal/metrics"
	"github.com/clipforge/mixdown/internal/selection"
	"github.com/clipforge/mixdown/internal/theme"
)

// Stage names reported to the progress callback and the metrics sink.
const (
	StageAnalyze  = "analyze"
	StageSelect   = "select"
	StageProcess  = "process"
	StageAssemble = "assemble"
	StageMaster   = "master"
)

// Progress is one pipeline status update, delivered to the UI callback.
type Progress struct {
	Stage    string
	Fraction float64 // 0..1 within the stage
	Message  string
}

// Params configures one mix run. Zero values take the documented defaults.
type Params struct {
	Theme          theme.Key
	Profile        theme.Profile // resolved profile, including any overrides
	HumHz          float64       // mains notch frequency, 0 disables
	TargetCount    int
	MinDuration    float64
	MaxDuration    float64
	TargetDuration float64 // seconds of mix budget, 0 means unlimited
	Workers        int
	SegmentTimeout time.Duration
}

// SegmentInfo describes one segment that made it into the final mix.
type SegmentInfo struct {
	StartTime  float64 `json:"start_time"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"selection_method"`
}

// Metadata is the sidecar record exported next to the mix.
type Metadata struct {
	RunID             string        `json:"run_id"`
	Theme             string        `json:"theme"`
	SegmentCount      int           `json:"segment_count"`
	TotalDuration     float64       `json:"total_duration"`
	AverageConfidence float64       `json:"average_confidence"`
	SelectionMethod   string        `json:"selection_method_used"`
	Segments          []SegmentInfo `json:"segments"`
	Tempo             float64       `json:"tempo_bpm,omitempty"`
	GeneratedAt       time.Time     `json:"generated_at"`
	Warnings          []string      `json:"warnings,omitempty"`
}

// Result is a finished run: the mastered mix and its metadata.
type Result struct {
	Mix      *audio.Buffer
	Metadata Metadata
}

// Pipeline runs the complete analyze/select/process/assemble/master flow
// over one source buffer. Metrics, Progress and Logf are all optional.
type Pipeline struct {
	Params   Params
	Metrics  *metrics.Metrics
	Progress func(Progress)
	Logf     func(format string, args ...any)
}

func (p *Pipeline) progress(stage string, fraction float64, format string, args ...any) {
	if p.Progress != nil {
		p.Progress(Progress{Stage: stage, Fraction: fraction, Message: fmt.Sprintf(format, args...)})
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

// Run executes the pipeline. Per-segment failures are recovered and logged;
// only NoSegmentsSurvivedError (or a context cancellation) is terminal.
func (p *Pipeline) Run(ctx context.Context, source *audio.Buffer) (*Result, error) {
	start := time.Now()
	if p.Metrics != nil {
		p.Metrics.RunsStarted.Inc()
	}
	res, err := p.run(ctx, source)
	if p.Metrics != nil {
		p.Metrics.RunDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			p.Metrics.RunsFailed.Inc()
		} else {
			p.Metrics.RunsCompleted.Inc()
		}
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, source *audio.Buffer) (*Result, error) {
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("source buffer: %w", err)
	}

	meta := Metadata{
		RunID:       uuid.NewString(),
		Theme:       p.Params.Theme.String(),
		GeneratedAt: time.Now().UTC(),
	}

	// Stage 1: feature extraction. Failure here is recoverable: selection
	// switches to distributed placement instead.
	p.progress(StageAnalyze, 0, "Analyzing %.0fs of audio", source.Duration())
	stageStart := time.Now()
	feats, err := analysis.Extract(source, analysis.Options{})
	if err != nil {
		p.logf("analysis failed, falling back to distributed placement: %v", err)
		meta.Warnings = append(meta.Warnings, fmt.Sprintf("analysis failed: %v", err))
		feats = nil
	} else {
		meta.Tempo = feats.Tempo
		p.logf("analysis: tempo %.1f bpm, mean energy %.4f, mean centroid %.0f Hz",
			feats.Tempo, feats.MeanEnergy(), feats.MeanCentroid())
	}
	p.Metrics.ObserveStage(StageAnalyze, time.Since(stageStart))
	p.progress(StageAnalyze, 1, "Analysis complete")

	// Stage 2: candidate selection.
	stageStart = time.Now()
	selParams := selection.Params{
		TargetCount: p.Params.TargetCount,
		MinDuration: p.Params.MinDuration,
		MaxDuration: p.Params.MaxDuration,
	}
	cands := selection.Select(feats, source.Duration(), selParams)
	if len(cands) == 0 {
		return nil, &NoSegmentsSurvivedError{Attempted: 0, SelectionMethod: "none"}
	}
	target := selParams.TargetCount
	if target <= 0 {
		target = selection.DefaultTargetCount
	}
	if len(cands) < target {
		insufficient := &InsufficientCandidatesError{Requested: target, Found: len(cands)}
		p.logf("%v, continuing", insufficient)
		meta.Warnings = append(meta.Warnings, insufficient.Error())
	}
	cands = applyDurationBudget(cands, p.Params.TargetDuration)
	meta.SelectionMethod = cands[0].Method.String()
	if p.Metrics != nil {
		p.Metrics.SegmentsSelected.Observe(float64(len(cands)))
		p.Metrics.SelectionMethod.WithLabelValues(meta.SelectionMethod).Inc()
		for _, c := range cands {
			p.Metrics.SegmentConfidence.Observe(c.Confidence)
		}
	}
	p.Metrics.ObserveStage(StageSelect, time.Since(stageStart))
	p.progress(StageSelect, 1, "Selected %d segments (%s)", len(cands), meta.SelectionMethod)

	// Stage 3: parallel per-segment processing.
	stageStart = time.Now()
	proc := &SegmentProcessor{Source: source, Profile: p.Params.Profile, HumHz: p.Params.HumHz}
	runner := &Runner{
		Workers: p.Params.Workers,
		Timeout: p.Params.SegmentTimeout,
		OnSegmentDone: func(done, total int) {
			p.progress(StageProcess, float64(done)/float64(total), "Processed %d/%d segments", done, total)
		},
		OnSegmentError: func(err error) {
			p.logf("segment dropped: %v", err)
			meta.Warnings = append(meta.Warnings, err.Error())
			p.Metrics.DropSegment(dropReason(err))
		},
	}
	buffers, kept, err := runner.Run(ctx, proc.Process, cands)
	if err != nil {
		return nil, err
	}
	if p.Metrics != nil {
		p.Metrics.SegmentsProcessed.Add(float64(len(buffers)))
	}
	p.Metrics.ObserveStage(StageProcess, time.Since(stageStart))

	// Stage 4: transition assembly.
	stageStart = time.Now()
	p.progress(StageAssemble, 0, "Assembling %d segments with %s transitions",
		len(buffers), p.Params.Profile.Transition.Kind)
	mix, err := AssembleMix(buffers, UniformTransitions(p.Params.Profile.Transition, len(buffers)))
	if err != nil {
		return nil, fmt.Errorf("assembling mix: %w", err)
	}
	p.Metrics.ObserveStage(StageAssemble, time.Since(stageStart))

	// Stage 5: mastering pass over the whole mix.
	stageStart = time.Now()
	p.progress(StageMaster, 0, "Mastering")
	if err := Master(mix); err != nil {
		return nil, err
	}
	p.Metrics.ObserveStage(StageMaster, time.Since(stageStart))
	p.progress(StageMaster, 1, "Mix complete: %.1fs", mix.Duration())

	meta.SegmentCount = len(kept)
	meta.TotalDuration = mix.Duration()
	var confSum float64
	for _, c := range kept {
		confSum += c.Confidence
		meta.Segments = append(meta.Segments, SegmentInfo{
			StartTime:  c.StartTime,
			Duration:   c.Duration,
			Confidence: c.Confidence,
			Method:     c.Method.String(),
		})
	}
	meta.AverageConfidence = confSum / float64(len(kept))
	if p.Metrics != nil {
		p.Metrics.MixDuration.Observe(mix.Duration())
	}
	return &Result{Mix: mix, Metadata: meta}, nil
}

// applyDurationBudget trims the candidate list until the summed segment
// durations fit the budget, dropping the lowest-confidence candidates first
// but always keeping at least one. Chronological order is preserved.
func applyDurationBudget(cands []selection.Candidate, budget float64) []selection.Candidate {
	if budget <= 0 {
		return cands
	}
	kept := make([]selection.Candidate, len(cands))
	copy(kept, cands)
	total := 0.0
	for _, c := range kept {
		total += c.Duration
	}
	for total > budget && len(kept) > 1 {
		weakest := 0
		for i, c := range kept {
			if c.Confidence < kept[weakest].Confidence {
				weakest = i
			}
		}
		total -= kept[weakest].Duration
		kept = append(kept[:weakest], kept[weakest+1:]...)
	}
	return kept
}

// dropReason classifies a per-segment failure for the metrics sink.
func dropReason(err error) string {
	var oor *SegmentOutOfRangeError
	var to *SegmentTimeoutError
	switch {
	case errors.As(err, &oor):
		return "out_of_range"
	case errors.As(err, &to):
		return "timeout"
	default:
		return "error"
	}
}
