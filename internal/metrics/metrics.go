// Package metrics exposes per-run pipeline counters and timings as
// Prometheus collectors, served from an optional /metrics listener.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the mix pipeline.
type Metrics struct {
	// Run lifecycle
	RunsStarted   prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsFailed    prometheus.Counter
	RunDuration   prometheus.Histogram

	// Stage timings
	StageDuration *prometheus.HistogramVec

	// Selection
	SegmentsSelected  prometheus.Histogram
	SelectionMethod   *prometheus.CounterVec
	SegmentConfidence prometheus.Histogram

	// Segment processing
	SegmentsProcessed prometheus.Counter
	SegmentsDropped   *prometheus.CounterVec

	// Output
	MixDuration prometheus.Histogram
}

// New creates and registers all pipeline metrics. Pass nil to register on
// the default registry; tests pass their own prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixdown_runs_started_total",
			Help: "Total number of mix runs started",
		}),
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixdown_runs_completed_total",
			Help: "Total number of mix runs completed successfully",
		}),
		RunsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixdown_runs_failed_total",
			Help: "Total number of mix runs that ended in a terminal failure",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mixdown_run_duration_seconds",
			Help:    "Wall time of complete mix runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mixdown_stage_duration_seconds",
			Help:    "Wall time per pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
		SegmentsSelected: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mixdown_segments_selected",
			Help:    "Candidate segments chosen per run",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		SelectionMethod: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mixdown_selection_method_total",
			Help: "Selection strategy that produced each run's candidates",
		}, []string{"method"}),
		SegmentConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mixdown_segment_confidence",
			Help:    "Confidence of selected segments",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		SegmentsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mixdown_segments_processed_total",
			Help: "Segments that completed DSP processing",
		}),
		SegmentsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mixdown_segments_dropped_total",
			Help: "Segments dropped before assembly, by reason",
		}, []string{"reason"}),
		MixDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mixdown_mix_duration_seconds",
			Help:    "Duration of exported mixes",
			Buckets: prometheus.ExponentialBuckets(15, 2, 8),
		}),
	}
}

// ObserveStage records one stage's wall time. Nil-safe so the pipeline can
// run without a metrics sink.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// DropSegment counts one dropped segment by reason ("out_of_range",
// "timeout", "error").
func (m *Metrics) DropSegment(reason string) {
	if m == nil {
		return
	}
	m.SegmentsDropped.WithLabelValues(reason).Inc()
}

// Serve exposes /metrics on addr in a background goroutine. Errors from the
// listener are reported through errFn rather than crashing a run in flight.
func Serve(addr string, errFn func(error)) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && errFn != nil {
			errFn(err)
		}
	}()
}
