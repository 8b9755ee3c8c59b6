package pipeline

import (
	"fmt"
	"time"
)

// SegmentOutOfRangeError reports a candidate whose time range exceeds the
// source bounds. The affected segment is skipped; the run continues.
type SegmentOutOfRangeError struct {
	Index          int
	StartTime      float64
	Duration       float64
	SourceDuration float64
}

func (e *SegmentOutOfRangeError) Error() string {
	return fmt.Sprintf("segment %d: range [%.1fs, %.1fs) exceeds source duration %.1fs",
		e.Index, e.StartTime, e.StartTime+e.Duration, e.SourceDuration)
}

// SegmentProcessingError reports a worker failure on one segment. The
// segment is dropped; the run continues.
type SegmentProcessingError struct {
	Index int
	Err   error
}

func (e *SegmentProcessingError) Error() string {
	return fmt.Sprintf("segment %d: processing failed: %v", e.Index, e.Err)
}

func (e *SegmentProcessingError) Unwrap() error { return e.Err }

// SegmentTimeoutError reports a worker exceeding its per-segment deadline.
type SegmentTimeoutError struct {
	Index   int
	Timeout time.Duration
}

func (e *SegmentTimeoutError) Error() string {
	return fmt.Sprintf("segment %d: processing exceeded %s", e.Index, e.Timeout)
}

// InsufficientCandidatesError records that selection produced fewer usable
// segments than requested. It is advisory; the run continues with what was
// found.
type InsufficientCandidatesError struct {
	Requested int
	Found     int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("selection found %d of %d requested segments", e.Found, e.Requested)
}

// NoSegmentsSurvivedError is terminal: every candidate was skipped, failed
// or timed out, and no mix can be assembled.
type NoSegmentsSurvivedError struct {
	Attempted       int
	SelectionMethod string
}

func (e *NoSegmentsSurvivedError) Error() string {
	return fmt.Sprintf("no segments survived processing (%d attempted, selection method %s)",
		e.Attempted, e.SelectionMethod)
}

// ExportError is terminal: the finished mix could not be written out.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("exporting %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
