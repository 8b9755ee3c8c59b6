package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/clipforge/mixdown/internal/audio"
	"github.com/clipforge/mixdown/internal/selection"
)

// Worker pool defaults.
const (
	DefaultWorkerLimit    = 4
	DefaultSegmentTimeout = 30 * time.Second
)

// Runner fans segment processing out across a bounded worker pool and
// reassembles results in candidate order. Individual failures and timeouts
// drop their segment; only losing every segment is fatal.
type Runner struct {
	Workers int           // 0 means min(4, segments, available parallelism)
	Timeout time.Duration // per segment, 0 means 30s

	// OnSegmentDone, when set, is called after each segment finishes
	// (successfully or not) with the running completion count.
	OnSegmentDone func(done, total int)

	// OnSegmentError, when set, receives each non-fatal per-segment failure.
	OnSegmentError func(err error)
}

func (r *Runner) poolSize(segments int) int {
	size := r.Workers
	if size <= 0 {
		size = DefaultWorkerLimit
	}
	if segments < size {
		size = segments
	}
	if procs := runtime.GOMAXPROCS(0); procs < size {
		size = procs
	}
	if size < 1 {
		size = 1
	}
	return size
}

// ProcessFunc renders one candidate into a new buffer. SegmentProcessor's
// Process method is the production implementation.
type ProcessFunc func(ctx context.Context, idx int, cand selection.Candidate) (*audio.Buffer, error)

// Run processes every candidate and returns the surviving buffers with
// their candidates, both in chronological candidate order regardless of
// which worker finished first. Failed slots are filtered out; if nothing
// survives the run fails with NoSegmentsSurvivedError.
func (r *Runner) Run(ctx context.Context, process ProcessFunc, cands []selection.Candidate) ([]*audio.Buffer, []selection.Candidate, error) {
	if len(cands) == 0 {
		return nil, nil, &NoSegmentsSurvivedError{Attempted: 0, SelectionMethod: "none"}
	}

	results := make([]*audio.Buffer, len(cands))
	jobs := make(chan int)
	var done int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < r.poolSize(len(cands)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				buf, err := r.runOne(ctx, process, idx, cands[idx])
				mu.Lock()
				if err != nil {
					if r.OnSegmentError != nil {
						r.OnSegmentError(err)
					}
				} else {
					results[idx] = buf
				}
				done++
				if r.OnSegmentDone != nil {
					r.OnSegmentDone(done, len(cands))
				}
				mu.Unlock()
			}
		}()
	}
	for idx := range cands {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	var buffers []*audio.Buffer
	var kept []selection.Candidate
	for idx, buf := range results {
		if buf == nil {
			continue
		}
		buffers = append(buffers, buf)
		kept = append(kept, cands[idx])
	}
	if len(buffers) == 0 {
		return nil, nil, &NoSegmentsSurvivedError{
			Attempted:       len(cands),
			SelectionMethod: cands[0].Method.String(),
		}
	}
	return buffers, kept, nil
}

// runOne bounds a single segment with the per-segment timeout. The DSP work
// has no suspension points, so the deadline is enforced by a watchdog select
// rather than cooperative cancellation.
func (r *Runner) runOne(ctx context.Context, process ProcessFunc, idx int, cand selection.Candidate) (*audio.Buffer, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultSegmentTimeout
	}
	segCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		buf *audio.Buffer
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		buf, err := process(segCtx, idx, cand)
		ch <- outcome{buf, err}
	}()

	select {
	case out := <-ch:
		return out.buf, out.err
	case <-segCtx.Done():
		if errors.Is(segCtx.Err(), context.DeadlineExceeded) {
			return nil, &SegmentTimeoutError{Index: idx, Timeout: timeout}
		}
		return nil, &SegmentProcessingError{Index: idx, Err: segCtx.Err()}
	}
}
