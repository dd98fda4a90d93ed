// Package batch distributes document pairs over a fixed pool of workers
// and collects their results.
package batch

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/compare"
)

// PairComparer compares the two files of a pair.
type PairComparer interface {
	CompareFiles(id, oldPath, newPath string) (compare.DocumentResult, error)
}

// Recorder receives per-pair measurements. Status is "completed",
// "failed" or "skipped".
type Recorder interface {
	PairDone(status string, elapsed time.Duration)
	PagesDone(res compare.DocumentResult)
}

// Options configures an Orchestrator.
type Options struct {
	// WorkerCount is the number of concurrent pair comparisons.
	// Zero or less uses runtime.NumCPU().
	WorkerCount int
	// BatchSize is how many pairs are submitted at a time; each group is
	// drained before the next one is queued. Zero or less submits all.
	BatchSize int
}

// Orchestrator runs pair comparisons on a worker pool.
type Orchestrator struct {
	comparer  PairComparer
	workers   int
	batchSize int
	logger    *zap.Logger
	recorder  Recorder
	stat      func(string) (os.FileInfo, error)
}

// NewOrchestrator creates an Orchestrator. logger and recorder may be nil.
func NewOrchestrator(c PairComparer, opts Options, logger *zap.Logger, recorder Recorder) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Orchestrator{
		comparer:  c,
		workers:   workers,
		batchSize: opts.BatchSize,
		logger:    logger,
		recorder:  recorder,
		stat:      os.Stat,
	}
}

// PairError is a pair that was skipped or failed.
type PairError struct {
	Pair Pair
	Err  error
}

func (e PairError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pair.ID, e.Err)
}

func (e PairError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one Run.
type Result struct {
	RunID     uuid.UUID
	Documents map[string]compare.DocumentResult
	Skipped   []PairError
	Failed    []PairError
	Attempted int
	Completed int
	Elapsed   time.Duration
}

// Differences counts the compared documents that have differences.
func (r *Result) Differences() int {
	n := 0
	for _, d := range r.Documents {
		if d.HasDifference {
			n++
		}
	}
	return n
}

// AveragePerPair is the wall time of the run divided by the pairs attempted.
func (r *Result) AveragePerPair() time.Duration {
	if r.Attempted == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Attempted)
}

// Summary logs the aggregate outcome of the run.
func (r *Result) Summary(logger *zap.Logger) {
	logger.Info("comparison finished",
		zap.String("run_id", r.RunID.String()),
		zap.Duration("elapsed", r.Elapsed),
		zap.Duration("average_per_pair", r.AveragePerPair()),
		zap.Int("attempted", r.Attempted),
		zap.Int("completed", r.Completed),
		zap.Int("with_differences", r.Differences()),
		zap.Int("skipped", len(r.Skipped)),
		zap.Int("failed", len(r.Failed)),
	)
}

// accumulator is the only state shared by workers.
type accumulator struct {
	mu     sync.Mutex
	result *Result
	done   int
	total  int
	logger *zap.Logger
}

func (a *accumulator) completed(doc compare.DocumentResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Documents[doc.ID] = doc
	a.result.Completed++
	a.done++
	a.logger.Info("pair compared",
		zap.String("document", doc.ID),
		zap.Bool("differences", doc.HasDifference),
		zap.Duration("elapsed", doc.Elapsed),
		zap.Int("progress", a.done),
		zap.Int("total", a.total),
	)
}

func (a *accumulator) skipped(e PairError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Skipped = append(a.result.Skipped, e)
	a.done++
	a.logger.Warn("pair skipped",
		zap.String("document", e.Pair.ID),
		zap.Error(e.Err),
		zap.Int("progress", a.done),
		zap.Int("total", a.total),
	)
}

func (a *accumulator) failed(e PairError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Failed = append(a.result.Failed, e)
	a.done++
	a.logger.Error("pair failed",
		zap.String("document", e.Pair.ID),
		zap.Error(e.Err),
		zap.Int("progress", a.done),
		zap.Int("total", a.total),
	)
}

// Run compares every pair and returns once all of them are done. Failing
// or missing pairs are recorded and never stop the run.
func (o *Orchestrator) Run(pairs []Pair) *Result {
	start := time.Now()
	result := &Result{
		RunID:     uuid.New(),
		Documents: make(map[string]compare.DocumentResult, len(pairs)),
		Attempted: len(pairs),
	}
	acc := &accumulator{
		result: result,
		total:  len(pairs),
		logger: o.logger.With(zap.String("run_id", result.RunID.String())),
	}

	acc.logger.Info("starting comparison",
		zap.Int("pairs", len(pairs)),
		zap.Int("workers", o.workers),
		zap.Int("batch_size", o.batchSize),
	)

	jobs := make(chan Pair)
	var pending sync.WaitGroup
	var pool sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		pool.Add(1)
		go func() {
			defer pool.Done()
			for p := range jobs {
				o.process(p, acc)
				pending.Done()
			}
		}()
	}

	size := o.batchSize
	if size <= 0 {
		size = len(pairs)
	}
	for lo := 0; lo < len(pairs); lo += size {
		group := pairs[lo:min(lo+size, len(pairs))]
		pending.Add(len(group))
		for _, p := range group {
			jobs <- p
		}
		pending.Wait()
	}
	close(jobs)
	pool.Wait()

	result.Elapsed = time.Since(start)
	return result
}

func (o *Orchestrator) process(p Pair, acc *accumulator) {
	start := time.Now()

	// a pair enters the accumulator exactly once
	accounted := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if accounted {
			acc.logger.Error("panic after pair was recorded",
				zap.String("document", p.ID),
				zap.Any("panic", r),
			)
			return
		}
		acc.failed(PairError{Pair: p, Err: fmt.Errorf("panic: %v", r)})
		o.record("failed", time.Since(start), nil)
	}()

	if err := o.checkCounterparts(p); err != nil {
		accounted = true
		acc.skipped(PairError{Pair: p, Err: err})
		o.record("skipped", time.Since(start), nil)
		return
	}

	doc, err := o.comparer.CompareFiles(p.ID, p.OldPath, p.NewPath)
	if err != nil {
		accounted = true
		acc.failed(PairError{Pair: p, Err: err})
		o.record("failed", time.Since(start), nil)
		return
	}
	doc.ID = p.ID
	accounted = true
	acc.completed(doc)
	o.record("completed", time.Since(start), &doc)
}

func (o *Orchestrator) checkCounterparts(p Pair) error {
	for _, path := range []string{p.OldPath, p.NewPath} {
		if path == "" {
			return ErrMissingCounterpart
		}
		if _, err := o.stat(path); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingCounterpart, path)
		}
	}
	return nil
}

// record reports to the Recorder. A panicking Recorder is logged and never
// affects the pair's outcome.
func (o *Orchestrator) record(status string, elapsed time.Duration, doc *compare.DocumentResult) {
	if o.recorder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("recorder panicked", zap.String("status", status), zap.Any("panic", r))
		}
	}()
	o.recorder.PairDone(status, elapsed)
	if doc != nil {
		o.recorder.PagesDone(*doc)
	}
}
