// Package trial runs batches of independent sorts on a worker pool and
// aggregates their comparison counts.
package trial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/joshuapare/lozenge/internal/pattern"
	"github.com/joshuapare/lozenge/merge"
	"github.com/joshuapare/lozenge/record"
	"github.com/joshuapare/lozenge/stats"
	"github.com/joshuapare/lozenge/verify"
)

// ErrFailed reports that at least one trial produced a bad sort.
var ErrFailed = errors.New("trial: sort failed verification")

// Spec describes a batch of random trials.
type Spec struct {
	Size    int
	Trials  int
	Workers int

	Layout pattern.Config
	Nudges int    // duplicate keys introduced per trial
	Seed   uint64 // trial i uses Seed+i

	// Options for every sort. SwitchLevel is lowered to fit Size.
	// Counter is replaced by a per-trial collector.
	Options merge.Options

	// Verify checks every result for order, coverage and reversibility.
	Verify bool

	Logger *slog.Logger
}

// Result aggregates a finished batch.
type Result struct {
	Size     int
	Trials   int
	Stats    *stats.Collector
	Elapsed  time.Duration
	Failures []Failure
}

// Failure records one trial whose result did not verify.
type Failure struct {
	Trial int
	Keys  []uint32
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("trial %d (%d keys): %v", f.Trial, len(f.Keys), f.Err)
}

// RecordsPerSecond returns the sorting throughput of the batch.
func (r *Result) RecordsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Size) * float64(r.Trials) / r.Elapsed.Seconds()
}

// batch collects results from concurrent tasks.
type batch struct {
	mu       sync.Mutex
	total    *stats.Collector
	failures []Failure
	done     int
}

func (b *batch) add(c *stats.Collector) {
	b.mu.Lock()
	b.total.Add(c)
	b.done++
	b.mu.Unlock()
}

func (b *batch) fail(f Failure) {
	b.mu.Lock()
	b.failures = append(b.failures, f)
	b.mu.Unlock()
}

// Run executes spec.Trials sorts and returns their combined statistics.
// The returned error wraps ErrFailed when any trial failed; Result is
// still populated in that case.
func Run(ctx context.Context, spec Spec) (*Result, error) {
	if spec.Trials < 1 || spec.Workers < 1 || spec.Size < 0 {
		return nil, fmt.Errorf("trial: need trials, workers >= 1 and size >= 0 (got %d, %d, %d)",
			spec.Trials, spec.Workers, spec.Size)
	}
	opts := spec.Options.ForSize(spec.Size)
	opts.Counter = nil
	if err := opts.Validate(spec.Size); err != nil {
		return nil, err
	}
	stable := opts.Upper.Stable() && opts.Lower.Stable()
	log := spec.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	b := &batch{total: stats.New()}
	start := time.Now()
	err := forEach(ctx, spec.Workers, spec.Trials, log, func(i int) {
		rng := pattern.Seeded(spec.Seed + uint64(i))
		keys := pattern.Generate(rng, spec.Size, spec.Layout)
		pattern.Nudge(rng, keys, spec.Nudges)
		defer func() {
			if v := recover(); v != nil {
				b.fail(Failure{Trial: i, Keys: keys, Err: panicError(v)})
			}
		}()

		c := stats.New()
		o := opts
		o.Counter = c
		recs := record.New(keys)
		res, err := merge.Sort(recs, o)
		if err == nil && spec.Verify {
			err = verify.All(recs, res.Head, res.Tail, stable)
		}
		if err != nil {
			b.fail(Failure{Trial: i, Keys: keys, Err: err})
			return
		}
		c.FinishSort()
		b.add(c)
	})
	res := &Result{
		Size:     spec.Size,
		Trials:   b.done,
		Stats:    b.total,
		Elapsed:  time.Since(start),
		Failures: sortFailures(b.failures),
	}
	log.Debug("trials complete", "size", spec.Size, "trials", res.Trials,
		"failures", len(res.Failures), "elapsed", res.Elapsed,
		"upper", opts.Upper.String(), "lower", opts.Lower.String())
	if err != nil {
		return res, err
	}
	if len(res.Failures) > 0 {
		return res, fmt.Errorf("%w: %d of %d trials, first: %v",
			ErrFailed, len(res.Failures), spec.Trials, res.Failures[0])
	}
	return res, nil
}

func sortFailures(fs []Failure) []Failure {
	slices.SortFunc(fs, func(a, b Failure) int { return a.Trial - b.Trial })
	return fs
}

// panicError converts a recovered value, usually a *merge.InvariantError,
// to an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}

// forEach runs task(0..count-1) on a pool of workers and waits for all
// submitted tasks. Tasks not yet started when ctx is done are skipped.
func forEach(ctx context.Context, workers, count int, log *slog.Logger, task func(i int)) error {
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v interface{}) {
		log.Error("trial worker panic", "value", v)
	}))
	if err != nil {
		return fmt.Errorf("trial: worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	defer wg.Wait()
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			task(i)
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("trial: submit: %w", err)
		}
	}
	return ctx.Err()
}
