/*
Package check exercises the maybe realization compiled into the running binary against the
properties every realization must hold: identical single-goroutine behavior, release exactly
once, shared-xor-exclusive access, borrow-rule enforcement, untorn scalar values and a single
order of scalar updates.

Each check returns a Report. A check that finds a violation is not an error: the Report has
Passed set to false. An error means the check could not run.

	reports, err := check.Run(ctx, nil, check.WithWorkers(runtime.NumCPU()))
	if err != nil {
		return err
	}
	for _, r := range reports {
		fmt.Println(r.Check, r.Passed)
	}

Without the sync build tag every check runs on a single worker.
*/
package check

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gostdlib/internals/otel/span"
	"github.com/gostdlib/maybesync/goroutines"
	"github.com/gostdlib/maybesync/goroutines/pooled"
	"github.com/gostdlib/maybesync/prim/maybe"
	"github.com/gostdlib/maybesync/prim/wait"
	"github.com/johnsiilver/calloptions"
	"go.opentelemetry.io/otel/codes"
)

// Report is the outcome of one check.
type Report struct {
	RunID       string        `json:"run_id" csv:"run_id" yaml:"run_id"`
	Mode        string        `json:"mode" csv:"mode" yaml:"mode"`
	Check       string        `json:"check" csv:"check" yaml:"check"`
	Workers     int           `json:"workers" csv:"workers" yaml:"workers"`
	Iterations  int           `json:"iterations" csv:"iterations" yaml:"iterations"`
	Passed      bool          `json:"passed" csv:"passed" yaml:"passed"`
	Violations  int64         `json:"violations" csv:"violations" yaml:"violations"`
	Fingerprint string        `json:"fingerprint,omitempty" csv:"fingerprint" yaml:"fingerprint,omitempty"`
	Elapsed     time.Duration `json:"elapsed_ns" csv:"elapsed_ns" yaml:"elapsed"`
	Detail      string        `json:"detail,omitempty" csv:"detail" yaml:"detail,omitempty"`
}

// checkFunc runs a check, adding violations and details to r.
type checkFunc func(ctx context.Context, o checkOptions, r *Report) error

// Names of the checks, in the order Run() executes them.
const (
	NameTranscript = "transcript"
	NameLifecycle  = "lifecycle"
	NameExclusion  = "exclusion"
	NameBorrowing  = "borrowing"
	NameRoundTrip  = "roundtrip"
	NameOrdering   = "ordering"
)

var order = []string{NameTranscript, NameLifecycle, NameExclusion, NameBorrowing, NameRoundTrip, NameOrdering}

var checks = map[string]checkFunc{
	NameTranscript: transcript,
	NameLifecycle:  lifecycle,
	NameExclusion:  exclusion,
	NameBorrowing:  borrowing,
	NameRoundTrip:  roundTrip,
	NameOrdering:   ordering,
}

// Names returns the names of all checks.
func Names() []string {
	return append([]string(nil), order...)
}

// Run runs the named checks in the order given, or every check if names is empty. All
// reports share one run ID.
func Run(ctx context.Context, names []string, options ...Option) ([]Report, error) {
	if len(names) == 0 {
		names = order
	}
	for _, n := range names {
		if _, ok := checks[n]; !ok {
			return nil, fmt.Errorf("unknown check %q, want one of %v", n, order)
		}
	}

	opts, err := newOptions(options)
	if err != nil {
		return nil, err
	}
	options = append(options, WithRunID(opts.runID))

	reports := make([]Report, 0, len(names))
	for _, n := range names {
		r, err := One(ctx, n, options...)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// One runs a single named check.
func One(ctx context.Context, name string, options ...Option) (Report, error) {
	fn, ok := checks[name]
	if !ok {
		return Report{}, fmt.Errorf("unknown check %q, want one of %v", name, order)
	}
	opts, err := newOptions(options)
	if err != nil {
		return Report{}, err
	}

	ctx, spanner := span.New(ctx, "maybe/check."+name)
	defer spanner.End()

	r := Report{
		RunID:      opts.runID,
		Mode:       maybe.Mode(),
		Check:      name,
		Workers:    opts.workers,
		Iterations: opts.iterations,
	}

	start := time.Now()
	err = fn(ctx, opts, &r)
	r.Elapsed = time.Since(start)
	r.Passed = err == nil && r.Violations == 0

	if err != nil {
		spanner.Error(err)
		return r, fmt.Errorf("check %s: %w", name, err)
	}
	if !r.Passed {
		spanner.Status(codes.Error, r.Detail)
	}
	spanner.Event(
		"check done",
		"check", name,
		"mode", r.Mode,
		"passed", r.Passed,
		"violations", r.Violations,
		"elapsed_ns", r.Elapsed,
	)
	return r, nil
}

// Transcript runs Script() and compares it with the transcript every realization must produce.
// The Report carries a Fingerprint of what was observed, so binaries built with and without the
// sync tag can be compared.
func Transcript(ctx context.Context, options ...Option) (Report, error) {
	return One(ctx, NameTranscript, options...)
}

// Lifecycle checks that an Arc's release function runs once, after the last handle is dropped.
func Lifecycle(ctx context.Context, options ...Option) (Report, error) {
	return One(ctx, NameLifecycle, options...)
}

// Exclusion checks that a RefCell never grants an exclusive borrow alongside another borrow.
func Exclusion(ctx context.Context, options ...Option) (Report, error) {
	return One(ctx, NameExclusion, options...)
}

// Borrowing checks that conflicting borrows are refused and later granted once released.
func Borrowing(ctx context.Context, options ...Option) (Report, error) {
	return One(ctx, NameBorrowing, options...)
}

// RoundTrip checks that a Cell never returns a value that was not stored.
func RoundTrip(ctx context.Context, options ...Option) (Report, error) {
	return One(ctx, NameRoundTrip, options...)
}

// Ordering checks that Cell updates are seen in the order they were made.
func Ordering(ctx context.Context, options ...Option) (Report, error) {
	return One(ctx, NameOrdering, options...)
}

func newOptions(options []Option) (checkOptions, error) {
	opts := checkOptions{workers: 8, iterations: 1000}
	if err := calloptions.ApplyOptions(&opts, options); err != nil {
		return checkOptions{}, err
	}
	if !maybe.SyncEnabled {
		opts.workers = 1
	}
	if opts.runID == "" {
		opts.runID = uuid.NewString()
	}
	return opts, nil
}

// violate records a violation. The first detail recorded is kept.
func (r *Report) violate(format string, a ...any) {
	r.violateN(1, format, a...)
}

// violateN records n violations that share one detail.
func (r *Report) violateN(n int64, format string, a ...any) {
	if n <= 0 {
		return
	}
	r.Violations += n
	if r.Detail == "" {
		r.Detail = fmt.Sprintf(format, a...)
	}
}

// violateErrs records one violation per error in e, keeping the first as the detail.
func (r *Report) violateErrs(e *goroutines.Errors) {
	if err := e.Error(); err != nil {
		r.violateN(int64(e.Len()), "%s", err)
	}
}

// workers runs jobs on the pool chosen by the options.
type workers struct {
	pool  goroutines.Pool
	n     int
	close func()
}

func newWorkers(o checkOptions) (*workers, error) {
	if o.pool != nil {
		if o.pool.Len() < o.workers {
			return nil, fmt.Errorf("pool runs %d jobs at once, need %d workers", o.pool.Len(), o.workers)
		}
		return &workers{pool: o.pool, n: o.workers, close: func() {}}, nil
	}

	p, err := pooled.New(o.workers)
	if err != nil {
		return nil, err
	}
	return &workers{pool: p, n: o.workers, close: p.Close}, nil
}

// contend runs fn once per worker, all at the same time, and waits for them.
func (w *workers) contend(ctx context.Context, name string, fn func(ctx context.Context, worker int) error) error {
	g := wait.Group{Name: name, Pool: w.pool}
	return g.Together(ctx, w.n, fn)
}
