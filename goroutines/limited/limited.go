/*
Package limited provides a goroutine execution Pool that spins a goroutine per Submit()
but is hard limited to the number of goroutines that can run at any time.

Fresh goroutines start fast and are only slightly slower than the pooled version, which
makes this a good choice for a pool that is created for a single check and torn down.

See the examples in the parent package "goroutines" for an overview of using pools.
*/
package limited

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gostdlib/internals/otel/span"
	"github.com/gostdlib/maybesync/goroutines"
	"github.com/gostdlib/maybesync/goroutines/internal/pool"
)

const pkg = "github.com/gostdlib/maybesync/goroutines/limited"

var _ goroutines.Pool = &Pool{}

// Pool is a pool of goroutines.
type Pool struct {
	wg        sync.WaitGroup
	running   atomic.Int64
	pool.Pool // Implements the pool.Preventer interface
	slots     chan struct{}
	closed    atomic.Bool
}

// New creates a new Pool. "size" is the number of goroutines that can execute concurrently.
func New(size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("cannot have a Pool with size < 1")
	}
	return &Pool{slots: make(chan struct{}, size)}, nil
}

// Close waits for all submitted jobs to stop. Later calls to Submit return an error.
func (p *Pool) Close() {
	p.closed.Store(true)
	p.wg.Wait()
}

// Wait will wait for all goroutines in the pool to finish. If you need to only
// wait on a subset of jobs, use a WaitGroup in your job.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Len returns the maximum number of jobs that run at once.
func (p *Pool) Len() int {
	return cap(p.slots)
}

// Running returns the number of running jobs in the pool.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// NonBlocking indicates that if we are at our limit, we still run the goroutine
// and it is not counted against the total. This is useful when you want to track
// the statistics still but need this goroutine to run and don't want to do it naked.
func NonBlocking() goroutines.SubmitOption {
	return func(opt *pool.SubmitOptions) error {
		if err := opt.Require(pool.Limited, "NonBlocking"); err != nil {
			return err
		}
		opt.NonBlocking = true
		return nil
	}
}

// Caller sets the name of the calling function so that traces can differentiate
// who is using the goroutines in the pool. If this is not set, we will use runtime.FuncForPC().
func Caller(name string) goroutines.SubmitOption {
	return func(opt *pool.SubmitOptions) error {
		if err := opt.Require(pool.Limited, "Caller"); err != nil {
			return err
		}
		opt.Caller = name
		return nil
	}
}

// Submit submits the runner to be executed. It blocks while the pool is at its limit,
// unless NonBlocking() is passed.
func (p *Pool) Submit(ctx context.Context, runner goroutines.Job, options ...goroutines.SubmitOption) error {
	spanner := span.Get(ctx)
	if runner == nil {
		err := fmt.Errorf("cannot submit a runner that is nil")
		spanner.Error(err)
		return err
	}
	if p.closed.Load() {
		err := fmt.Errorf("cannot submit to a closed Pool")
		spanner.Error(err)
		return err
	}

	opts := pool.SubmitOptions{Type: pool.Limited}
	for _, o := range options {
		if err := o(&opts); err != nil {
			spanner.Error(err)
			return err
		}
	}

	now := time.Now()
	fcn := callerName(opts)

	held := false
	if !opts.NonBlocking {
		select {
		case p.slots <- struct{}{}:
		default:
			p.blockEvent(spanner, fcn, now)
			p.slots <- struct{}{}
		}
		held = true
	}
	p.submitEvent(spanner, fcn, opts.NonBlocking, now)

	p.wg.Add(1)
	p.running.Add(1)

	go func() {
		defer p.wg.Done()
		defer p.running.Add(-1)
		if held {
			defer func() { <-p.slots }()
		}
		runner(ctx)
	}()

	return nil
}

func (p *Pool) submitEvent(spanner span.Span, fcn string, nonBlock bool, t time.Time) {
	if spanner.Span == nil || !spanner.Span.IsRecording() {
		return
	}
	spanner.Event(
		"Pool.Submit() called",
		"pkg", pkg,
		"caller", fcn,
		"non_blocking", nonBlock,
		"submit_latency_ns", time.Since(t),
	)
}

func (p *Pool) blockEvent(spanner span.Span, fcn string, t time.Time) {
	if spanner.Span == nil || !spanner.Span.IsRecording() {
		return
	}
	spanner.Event(
		"Pool.Submit() blocking....",
		"pkg", pkg,
		"caller", fcn,
		"event", "blocking",
		"submit_latency_ns", time.Since(t),
	)
}

func callerName(opts pool.SubmitOptions) string {
	if opts.Caller != "" {
		return opts.Caller
	}

	pc, _, _, ok := runtime.Caller(2)
	details := runtime.FuncForPC(pc)
	if ok && details != nil {
		return details.Name()
	}
	return ""
}
