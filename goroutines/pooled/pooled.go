/*
Package pooled provides a Pool of long-lived goroutines that run submitted Jobs, instead of
spinning off a goroutine per Job. Contention checks that run many short rounds use it so that
the same goroutines hammer a primitive round after round.

See the examples in the parent package "goroutines" for an overview of using pools.
*/
package pooled

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

const pkg = "github.com/gostdlib/maybesync/goroutines/pooled"

var _ goroutines.Pool = &Pool{}

// Pool is a pool of goroutines.
type Pool struct {
	wg        sync.WaitGroup
	running   atomic.Int64
	pool.Pool // Implements the pool.Preventer interface
	queue     chan submit
	size      int
	closed    atomic.Bool
}

type submit struct {
	ctx context.Context
	job goroutines.Job
}

// New creates a new Pool with "size" goroutines that each run one Job at a time.
func New(size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("cannot have a Pool with size < 1")
	}

	p := &Pool{queue: make(chan submit, 1), size: size}
	for i := 0; i < size; i++ {
		go p.runner()
	}
	return p, nil
}

// Close waits for all submitted jobs to stop, then stops all goroutines. Calling Close more
// than once is safe.
func (p *Pool) Close() {
	p.wg.Wait()
	if p.closed.CompareAndSwap(false, true) {
		close(p.queue)
	}
}

// Wait will wait for all goroutines in the pool to finish. If you need to only
// wait on a subset of jobs, use a WaitGroup in your job.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Len returns the number of goroutines in the pool.
func (p *Pool) Len() int {
	return p.size
}

// Running returns the number of running jobs in the pool.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// NonBlocking indicates that if a pooled goroutine is not available, spin off
// a goroutine and do not block.
func NonBlocking() goroutines.SubmitOption {
	return func(opt *pool.SubmitOptions) error {
		if err := opt.Require(pool.Pooled, "NonBlocking"); err != nil {
			return err
		}
		opt.NonBlocking = true
		return nil
	}
}

// Caller sets the name of the calling function so that traces can differentiate
// who is using the goroutines in the pool. Generic functions cannot be named reliably
// with runtime.FuncForPC, so callers from generic code should set this.
func Caller(name string) goroutines.SubmitOption {
	return func(opt *pool.SubmitOptions) error {
		if err := opt.Require(pool.Pooled, "Caller"); err != nil {
			return err
		}
		opt.Caller = name
		return nil
	}
}

// Submit submits the runner to be executed.
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

	opts := pool.SubmitOptions{Type: pool.Pooled}
	for _, o := range options {
		if err := o(&opts); err != nil {
			spanner.Error(err)
			return err
		}
	}

	now := time.Now()
	s := submit{ctx: ctx, job: runner}
	fcn := callerName(opts)

	p.wg.Add(1)
	p.running.Add(1)
	if opts.NonBlocking {
		select {
		case p.queue <- s:
		default:
			go func() {
				defer p.wg.Done()
				defer p.running.Add(-1)
				s.job(s.ctx)
			}()
		}
		p.submitEvent(spanner, fcn, opts.NonBlocking, now)
		return nil
	}

	select {
	case p.queue <- s:
	default:
		p.blockEvent(spanner, fcn, now)
		p.queue <- s
	}
	p.submitEvent(spanner, fcn, opts.NonBlocking, now)
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
		"size", p.size,
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
		"size", p.size,
		"event", "blocking",
		"submit_latency_ns", time.Since(t),
	)
}

// runner is used to run any function that comes in on the queue.
func (p *Pool) runner() {
	for s := range p.queue {
		s.job(s.ctx)
		p.running.Add(-1)
		p.wg.Done()
	}
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
