/*
Package wait provides a safer alternative to sync.WaitGroup for running a set of goroutines
and collecting their first error. The maybe check harness runs its contending workers with it.

This package can leverage our goroutines.Pool types for more control over concurrency and
records OTEL span events around what is happening in your goroutines.

Here is a basic example:

	g := wait.Group{Name: "readers"}
	cell := maybe.NewRefCell(0)

	for i := 0; i < 8; i++ {
		g.Go(ctx, func(ctx context.Context) error {
			cell.View(func(v int) { fmt.Println(v) })
			return nil
		})
	}

	if err := g.Wait(ctx); err != nil {
		// Handle error
	}
*/
package wait

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gostdlib/internals/otel/span"
	"github.com/gostdlib/maybesync/goroutines"
)

// FuncCall is a function call that can be used in various functions or methods
// in this package.
type FuncCall func(ctx context.Context) error

// Group runs goroutines and handles the .Add() and .Done() calls of a sync.WaitGroup for
// you. An optional goroutines.Pool gives concurrency control and goroutine reuse (without
// one, each call gets a goroutine). Running() reports how many goroutines are running.
// CancelOnErr mimics the golang.org/x/sync/errgroup package. Name labels the OTEL events
// recorded on the span in the Context passed to Wait().
type Group struct {
	count  atomic.Int64
	total  atomic.Int64
	errors atomic.Pointer[error]
	wg     sync.WaitGroup

	noCopy noCopy // Flag govet to prevent copying

	// Pool is an optional goroutines.Pool for concurrency control and reuse.
	Pool goroutines.Pool
	// CancelOnErr holds a CancelFunc that will be called if any goroutine
	// returns an error. This will automatically be called when Wait() is
	// finished and then reset to nil to allow reuse.
	CancelOnErr context.CancelFunc
	// Name provides an optional name for a Group for the purpose of
	// OTEL logging information.
	Name string
	// PoolOptions are the options to use when submitting jobs to the Pool.
	PoolOptions []goroutines.SubmitOption
}

// Go spins off a goroutine that executes f(ctx). This will use the underlying
// goroutines.Pool if provided. If the Pool rejects the job, the error is recorded
// and returned by Wait().
func (w *Group) Go(ctx context.Context, f FuncCall) {
	w.count.Add(1)
	w.total.Add(1)
	w.wg.Add(1)

	run := func(ctx context.Context) {
		defer w.count.Add(-1)
		defer w.wg.Done()

		if ctx.Err() != nil {
			applyErr(&w.errors, ctx.Err())
			return
		}

		if err := f(ctx); err != nil {
			applyErr(&w.errors, err)
			if w.CancelOnErr != nil {
				w.CancelOnErr()
			}
		}
	}

	if w.Pool == nil {
		go run(ctx)
		return
	}

	if err := w.Pool.Submit(ctx, run, w.PoolOptions...); err != nil {
		w.count.Add(-1)
		w.wg.Done()
		applyErr(&w.errors, fmt.Errorf("pool rejected job: %w", err))
	}
}

// Together runs f(ctx, i) for every i in [0, n) on its own goroutine. No call starts until all
// n goroutines have been handed out, so the calls contend with each other from the start.
// It returns what Wait() returns. A Pool that cannot run n jobs at once is an error, as the
// held goroutines would never be joined by the rest.
func (w *Group) Together(ctx context.Context, n int, f func(ctx context.Context, i int) error) error {
	if w.Pool != nil && w.Pool.Len() < n {
		return fmt.Errorf("Together(%d): pool only runs %d jobs at once", n, w.Pool.Len())
	}

	gate := make(chan struct{})
	for i := 0; i < n; i++ {
		i := i
		w.Go(ctx, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-gate:
			}
			return f(ctx, i)
		})
	}
	span.Get(ctx).Event("Group.Together() released", "name", w.Name, "goroutines", n)
	close(gate)

	return w.Wait(ctx)
}

// Running returns the number of goroutines that are currently running.
func (w *Group) Running() int {
	return int(w.count.Load())
}

// Wait blocks until all goroutines are finshed. The passed Context cannot be cancelled.
func (w *Group) Wait(ctx context.Context) error {
	if w.Name == "" {
		w.Name = "unspecified"
	}

	// OTEL stuff.
	now := time.Now()
	spanner := span.Get(ctx)
	w.waitOTELStart(spanner)
	defer w.waitOTELEnd(spanner, now)

	w.wg.Wait()

	if w.CancelOnErr != nil {
		w.CancelOnErr()
		w.CancelOnErr = nil
	}
	err := w.errors.Load()
	if err != nil {
		spanner.Error(*err)
		return *err
	}
	return nil
}

// waitOTELStart is called when Wait() is called and will log information to the span.
func (w *Group) waitOTELStart(spanner span.Span) {
	if spanner.Span == nil || !spanner.Span.IsRecording() {
		return
	}

	spanner.Event(
		"Group.Wait() called",
		"name", w.Name,
		"total goroutines", w.total.Load(),
		"cancelOnErr", w.CancelOnErr != nil,
		"using pool", w.Pool != nil,
	)
}

// waitOTELEnd is called when Wait() is finished and will log information to the span.
func (w *Group) waitOTELEnd(spanner span.Span, t time.Time) {
	if spanner.Span != nil && spanner.Span.IsRecording() {
		spanner.Event("Group.Wait() done", "name", w.Name, "elapsed_ns", time.Since(t))
	}

	// Reset counters for reuse.
	w.count.Store(0)
	w.total.Store(0)
	w.errors.Store(nil)
}

// applyErr records the first error. Later errors are joined onto it, except context
// cancellation, which is only recorded if it is the first error.
// This uses atomic compare and swap operations to avoid a mutex.
func applyErr(ptr *atomic.Pointer[error], err error) {
	for {
		existing := ptr.Load()
		if existing == nil {
			if ptr.CompareAndSwap(nil, &err) {
				return
			}
			continue
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		joined := errors.Join(*existing, err)
		if ptr.CompareAndSwap(existing, &joined) {
			return
		}
	}
}

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
