/*
Package goroutines defines the goroutine pools used to put a maybe realization under
contention. Implementations live in sub-directories and can be used directly.

A pool bounds how many jobs run at once. When checking the thread-safe realization the
harness sizes the pool to the number of contending workers, so every worker runs in
parallel with the others:

	p, err := pooled.New(runtime.NumCPU())
	if err != nil {
		panic(err)
	}
	defer p.Close()

	cell := maybe.NewRefCell(0)
	for i := 0; i < runtime.NumCPU(); i++ {
		p.Submit(
			ctx,
			func(ctx context.Context) {
				cell.Update(func(v *int) { *v++ })
			},
		)
	}
	p.Wait()

Errors found inside jobs can be gathered with Errors:

	e := goroutines.Errors{}
	p.Submit(ctx, func(ctx context.Context) {
		if err := probe(); err != nil {
			e.Record(err)
		}
	})
	p.Wait()

	for _, err := range e.Errors() {
		fmt.Println("probe failed: ", err)
	}
*/
package goroutines

import (
	"context"
	"sync"

	"github.com/gostdlib/maybesync/goroutines/internal/pool"
)

// Job is a job for a Pool.
type Job func(ctx context.Context)

// SubmitOption is an option for Pool.Submit().
type SubmitOption func(opt *pool.SubmitOptions) error

// Pool is the minimum interface that any goroutine pool must implement.
type Pool interface {
	// Submit submits a Job to be run.
	Submit(ctx context.Context, runner Job, options ...SubmitOption) error
	// Close closes the goroutine pool. This will call Wait() before it closes.
	Close()
	// Wait will wait for all goroutines to finish. This should only be called if
	// you have stopped calling Submit().
	Wait()
	// Len indicates how big the pool is.
	Len() int
	// Running returns how many goroutines are currently in flight.
	Running() int
}

// Errors is a concurrency safe way of capturing a set of errors in multiple goroutines.
type Errors struct {
	errors []error
	mu     sync.Mutex
}

// Record writes an error to Errors.
func (e *Errors) Record(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

// Error returns the first error recieved.
func (e *Errors) Error() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.errors) == 0 {
		return nil
	}
	return e.errors[0]
}

// Errors returns a copy of all errors.
func (e *Errors) Errors() []error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]error(nil), e.errors...)
}

// Len returns the number of recorded errors.
func (e *Errors) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.errors)
}
