package check

import (
	"context"
	"sync/atomic"

	"github.com/gostdlib/maybesync/prim/maybe"
)

// ordering checks that every goroutine sees Cell updates in one order. A Cell set to 1 and
// then 2 before a signal must read 2 after it, and a counter only ever incremented must never
// be seen going backwards.
func ordering(ctx context.Context, o checkOptions, r *Report) error {
	for round := 0; round < o.iterations; round++ {
		c := maybe.NewCell(0)
		c.Set(1)
		c.Set(2)
		if got := c.Get(); got != 2 {
			r.violate("round %d: read %d after setting 1 then 2", round, got)
		}
	}

	if o.workers < 2 {
		return nil
	}

	w, err := newWorkers(o)
	if err != nil {
		return err
	}
	defer w.close()

	for round := 0; round < min(o.iterations, 100); round++ {
		c := maybe.NewCell(0)
		signal := make(chan struct{})
		var stale atomic.Int64
		err := w.contend(ctx, NameOrdering, func(ctx context.Context, worker int) error {
			if worker == 0 {
				c.Set(1)
				c.Set(2)
				close(signal)
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-signal:
			}
			if c.Get() != 2 {
				stale.Add(1)
			}
			return nil
		})
		if err != nil {
			return err
		}
		n := stale.Load()
		r.violateN(n, "round %d: %d goroutines read a value older than the last one set before the signal", round, n)
	}

	counter := maybe.NewCell[uint64](0)
	var backwards atomic.Int64
	err = w.contend(ctx, NameOrdering, func(ctx context.Context, worker int) error {
		if worker == 0 {
			for i := 0; i < o.iterations; i++ {
				counter.Update(func(v uint64) uint64 { return v + 1 })
			}
			return nil
		}
		var last uint64
		for i := 0; i < o.iterations; i++ {
			v := counter.Get()
			if v < last {
				backwards.Add(1)
			}
			last = v
		}
		return nil
	})
	if err != nil {
		return err
	}
	n := backwards.Load()
	r.violateN(n, "%d reads saw the counter go backwards", n)
	if got := counter.Get(); got != uint64(o.iterations) {
		r.violate("counter is %d after %d increments", got, o.iterations)
	}
	return nil
}
