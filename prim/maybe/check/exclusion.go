package check

import (
	"context"
	"sync/atomic"

	"github.com/gostdlib/maybesync/prim/maybe"
)

// exclusion has every worker mix shared and exclusive borrows of one RefCell. Counters kept
// outside the cell detect any exclusive window overlapping another window, and the final
// value detects lost updates.
func exclusion(ctx context.Context, o checkOptions, r *Report) error {
	w, err := newWorkers(o)
	if err != nil {
		return err
	}
	defer w.close()

	cell := maybe.NewRefCell(0)
	var readers, writers, overlaps, writes atomic.Int64

	err = w.contend(ctx, NameExclusion, func(ctx context.Context, worker int) error {
		for i := 0; i < o.iterations; i++ {
			if (worker+i)%4 == 0 {
				g := cell.BorrowMut()
				if writers.Add(1) != 1 || readers.Load() != 0 {
					overlaps.Add(1)
				}
				g.Set(g.Get() + 1)
				writes.Add(1)
				writers.Add(-1)
				g.Release()
				continue
			}

			g := cell.Borrow()
			readers.Add(1)
			if writers.Load() != 0 {
				overlaps.Add(1)
			}
			_ = g.Get()
			readers.Add(-1)
			g.Release()
		}
		return nil
	})
	if err != nil {
		return err
	}

	n := overlaps.Load()
	r.violateN(n, "%d borrows overlapped an exclusive borrow", n)

	var got int
	cell.View(func(v int) { got = v })
	if int64(got) != writes.Load() {
		r.violate("value is %d after %d exclusive increments", got, writes.Load())
	}
	return nil
}
