package check

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gostdlib/maybesync/goroutines"
	"github.com/gostdlib/maybesync/prim/maybe"
)

// lifecycle clones one Arc per worker, drops the clones from the workers and the root from
// here, and checks the release function ran once and only after the last drop.
func lifecycle(ctx context.Context, o checkOptions, r *Report) error {
	w, err := newWorkers(o)
	if err != nil {
		return err
	}
	defer w.close()

	for round := 0; round < o.iterations; round++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var live, released, early atomic.Int64
		root := maybe.NewArc(round, maybe.WithRelease(func(int) {
			if live.Load() != 0 {
				early.Add(1)
			}
			released.Add(1)
		}))
		live.Add(1)

		clones := make([]*maybe.Arc[int], o.workers)
		for i := range clones {
			live.Add(1)
			clones[i] = root.Clone()
		}

		wrong := goroutines.Errors{}
		err := w.contend(ctx, NameLifecycle, func(ctx context.Context, worker int) error {
			h := clones[worker]
			if v := h.Value(); v != round {
				wrong.Record(fmt.Errorf("round %d: worker %d read %d through its clone", round, worker, v))
			}
			live.Add(-1)
			h.Drop()
			return nil
		})
		if err != nil {
			return err
		}

		if released.Load() != 0 {
			r.violate("round %d: released while the root handle was live", round)
		}
		live.Add(-1)
		root.Drop()

		switch {
		case released.Load() != 1:
			r.violate("round %d: release ran %d times, want 1", round, released.Load())
		case early.Load() != 0:
			r.violate("round %d: release ran before every handle was dropped", round)
		}
		r.violateErrs(&wrong)
	}
	return nil
}
