package check

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/gostdlib/maybesync/goroutines"
	"github.com/gostdlib/maybesync/prim/maybe"
)

// Patterns that differ in both 32-bit halves, so a torn write yields a value outside the set.
var (
	uintPatterns  = []uint64{0, math.MaxUint64, 0x00000000ffffffff, 0xffffffff00000000, 0x5555555555555555, 0xaaaaaaaaaaaaaaaa}
	floatPatterns = []float64{0, math.Copysign(0, -1), 1.5, -2.25, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(-1)}
)

// roundTrip checks a Cell returns exactly what was stored, first from one goroutine and then,
// with the sync tag, while writers store other known values concurrently.
func roundTrip(ctx context.Context, o checkOptions, r *Report) error {
	u := maybe.NewCell[uint64](0)
	for _, want := range uintPatterns {
		u.Set(want)
		if got := u.Get(); got != want {
			r.violate("Cell[uint64]: set %#x, got %#x", want, got)
		}
	}
	f := maybe.NewCell(0.0)
	for _, want := range floatPatterns {
		f.Set(want)
		if got := f.Get(); math.Float64bits(got) != math.Float64bits(want) {
			r.violate("Cell[float64]: set %v, got %v", want, got)
		}
	}
	b := maybe.NewCell(false)
	for _, want := range []bool{true, false, true} {
		b.Set(want)
		if got := b.Get(); got != want {
			r.violate("Cell[bool]: set %v, got %v", want, got)
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

	f.Set(floatPatterns[0])
	torn := goroutines.Errors{}
	err = w.contend(ctx, NameRoundTrip, func(ctx context.Context, worker int) error {
		for i := 0; i < o.iterations; i++ {
			if worker%2 == 0 {
				u.Set(uintPatterns[(worker+i)%len(uintPatterns)])
				f.Set(floatPatterns[(worker+i)%len(floatPatterns)])
				continue
			}
			if got := u.Get(); !slices.Contains(uintPatterns, got) {
				torn.Record(fmt.Errorf("Cell[uint64] read %#x, which was never stored", got))
			}
			got := math.Float64bits(f.Get())
			if !slices.ContainsFunc(floatPatterns, func(p float64) bool { return math.Float64bits(p) == got }) {
				torn.Record(fmt.Errorf("Cell[float64] read bits %#x, which were never stored", got))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.violateErrs(&torn)
	return nil
}
