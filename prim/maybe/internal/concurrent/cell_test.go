package concurrent

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCellRoundTripUnderContention(t *testing.T) {
	t.Parallel()

	patterns := []uint64{0, math.MaxUint64, 0x00000000ffffffff, 0xffffffff00000000, 0x5555555555555555, 0xaaaaaaaaaaaaaaaa}
	known := map[uint64]bool{}
	for _, p := range patterns {
		known[p] = true
	}

	cell := NewCell[uint64](0)
	var stop atomic.Bool
	var torn atomic.Int64

	wg := sync.WaitGroup{}
	for i := 0; i < 4; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5000; j++ {
				cell.Set(patterns[(i+j)%len(patterns)])
			}
		}()
	}
	readers := sync.WaitGroup{}
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for !stop.Load() {
				if !known[cell.Get()] {
					torn.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	stop.Store(true)
	readers.Wait()

	if n := torn.Load(); n != 0 {
		t.Errorf("TestCellRoundTripUnderContention: observed %d values that were never set", n)
	}
}

func TestCellOrdering(t *testing.T) {
	t.Parallel()

	for round := 0; round < 200; round++ {
		cell := NewCell[int32](0)
		signal := make(chan struct{})

		go func() {
			cell.Set(1)
			cell.Set(2)
			close(signal)
		}()

		<-signal
		for i := 0; i < 100; i++ {
			if got := cell.Get(); got != 2 {
				t.Fatalf("TestCellOrdering: round %d observed %d after 2", round, got)
			}
		}
	}
}

func TestCellMonotonicObservation(t *testing.T) {
	t.Parallel()

	const last = 20000
	cell := &Cell[uint32]{}

	wg := sync.WaitGroup{}
	var regressions atomic.Int64
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var prev uint32
			for prev != last {
				v := cell.Get()
				if v < prev {
					regressions.Add(1)
				}
				prev = v
			}
		}()
	}
	for i := uint32(1); i <= last; i++ {
		cell.Set(i)
	}
	wg.Wait()

	if n := regressions.Load(); n != 0 {
		t.Errorf("TestCellMonotonicObservation: %d observations went backwards", n)
	}
}

func TestCellUpdateCounts(t *testing.T) {
	t.Parallel()

	cell := NewCell(0)
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				cell.Update(func(v int) int { return v + 1 })
			}
		}()
	}
	wg.Wait()

	if got := cell.Get(); got != 8000 {
		t.Errorf("TestCellUpdateCounts: got %d, want 8000", got)
	}
}

func TestCellSwapAndCompare(t *testing.T) {
	t.Parallel()

	negZero := math.Copysign(0, -1)
	cell := NewCell(negZero)

	if cell.CompareAndSwap(0, 1) {
		t.Errorf("TestCellSwapAndCompare: +0 matched a stored -0")
	}
	if !cell.CompareAndSwap(negZero, 1.5) {
		t.Errorf("TestCellSwapAndCompare: -0 did not match itself")
	}
	if got := cell.Swap(2.5); got != 1.5 {
		t.Errorf("TestCellSwapAndCompare: Swap() returned %v, want 1.5", got)
	}
	if cell.String() != "Cell(2.5)" {
		t.Errorf("TestCellSwapAndCompare: String() = %q", cell.String())
	}
}
