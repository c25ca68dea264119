package check

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gostdlib/maybesync/prim/maybe"
)

// wantTranscript is what Script() returns in every build mode.
var wantTranscript = []string{
	"inner=2 outer=1",
	"inner via outer=Arc(inner)",
	"unwrap shared=false",
	"releases=[outer inner]",
	"two readers, try mut: true",
	"one reader, try mut: true",
	"writer, try: true",
	"RefCell(<borrowed>)",
	"RefCell([1 2])",
	"replaced=[1 2] poisoned=false",
	"swap=false get=true",
	"cas +0=false cas -0=true",
	"Cell(1.5)",
	"update=-9223372036854775807",
}

// Script runs a fixed sequence of operations on one goroutine over every primitive and
// returns what it observed, one line per step.
func Script() []string {
	var out []string
	record := func(format string, a ...any) {
		out = append(out, fmt.Sprintf(format, a...))
	}

	var releases []string
	inner := maybe.NewArc("inner", maybe.WithRelease(func(v string) {
		releases = append(releases, v)
	}))
	outer := maybe.NewArc(inner.Clone(), maybe.WithRelease(func(a *maybe.Arc[string]) {
		releases = append(releases, "outer")
		a.Drop()
	}))
	record("inner=%d outer=%d", inner.StrongCount(), outer.StrongCount())
	inner.Drop()
	record("inner via outer=%v", outer.Value())
	dup := outer.Clone()
	_, ok := outer.Unwrap()
	record("unwrap shared=%v", ok)
	dup.Drop()
	outer.Drop()
	record("releases=%v", releases)

	cell := maybe.NewRefCell([]int{1})
	r1 := cell.Borrow()
	r2 := cell.Borrow()
	_, err := cell.TryBorrowMut()
	record("two readers, try mut: %v", errors.Is(err, maybe.ErrAlreadyBorrowed))
	r1.Release()
	_, err = cell.TryBorrowMut()
	record("one reader, try mut: %v", errors.Is(err, maybe.ErrAlreadyBorrowed))
	r2.Release()
	w := cell.BorrowMut()
	*w.Ptr() = append(*w.Ptr(), 2)
	_, err = cell.TryBorrow()
	record("writer, try: %v", errors.Is(err, maybe.ErrAlreadyMutablyBorrowed))
	record("%v", cell)
	w.Release()
	record("%v", cell)
	old := cell.Replace(nil)
	record("replaced=%v poisoned=%v", old, cell.IsPoisoned())

	flag := maybe.NewCell(false)
	record("swap=%v get=%v", flag.Swap(true), flag.Get())
	negZero := math.Copysign(0, -1)
	f := maybe.NewCell(negZero)
	record("cas +0=%v cas -0=%v", f.CompareAndSwap(0, 1), f.CompareAndSwap(negZero, 1.5))
	record("%v", f)
	n := maybe.NewCell[int64](math.MinInt64)
	record("update=%d", n.Update(func(v int64) int64 { return v + 1 }))

	return out
}

// Fingerprint returns a short hash of a transcript. Binaries built in different modes
// print the same fingerprint when their transcripts match.
func Fingerprint(lines []string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(lines, "\n")))
}

func transcript(ctx context.Context, o checkOptions, r *Report) error {
	r.Workers = 1
	r.Iterations = 1

	got := Script()
	r.Fingerprint = Fingerprint(got)

	for i := 0; i < len(got) || i < len(wantTranscript); i++ {
		var g, w string
		if i < len(got) {
			g = got[i]
		}
		if i < len(wantTranscript) {
			w = wantTranscript[i]
		}
		if g != w {
			r.violate("step %d: got %q, want %q", i, g, w)
		}
	}
	return nil
}
