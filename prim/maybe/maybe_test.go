package maybe

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

// script runs the same single-goroutine sequence in either build mode. Both modes must
// produce identical output.
func script() []string {
	var out []string
	record := func(format string, a ...any) {
		out = append(out, fmt.Sprintf(format, a...))
	}

	released := 0
	a := NewArc(NewRefCell(10), WithRelease(func(*RefCell[int]) { released++ }))
	b := a.Clone()
	record("count=%d same=%v", a.StrongCount(), a.Same(b))

	b.Value().Update(func(v *int) { *v += 5 })
	r := a.Value().Borrow()
	record("borrow=%d", r.Get())
	_, err := a.Value().TryBorrowMut()
	record("trymut=%v", errors.Is(err, ErrAlreadyBorrowed))
	r.Release()

	w := a.Value().BorrowMut()
	w.Set(w.Get() * 2)
	_, err = a.Value().TryBorrow()
	record("try=%v", errors.Is(err, ErrAlreadyMutablyBorrowed))
	w.Release()
	record("%v", a)

	b.Drop()
	record("count=%d released=%d", a.StrongCount(), released)
	a.Drop()
	record("released=%d", released)

	c := NewCell[uint16](1)
	c.Set(0xffff)
	record("get=%d swap=%d cas=%v", c.Get(), c.Swap(7), c.CompareAndSwap(7, 8))
	record("update=%d %v", c.Update(func(v uint16) uint16 { return v + 1 }), c)
	return out
}

func TestSubstitutable(t *testing.T) {
	t.Parallel()

	want := []string{
		"count=2 same=true",
		"borrow=15",
		"trymut=true",
		"try=true",
		"Arc(RefCell(30))",
		"count=1 released=0",
		"released=1",
		"get=65535 swap=65535 cas=true",
		"update=9 Cell(9)",
	}

	if diff := pretty.Compare(want, script()); diff != "" {
		t.Errorf("TestSubstitutable(%s): -want/+got:\n%s", Mode(), diff)
	}
}

func TestZeroValues(t *testing.T) {
	t.Parallel()

	var cell Cell[float32]
	if cell.Get() != 0 {
		t.Errorf("TestZeroValues: Cell.Get() = %v, want 0", cell.Get())
	}

	var rc RefCell[[]string]
	rc.Update(func(v *[]string) { *v = append(*v, "a") })
	var got []string
	rc.View(func(v []string) { got = v })
	if diff := pretty.Compare([]string{"a"}, got); diff != "" {
		t.Errorf("TestZeroValues: RefCell -want/+got:\n%s", diff)
	}
}

func TestMode(t *testing.T) {
	t.Parallel()

	want := "local"
	if SyncEnabled {
		want = "sync"
	}
	if Mode() != want {
		t.Errorf("TestMode: got %q, want %q", Mode(), want)
	}
}
