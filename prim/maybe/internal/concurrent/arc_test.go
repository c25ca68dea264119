package concurrent

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gostdlib/maybesync/prim/maybe/internal/contract"
)

func TestArcReleaseOnce(t *testing.T) {
	t.Parallel()

	const clones = 100

	var released atomic.Int32
	var live atomic.Int32
	root := NewArc("value", WithRelease(func(v string) {
		if v != "value" {
			t.Errorf("TestArcReleaseOnce: release got %q, want %q", v, "value")
		}
		if n := live.Load(); n != 0 {
			t.Errorf("TestArcReleaseOnce: released with %d handles still live", n)
		}
		released.Add(1)
	}))
	live.Add(1)

	handles := make([]*Arc[string], 0, clones)
	for i := 0; i < clones; i++ {
		live.Add(1)
		handles = append(handles, root.Clone())
	}
	if got := root.StrongCount(); got != clones+1 {
		t.Fatalf("TestArcReleaseOnce: StrongCount() = %d, want %d", got, clones+1)
	}

	start := make(chan struct{})
	wg := sync.WaitGroup{}
	for _, h := range handles {
		h := h
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if h.Value() != "value" {
				t.Errorf("TestArcReleaseOnce: Value() = %q", h.Value())
			}
			live.Add(-1)
			h.Drop()
		}()
	}
	close(start)
	wg.Wait()

	if released.Load() != 0 {
		t.Fatalf("TestArcReleaseOnce: released before the root handle was dropped")
	}
	live.Add(-1)
	root.Drop()

	if got := released.Load(); got != 1 {
		t.Errorf("TestArcReleaseOnce: release called %d times, want 1", got)
	}
}

func TestArcDroppedHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		do   func(a *Arc[int])
	}{
		{desc: "Drop twice", do: func(a *Arc[int]) { a.Drop() }},
		{desc: "Value after Drop", do: func(a *Arc[int]) { a.Value() }},
		{desc: "Clone after Drop", do: func(a *Arc[int]) { a.Clone() }},
		{desc: "StrongCount after Drop", do: func(a *Arc[int]) { a.StrongCount() }},
	}

	for _, test := range tests {
		a := NewArc(1)
		a.Drop()

		err := contract.Catch(func() { test.do(a) })
		if !errors.Is(err, contract.ErrDropped) {
			t.Errorf("TestArcDroppedHandle(%s): got %v, want ErrDropped", test.desc, err)
		}
		if a.String() != "Arc(<dropped>)" {
			t.Errorf("TestArcDroppedHandle(%s): String() = %q", test.desc, a.String())
		}
	}
}

func TestArcUnwrap(t *testing.T) {
	t.Parallel()

	released := false
	a := NewArc(42, WithRelease(func(int) { released = true }))
	b := a.Clone()

	if _, ok := a.Unwrap(); ok {
		t.Fatalf("TestArcUnwrap: Unwrap() succeeded with two handles")
	}
	if got := a.Value(); got != 42 {
		t.Fatalf("TestArcUnwrap: handle unusable after failed Unwrap(), Value() = %d", got)
	}
	b.Drop()

	v, ok := a.Unwrap()
	if !ok || v != 42 {
		t.Fatalf("TestArcUnwrap: Unwrap() = (%d, %v), want (42, true)", v, ok)
	}
	if released {
		t.Errorf("TestArcUnwrap: release function ran on Unwrap()")
	}
	if err := contract.Catch(a.Drop); !errors.Is(err, contract.ErrDropped) {
		t.Errorf("TestArcUnwrap: Drop() after Unwrap() got %v, want ErrDropped", err)
	}
}

func TestArcSame(t *testing.T) {
	t.Parallel()

	a := NewArc(1)
	b := a.Clone()
	c := NewArc(1)

	if !a.Same(b) {
		t.Errorf("TestArcSame: clone is not Same()")
	}
	if a.Same(c) {
		t.Errorf("TestArcSame: separate allocations reported Same()")
	}
	if a.String() != "Arc(1)" {
		t.Errorf("TestArcSame: String() = %q, want Arc(1)", a.String())
	}
}
