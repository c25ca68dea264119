package concurrent

import (
	"fmt"
	"sync/atomic"

	"github.com/gostdlib/maybesync/prim/maybe/internal/contract"
)

// ArcOption is an option for NewArc().
type ArcOption[T any] func(o *arcOptions[T])

type arcOptions[T any] struct {
	release func(T)
}

// WithRelease sets a function that is called with the value once the last handle is dropped.
func WithRelease[T any](fn func(T)) ArcOption[T] {
	return func(o *arcOptions[T]) {
		o.release = fn
	}
}

// arcInner is the allocation shared by every handle cloned from the same NewArc() call.
type arcInner[T any] struct {
	strong  atomic.Int64
	value   T
	release func(T)
}

// Arc is one owning handle to a shared value. Handles are cloned to add owners and dropped
// to remove them; the release function runs exactly once, when the count reaches zero.
// Clone and Drop may be called from different goroutines concurrently. A single handle
// belongs to one owner: give other goroutines their own handle with Clone().
type Arc[T any] struct {
	inner   *arcInner[T]
	dropped atomic.Bool
}

// NewArc returns the first handle to v.
func NewArc[T any](v T, options ...ArcOption[T]) *Arc[T] {
	opts := arcOptions[T]{}
	for _, o := range options {
		o(&opts)
	}

	in := &arcInner[T]{value: v, release: opts.release}
	in.strong.Store(1)
	return &Arc[T]{inner: in}
}

func (a *Arc[T]) live() *arcInner[T] {
	if a.dropped.Load() {
		contract.Panic(contract.ErrDropped)
	}
	return a.inner
}

// Value returns the shared value.
func (a *Arc[T]) Value() T {
	return a.live().value
}

// Clone returns a new handle to the same value, incrementing the owner count.
func (a *Arc[T]) Clone() *Arc[T] {
	in := a.live()
	in.strong.Add(1)
	return &Arc[T]{inner: in}
}

// Drop gives up this handle. If it was the last one, the release function is called and
// the value is cleared. Dropping a handle twice panics.
func (a *Arc[T]) Drop() {
	if !a.dropped.CompareAndSwap(false, true) {
		contract.Panic(contract.ErrDropped)
	}

	in := a.inner
	if in.strong.Add(-1) != 0 {
		return
	}
	in.destroy()
}

// Unwrap returns the value and drops the handle without calling the release function, but
// only if this is the only handle. Otherwise it returns false and the handle stays usable.
func (a *Arc[T]) Unwrap() (T, bool) {
	in := a.live()
	if !in.strong.CompareAndSwap(1, 0) {
		var zero T
		return zero, false
	}
	a.dropped.Store(true)

	v := in.value
	var zero T
	in.value = zero
	return v, true
}

// StrongCount returns the number of live handles sharing the value.
func (a *Arc[T]) StrongCount() int {
	return int(a.live().strong.Load())
}

// Same reports if a and b share the same value allocation.
func (a *Arc[T]) Same(b *Arc[T]) bool {
	return a.inner == b.inner
}

// String implements fmt.Stringer.
func (a *Arc[T]) String() string {
	if a.dropped.Load() {
		return "Arc(<dropped>)"
	}
	return fmt.Sprintf("Arc(%v)", a.inner.value)
}

func (in *arcInner[T]) destroy() {
	v := in.value
	var zero T
	in.value = zero
	if in.release != nil {
		in.release(v)
	}
}
