package single

import (
	"fmt"

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

type arcInner[T any] struct {
	strong  int
	value   T
	release func(T)
}

// Arc is one owning handle to a shared value with a non-atomic owner count.
type Arc[T any] struct {
	inner   *arcInner[T]
	dropped bool
}

// NewArc returns the first handle to v.
func NewArc[T any](v T, options ...ArcOption[T]) *Arc[T] {
	opts := arcOptions[T]{}
	for _, o := range options {
		o(&opts)
	}
	return &Arc[T]{inner: &arcInner[T]{strong: 1, value: v, release: opts.release}}
}

func (a *Arc[T]) live() *arcInner[T] {
	if a.dropped {
		contract.Panic(contract.ErrDropped)
	}
	return a.inner
}

// Value returns the shared value.
func (a *Arc[T]) Value() T {
	return a.live().value
}

// Clone returns a new handle to the same value.
func (a *Arc[T]) Clone() *Arc[T] {
	in := a.live()
	in.strong++
	return &Arc[T]{inner: in}
}

// Drop gives up this handle, releasing the value if it was the last one.
func (a *Arc[T]) Drop() {
	in := a.live()
	a.dropped = true
	in.strong--
	if in.strong != 0 {
		return
	}

	v := in.value
	var zero T
	in.value = zero
	if in.release != nil {
		in.release(v)
	}
}

// Unwrap returns the value without releasing it if this is the only handle.
func (a *Arc[T]) Unwrap() (T, bool) {
	in := a.live()
	var zero T
	if in.strong != 1 {
		return zero, false
	}
	a.dropped = true
	in.strong = 0

	v := in.value
	in.value = zero
	return v, true
}

// StrongCount returns the number of live handles sharing the value.
func (a *Arc[T]) StrongCount() int {
	return a.live().strong
}

// Same reports if a and b share the same value allocation.
func (a *Arc[T]) Same(b *Arc[T]) bool {
	return a.inner == b.inner
}

// String implements fmt.Stringer.
func (a *Arc[T]) String() string {
	if a.dropped {
		return "Arc(<dropped>)"
	}
	return fmt.Sprintf("Arc(%v)", a.inner.value)
}
