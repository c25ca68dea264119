//go:build !sync

package maybe

import "github.com/gostdlib/maybesync/prim/maybe/internal/single"

// SyncEnabled is false: the single-threaded realization is compiled in.
const SyncEnabled = false

const mode = single.Mode

type (
	// Arc is a handle to a value shared by several owners, counted without atomics.
	Arc[T any] = single.Arc[T]
	// ArcOption is an option for NewArc().
	ArcOption[T any] = single.ArcOption[T]
	// RefCell allows many Ref guards or one RefMut guard at a time. A request breaking
	// that rule panics.
	RefCell[T any] = single.RefCell[T]
	// Ref is a shared guard on a RefCell.
	Ref[T any] = single.Ref[T]
	// RefMut is an exclusive guard on a RefCell.
	RefMut[T any] = single.RefMut[T]
	// Cell holds a Pod value.
	Cell[T Pod] = single.Cell[T]
)

// NewArc returns the first handle to v.
func NewArc[T any](v T, options ...ArcOption[T]) *Arc[T] {
	return single.NewArc(v, options...)
}

// WithRelease sets a function that is called with the value once the last handle is dropped.
func WithRelease[T any](fn func(T)) ArcOption[T] {
	return single.WithRelease(fn)
}

// NewRefCell returns a RefCell holding v.
func NewRefCell[T any](v T) *RefCell[T] {
	return single.NewRefCell(v)
}

// NewCell returns a Cell holding v.
func NewCell[T Pod](v T) *Cell[T] {
	return single.NewCell(v)
}
