//go:build sync

package maybe

import "github.com/gostdlib/maybesync/prim/maybe/internal/concurrent"

// SyncEnabled is true when the thread-safe realization is compiled in.
const SyncEnabled = true

const mode = concurrent.Mode

type (
	// Arc is a handle to a value shared by several owners. The release function set with
	// WithRelease runs once, when the last handle is dropped.
	Arc[T any] = concurrent.Arc[T]
	// ArcOption is an option for NewArc().
	ArcOption[T any] = concurrent.ArcOption[T]
	// RefCell allows many Ref guards or one RefMut guard at a time.
	RefCell[T any] = concurrent.RefCell[T]
	// Ref is a shared guard on a RefCell.
	Ref[T any] = concurrent.Ref[T]
	// RefMut is an exclusive guard on a RefCell.
	RefMut[T any] = concurrent.RefMut[T]
	// Cell holds a Pod value read and written without locks.
	Cell[T Pod] = concurrent.Cell[T]
)

// NewArc returns the first handle to v.
func NewArc[T any](v T, options ...ArcOption[T]) *Arc[T] {
	return concurrent.NewArc(v, options...)
}

// WithRelease sets a function that is called with the value once the last handle is dropped.
func WithRelease[T any](fn func(T)) ArcOption[T] {
	return concurrent.WithRelease(fn)
}

// NewRefCell returns a RefCell holding v.
func NewRefCell[T any](v T) *RefCell[T] {
	return concurrent.NewRefCell(v)
}

// NewCell returns a Cell holding v.
func NewCell[T Pod](v T) *Cell[T] {
	return concurrent.NewCell(v)
}
