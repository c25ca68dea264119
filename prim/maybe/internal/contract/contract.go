// Package contract holds what both realizations of the maybe primitives share: the Pod
// constraint, the bit-pattern conversion used by scalar cells and the errors callers match
// against with errors.Is. Neither realization may define its own versions of these.
package contract

import (
	"errors"
	"fmt"
	"unsafe"

	perrors "github.com/pkg/errors"
)

// Names reported for each realization.
const (
	ModeSync  = "sync"
	ModeLocal = "local"
)

// Pod is the set of fixed-size, bit-copyable types that hold no references. Every member
// fits in 64 bits so a scalar cell can store it as a single machine word.
type Pod interface {
	~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~complex64
}

// Bits returns a word whose first unsafe.Sizeof(v) bytes are the bytes of v. The remaining
// bytes are zero, so two values with the same bit pattern always produce the same word.
func Bits[T Pod](v T) uint64 {
	var b uint64
	*(*T)(unsafe.Pointer(&b)) = v
	return b
}

// FromBits is the inverse of Bits.
func FromBits[T Pod](b uint64) T {
	return *(*T)(unsafe.Pointer(&b))
}

var (
	// ErrBorrowConflict is wrapped by every error caused by an outstanding borrow.
	ErrBorrowConflict = errors.New("borrow conflicts with an outstanding borrow")
	// ErrAlreadyBorrowed is returned or raised when exclusive access is requested while any
	// borrow is outstanding.
	ErrAlreadyBorrowed = fmt.Errorf("%w: already borrowed", ErrBorrowConflict)
	// ErrAlreadyMutablyBorrowed is returned or raised when shared access is requested while an
	// exclusive borrow is outstanding. With the sync realization it is also returned by
	// TryBorrow() while a writer is waiting for the lock.
	ErrAlreadyMutablyBorrowed = fmt.Errorf("%w: already mutably borrowed", ErrBorrowConflict)
	// ErrPoisoned is raised when a cell is borrowed after a goroutine panicked while holding
	// exclusive access to it.
	ErrPoisoned = errors.New("cell poisoned by a panic during exclusive access")
	// ErrReleased is raised when a borrow guard is used or released after Release.
	ErrReleased = errors.New("borrow guard used after Release")
	// ErrDropped is raised when an Arc handle is used or dropped after Drop.
	ErrDropped = errors.New("Arc handle used after Drop")
)

// Panic aborts the calling goroutine with err. The panic value carries the caller's stack,
// printed when the recovered value is formatted with %+v.
func Panic(err error) {
	panic(perrors.WithStack(err))
}

// Recovered converts a value returned by recover() into an error. It returns nil if r is nil.
func Recovered(r any) error {
	switch t := r.(type) {
	case nil:
		return nil
	case error:
		return t
	default:
		return fmt.Errorf("%v", t)
	}
}

// Catch runs f and returns the value it panicked with as an error, or nil if f returned normally.
func Catch(f func()) (err error) {
	defer func() {
		err = Recovered(recover())
	}()
	f()
	return nil
}
