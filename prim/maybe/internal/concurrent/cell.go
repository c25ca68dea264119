package concurrent

import (
	"fmt"
	"sync/atomic"

	"github.com/gostdlib/maybesync/prim/maybe/internal/contract"
)

// Cell holds a Pod value that is read and written without locks. Every operation is a single
// sequentially consistent atomic operation on the value's bit pattern, so all goroutines
// observe one total order of updates. The zero value holds the zero value of T.
type Cell[T contract.Pod] struct {
	bits atomic.Uint64
}

// NewCell returns a Cell holding v.
func NewCell[T contract.Pod](v T) *Cell[T] {
	c := &Cell[T]{}
	c.bits.Store(contract.Bits(v))
	return c
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return contract.FromBits[T](c.bits.Load())
}

// Set replaces the current value.
func (c *Cell[T]) Set(v T) {
	c.bits.Store(contract.Bits(v))
}

// Swap stores v and returns the previous value.
func (c *Cell[T]) Swap(v T) T {
	return contract.FromBits[T](c.bits.Swap(contract.Bits(v)))
}

// CompareAndSwap stores new if the current value has the same bit pattern as old.
func (c *Cell[T]) CompareAndSwap(old, new T) bool {
	return c.bits.CompareAndSwap(contract.Bits(old), contract.Bits(new))
}

// Update replaces the value with fn(current) and returns the stored value. fn may be called
// more than once when other goroutines write concurrently.
func (c *Cell[T]) Update(fn func(T) T) T {
	for {
		old := c.bits.Load()
		n := contract.Bits(fn(contract.FromBits[T](old)))
		if c.bits.CompareAndSwap(old, n) {
			return contract.FromBits[T](n)
		}
	}
}

// String implements fmt.Stringer.
func (c *Cell[T]) String() string {
	return fmt.Sprintf("Cell(%v)", c.Get())
}
