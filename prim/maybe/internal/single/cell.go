package single

import (
	"fmt"

	"github.com/gostdlib/maybesync/prim/maybe/internal/contract"
)

// Cell holds a Pod value with plain loads and stores.
type Cell[T contract.Pod] struct {
	value T
}

// NewCell returns a Cell holding v.
func NewCell[T contract.Pod](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set replaces the current value.
func (c *Cell[T]) Set(v T) {
	c.value = v
}

// Swap stores v and returns the previous value.
func (c *Cell[T]) Swap(v T) T {
	old := c.value
	c.value = v
	return old
}

// CompareAndSwap stores new if the current value has the same bit pattern as old.
func (c *Cell[T]) CompareAndSwap(old, new T) bool {
	if contract.Bits(c.value) != contract.Bits(old) {
		return false
	}
	c.value = new
	return true
}

// Update replaces the value with fn(current) and returns the stored value.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.value = fn(c.value)
	return c.value
}

// String implements fmt.Stringer.
func (c *Cell[T]) String() string {
	return fmt.Sprintf("Cell(%v)", c.value)
}
