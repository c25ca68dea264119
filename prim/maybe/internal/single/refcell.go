package single

import (
	"fmt"

	"github.com/gostdlib/maybesync/prim/maybe/internal/contract"
)

// borrowFlag counts outstanding borrows: > 0 is the number of Ref guards, -1 is one RefMut.
type borrowFlag int

const (
	unused  borrowFlag = 0
	writing borrowFlag = -1
)

// RefCell enforces the shared-xor-exclusive borrow rule at runtime. A request that would
// break the rule panics with contract.ErrAlreadyBorrowed or contract.ErrAlreadyMutablyBorrowed;
// it never waits, as there is nobody else to wait for. The zero value is ready to use.
type RefCell[T any] struct {
	flag  borrowFlag
	value T
}

// NewRefCell returns a RefCell holding v.
func NewRefCell[T any](v T) *RefCell[T] {
	return &RefCell[T]{value: v}
}

// Borrow returns a shared guard. It panics if a RefMut is outstanding.
func (c *RefCell[T]) Borrow() *Ref[T] {
	r, err := c.TryBorrow()
	if err != nil {
		contract.Panic(err)
	}
	return r
}

// BorrowMut returns an exclusive guard. It panics if any guard is outstanding.
func (c *RefCell[T]) BorrowMut() *RefMut[T] {
	w, err := c.TryBorrowMut()
	if err != nil {
		contract.Panic(err)
	}
	return w
}

// TryBorrow is like Borrow() but returns an error instead of panicking.
func (c *RefCell[T]) TryBorrow() (*Ref[T], error) {
	if c.flag == writing {
		return nil, contract.ErrAlreadyMutablyBorrowed
	}
	c.flag++
	return &Ref[T]{cell: c}, nil
}

// TryBorrowMut is like BorrowMut() but returns an error instead of panicking.
func (c *RefCell[T]) TryBorrowMut() (*RefMut[T], error) {
	if c.flag != unused {
		return nil, contract.ErrAlreadyBorrowed
	}
	c.flag = writing
	return &RefMut[T]{cell: c}, nil
}

// View calls fn with the value while holding a shared guard.
func (c *RefCell[T]) View(fn func(v T)) {
	r := c.Borrow()
	defer r.Release()
	fn(c.value)
}

// Update calls fn with a pointer to the value while holding an exclusive guard.
func (c *RefCell[T]) Update(fn func(v *T)) {
	w := c.BorrowMut()
	defer w.Release()
	fn(&c.value)
}

// Replace stores v and returns the previous value.
func (c *RefCell[T]) Replace(v T) T {
	w := c.BorrowMut()
	defer w.Release()
	old := c.value
	c.value = v
	return old
}

// IsPoisoned always returns false; a single-threaded cell is never poisoned.
func (c *RefCell[T]) IsPoisoned() bool {
	return false
}

// ClearPoison does nothing.
func (c *RefCell[T]) ClearPoison() {}

// String implements fmt.Stringer.
func (c *RefCell[T]) String() string {
	if c.flag == writing {
		return "RefCell(<borrowed>)"
	}
	return fmt.Sprintf("RefCell(%v)", c.value)
}

// Ref is a shared guard returned by RefCell.Borrow(). It must be released exactly once.
type Ref[T any] struct {
	cell     *RefCell[T]
	released bool
}

// Get returns a copy of the value.
func (r *Ref[T]) Get() T {
	if r.released {
		contract.Panic(contract.ErrReleased)
	}
	return r.cell.value
}

// Release gives up shared access.
func (r *Ref[T]) Release() {
	if r.released {
		contract.Panic(contract.ErrReleased)
	}
	r.released = true
	r.cell.flag--
}

// RefMut is an exclusive guard returned by RefCell.BorrowMut(). It must be released exactly once.
type RefMut[T any] struct {
	cell     *RefCell[T]
	released bool
}

func (w *RefMut[T]) check() {
	if w.released {
		contract.Panic(contract.ErrReleased)
	}
}

// Get returns a copy of the value.
func (w *RefMut[T]) Get() T {
	w.check()
	return w.cell.value
}

// Set replaces the value.
func (w *RefMut[T]) Set(v T) {
	w.check()
	w.cell.value = v
}

// Ptr returns a pointer to the value. It must not be used after Release().
func (w *RefMut[T]) Ptr() *T {
	w.check()
	return &w.cell.value
}

// Release gives up exclusive access.
func (w *RefMut[T]) Release() {
	w.check()
	w.released = true
	w.cell.flag = unused
}
