package concurrent

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gostdlib/maybesync/prim/maybe/internal/contract"
)

// RefCell protects a value with a reader/writer lock. Any number of Ref guards may be held at
// once, or a single RefMut guard. If a goroutine panics while holding a RefMut, the cell is
// poisoned and every later Borrow() or BorrowMut() panics with contract.ErrPoisoned until
// ClearPoison() is called. The zero value holds the zero value of T and is ready to use.
type RefCell[T any] struct {
	mu       sync.RWMutex
	poisoned atomic.Bool
	value    T
}

// NewRefCell returns a RefCell holding v.
func NewRefCell[T any](v T) *RefCell[T] {
	return &RefCell[T]{value: v}
}

// Borrow blocks until no RefMut is held and returns a shared guard.
func (c *RefCell[T]) Borrow() *Ref[T] {
	c.mu.RLock()
	if c.poisoned.Load() {
		c.mu.RUnlock()
		contract.Panic(contract.ErrPoisoned)
	}
	return &Ref[T]{cell: c}
}

// BorrowMut blocks until no other guard is held and returns an exclusive guard.
func (c *RefCell[T]) BorrowMut() *RefMut[T] {
	c.mu.Lock()
	if c.poisoned.Load() {
		c.mu.Unlock()
		contract.Panic(contract.ErrPoisoned)
	}
	return &RefMut[T]{cell: c}
}

// TryBorrow is like Borrow() but returns an error instead of blocking or panicking. It returns
// ErrAlreadyMutablyBorrowed when a writer holds or is waiting for the lock, even if only Ref
// guards are outstanding.
func (c *RefCell[T]) TryBorrow() (*Ref[T], error) {
	if !c.mu.TryRLock() {
		return nil, contract.ErrAlreadyMutablyBorrowed
	}
	if c.poisoned.Load() {
		c.mu.RUnlock()
		return nil, contract.ErrPoisoned
	}
	return &Ref[T]{cell: c}, nil
}

// TryBorrowMut is like BorrowMut() but returns an error instead of blocking or panicking.
func (c *RefCell[T]) TryBorrowMut() (*RefMut[T], error) {
	if !c.mu.TryLock() {
		return nil, contract.ErrAlreadyBorrowed
	}
	if c.poisoned.Load() {
		c.mu.Unlock()
		return nil, contract.ErrPoisoned
	}
	return &RefMut[T]{cell: c}, nil
}

// View calls fn with the value while holding a shared guard.
func (c *RefCell[T]) View(fn func(v T)) {
	r := c.Borrow()
	defer r.Release()
	fn(c.value)
}

// Update calls fn with a pointer to the value while holding an exclusive guard. A panic in fn
// poisons the cell.
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

// IsPoisoned reports if a goroutine panicked while holding exclusive access.
func (c *RefCell[T]) IsPoisoned() bool {
	return c.poisoned.Load()
}

// ClearPoison makes a poisoned cell usable again. The caller is responsible for the value
// being consistent.
func (c *RefCell[T]) ClearPoison() {
	c.poisoned.Store(false)
}

// String implements fmt.Stringer. It never blocks, and prints RefCell(<borrowed>) while a
// writer holds or is waiting for the lock.
func (c *RefCell[T]) String() string {
	r, err := c.TryBorrow()
	switch err {
	case nil:
	case contract.ErrPoisoned:
		return "RefCell(<poisoned>)"
	default:
		return "RefCell(<borrowed>)"
	}
	defer r.Release()
	return fmt.Sprintf("RefCell(%v)", r.Get())
}

// Ref is a shared guard returned by RefCell.Borrow(). It must be released exactly once.
type Ref[T any] struct {
	cell     *RefCell[T]
	released atomic.Bool
}

// Get returns a copy of the value.
func (r *Ref[T]) Get() T {
	if r.released.Load() {
		contract.Panic(contract.ErrReleased)
	}
	return r.cell.value
}

// Release gives up shared access.
func (r *Ref[T]) Release() {
	if !r.released.CompareAndSwap(false, true) {
		contract.Panic(contract.ErrReleased)
	}
	r.cell.mu.RUnlock()
}

// RefMut is an exclusive guard returned by RefCell.BorrowMut(). It must be released exactly once.
type RefMut[T any] struct {
	cell     *RefCell[T]
	released atomic.Bool
}

func (w *RefMut[T]) check() {
	if w.released.Load() {
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

// Release gives up exclusive access. When Release is deferred directly (defer w.Release())
// and the goroutine is panicking, the cell is poisoned and the panic continues.
func (w *RefMut[T]) Release() {
	if !w.released.CompareAndSwap(false, true) {
		contract.Panic(contract.ErrReleased)
	}
	if r := recover(); r != nil {
		w.cell.poisoned.Store(true)
		w.cell.mu.Unlock()
		panic(r)
	}
	w.cell.mu.Unlock()
}
