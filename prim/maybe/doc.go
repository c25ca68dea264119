/*
Package maybe provides three primitives whose implementation is picked when the program is
built: a shared-ownership handle (Arc), a mutable cell with shared-read/exclusive-write access
(RefCell) and a lock-free cell for small plain values (Cell). Code written against these names
compiles unchanged in both modes.

Building with the "sync" tag selects the thread-safe realization:

	go build -tags sync ./...

Arc counts owners atomically, RefCell is a reader/writer lock and Cell uses sequentially
consistent atomic loads and stores. Values may be shared by any number of goroutines.

Without the tag the single-threaded realization is used. Arc keeps a plain count, RefCell
checks the borrow rules at runtime and Cell is a plain value. Nothing synchronizes, so values
must not be used by two goroutines at once. SyncEnabled reports which realization is active.

Example of a counter shared between owners:

	counter := maybe.NewArc(maybe.NewRefCell(0))
	defer counter.Drop()

	other := counter.Clone()
	other.Value().Update(func(v *int) { *v++ })
	other.Drop()

	r := counter.Value().Borrow()
	defer r.Release()
	fmt.Println(r.Get()) // 1

Borrow guards must be released exactly once. Prefer View, Update and Replace, which release
for you. When holding a guard directly, defer its Release:

	w := cell.BorrowMut()
	defer w.Release()
	w.Set(w.Get() + 1)

# Failures

Violations are programming errors and panic instead of returning an error. The panic value
wraps one of the errors below, so a recovered value can be matched with errors.Is:

  - ErrAlreadyBorrowed, ErrAlreadyMutablyBorrowed: the single-threaded RefCell was borrowed
    against the shared-xor-exclusive rule.
  - ErrPoisoned: with the sync tag, a goroutine panicked while holding a RefMut (inside
    Update or with a directly deferred Release) and the cell was borrowed afterwards.
    TryBorrow and TryBorrowMut return this error instead, and ClearPoison resets the cell.
  - ErrReleased, ErrDropped: a guard or Arc handle was used after being released or dropped.

TryBorrow and TryBorrowMut never block or panic on a conflict in either realization; they
return an error wrapping ErrBorrowConflict.
*/
package maybe
