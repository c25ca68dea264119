package maybe

import "github.com/gostdlib/maybesync/prim/maybe/internal/contract"

// Pod is the constraint on Cell values: booleans and numbers no larger than 64 bits, and any
// type defined on them. These are fixed size, copied bit for bit and hold no references.
type Pod = contract.Pod

var (
	// ErrBorrowConflict is wrapped by ErrAlreadyBorrowed and ErrAlreadyMutablyBorrowed.
	ErrBorrowConflict = contract.ErrBorrowConflict
	// ErrAlreadyBorrowed reports a request for exclusive access while another borrow is outstanding.
	ErrAlreadyBorrowed = contract.ErrAlreadyBorrowed
	// ErrAlreadyMutablyBorrowed reports a request for shared access while a RefMut is outstanding
	// or, with the sync tag, while a writer is waiting in BorrowMut().
	ErrAlreadyMutablyBorrowed = contract.ErrAlreadyMutablyBorrowed
	// ErrPoisoned reports a RefCell that a goroutine panicked while mutating.
	ErrPoisoned = contract.ErrPoisoned
	// ErrReleased reports a guard used after Release.
	ErrReleased = contract.ErrReleased
	// ErrDropped reports an Arc handle used after Drop.
	ErrDropped = contract.ErrDropped
)

// Mode returns "sync" when built with the sync tag and "local" otherwise.
func Mode() string {
	return mode
}
