// Package single is the single-threaded realization of the maybe primitives. Nothing here
// synchronizes: Arc keeps a plain owner count, RefCell checks the borrow rules at runtime and
// panics on a violation instead of blocking, and Cell is a plain value. Values from this
// package must stay on one goroutine, or be handed between goroutines with a happens-before
// edge (a channel send, a WaitGroup) and never used by two at once.
package single

import "github.com/gostdlib/maybesync/prim/maybe/internal/contract"

// Mode names this realization.
const Mode = contract.ModeLocal
