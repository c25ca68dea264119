// Package concurrent is the thread-safe realization of the maybe primitives. Arc counts owners
// atomically, RefCell wraps a sync.RWMutex and records poisoning, and Cell stores its value's
// bit pattern in a sequentially consistent atomic word. Every type here may be shared by any
// number of goroutines.
package concurrent

import "github.com/gostdlib/maybesync/prim/maybe/internal/contract"

// Mode names this realization.
const Mode = contract.ModeSync
