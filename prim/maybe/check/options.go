package check

import (
	"fmt"

	"github.com/gostdlib/maybesync/goroutines"
	"github.com/johnsiilver/calloptions"
)

// Option is an option for the functions in this package.
type Option interface {
	check()
}

type checkOptions struct {
	workers    int
	iterations int
	pool       goroutines.Pool
	runID      string
}

// WithWorkers sets how many goroutines contend for a primitive. Defaults to 8. Without the
// sync build tag this is always 1, as single-threaded primitives must not be shared.
func WithWorkers(n int) interface {
	Option
	calloptions.CallOption
} {
	return struct {
		Option
		calloptions.CallOption
	}{
		CallOption: calloptions.New(
			func(a any) error {
				switch t := a.(type) {
				case *checkOptions:
					if n < 1 {
						return fmt.Errorf("WithWorkers(%d): must be >= 1", n)
					}
					t.workers = n
					return nil
				}
				return fmt.Errorf("WithWorkers can only be used with a check Option")
			},
		),
	}
}

// WithIterations sets how many operations each worker performs, or how many rounds a
// check runs. Defaults to 1000.
func WithIterations(n int) interface {
	Option
	calloptions.CallOption
} {
	return struct {
		Option
		calloptions.CallOption
	}{
		CallOption: calloptions.New(
			func(a any) error {
				switch t := a.(type) {
				case *checkOptions:
					if n < 1 {
						return fmt.Errorf("WithIterations(%d): must be >= 1", n)
					}
					t.iterations = n
					return nil
				}
				return fmt.Errorf("WithIterations can only be used with a check Option")
			},
		),
	}
}

// WithPool sets the goroutines.Pool workers run on. The pool must be able to run every
// worker at once. If not set, a pooled.Pool sized to the worker count is created per check.
func WithPool(pool goroutines.Pool) interface {
	Option
	calloptions.CallOption
} {
	return struct {
		Option
		calloptions.CallOption
	}{
		CallOption: calloptions.New(
			func(a any) error {
				switch t := a.(type) {
				case *checkOptions:
					t.pool = pool
					return nil
				}
				return fmt.Errorf("WithPool can only be used with a check Option")
			},
		),
	}
}

// WithRunID sets the run ID recorded in reports. If not set, a random UUID is used.
func WithRunID(id string) interface {
	Option
	calloptions.CallOption
} {
	return struct {
		Option
		calloptions.CallOption
	}{
		CallOption: calloptions.New(
			func(a any) error {
				switch t := a.(type) {
				case *checkOptions:
					t.runID = id
					return nil
				}
				return fmt.Errorf("WithRunID can only be used with a check Option")
			},
		),
	}
}
