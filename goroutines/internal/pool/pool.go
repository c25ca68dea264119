// Package pool holds what the goroutines.Pool implementations share.
package pool

import "fmt"

// Type names a Pool implementation.
type Type uint8

const (
	Unknown Type = 0
	Pooled  Type = 1
	Limited Type = 2
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Pooled:
		return "pooled"
	case Limited:
		return "limited"
	}
	return "unknown"
}

// SubmitOptions are the settings a SubmitOption changes.
type SubmitOptions struct {
	// Caller names the submitting function in trace events.
	Caller string
	// Type is the Pool the options were passed to.
	Type Type
	// NonBlocking runs the job on a new goroutine when the pool is full instead of waiting.
	NonBlocking bool
}

// Require returns an error if the options were not passed to a pool of type t. option is
// the option's name for the error message.
func (o *SubmitOptions) Require(t Type, option string) error {
	if o.Type != t {
		return fmt.Errorf("cannot use %s.%s() with a %s pool", t, option, o.Type)
	}
	return nil
}

// Preventer keeps packages outside goroutines/ from implementing its pools.
type Preventer interface {
	pool()
}

// Pool implements Preventer.
type Pool struct{}

//lint:ignore U1000 This is for internal use only.
func (p *Pool) pool() {}
