package nbody

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrAllocation indicates the body arrays could not be allocated.
	ErrAllocation = errors.New("nbody: allocation failed")

	// ErrBackend indicates a compute backend failed while running a phase.
	ErrBackend = errors.New("nbody: backend failure")

	// ErrInvalidParams indicates a simulation constant is outside its valid range.
	ErrInvalidParams = errors.New("nbody: invalid parameters")

	// ErrBufferTooSmall indicates a readback buffer shorter than 4*N floats.
	ErrBufferTooSmall = errors.New("nbody: readback buffer too small")
)

// AllocError names the array whose allocation failed.
type AllocError struct {
	Array string
	N     int
	Err   error
}

func (e *AllocError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("nbody: allocate %s for %d bodies", e.Array, e.N)
	}
	return fmt.Sprintf("nbody: allocate %s for %d bodies: %v", e.Array, e.N, e.Err)
}

func (e *AllocError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAllocation}
	}
	return []error{ErrAllocation, e.Err}
}

// BackendError wraps a failure reported by a backend during a phase.
type BackendError struct {
	Backend string
	Op      string
	Step    int
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("nbody: %s %s at step %d: %v", e.Backend, e.Op, e.Step, e.Err)
}

func (e *BackendError) Unwrap() []error {
	return []error{ErrBackend, e.Err}
}
