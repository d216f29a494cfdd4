package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfig indicates missing or malformed run inputs. Runs that fail
	// with ErrConfig produce no partial result.
	ErrConfig = errors.New("sim: invalid configuration")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates a state vector of the wrong length.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch between state and system")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("sim: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step     int
	Time     float64
	Aircraft int
	State    State
	Wrapped  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) aircraft %d: %v", e.Step, e.Time, e.Aircraft+1, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
