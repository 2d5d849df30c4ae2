package playback

import (
	"errors"
	"fmt"
)

// Domain errors for playback.
var (
	// ErrInvalidConfig indicates a non-positive dt or duration.
	ErrInvalidConfig = errors.New("playback: invalid config")

	// ErrTrajectoryShape indicates a trajectory whose vectors do not match the chain.
	ErrTrajectoryShape = errors.New("playback: trajectory does not match chain")

	// ErrEndNotInChain indicates a tracked joint that restructuring moved out of the chain.
	ErrEndNotInChain = errors.New("playback: tracked joint not in chain")
)

// StepError wraps a failure to apply one step with playback context.
type StepError struct {
	Step      int
	Time      float64
	Positions []float64
	Wrapped   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d at t=%.4f: %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
