package micromag

import (
	"errors"
	"fmt"
)

// Domain errors for relaxation operations.
var (
	// ErrInvalidSize indicates a chain constructed with no moments.
	ErrInvalidSize = errors.New("micromag: chain size must be positive")

	// ErrNoInitPolicy indicates NewChain was called without a policy.
	ErrNoInitPolicy = errors.New("micromag: no initial-condition policy")

	// ErrDegenerateMoment indicates an update drove a moment to zero or
	// non-finite length, so it cannot be normalized.
	ErrDegenerateMoment = errors.New("micromag: degenerate moment (cannot normalize)")

	// ErrContextCanceled indicates the relaxation was interrupted.
	ErrContextCanceled = errors.New("micromag: relaxation canceled by context")
)

// StepError wraps an error with the iteration and site it occurred at.
type StepError struct {
	Iteration int
	Site      int
	Moment    Vec3
	Wrapped   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("iteration %d, site %d (m=%v): %v", e.Iteration, e.Site, e.Moment, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
