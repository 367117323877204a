package linprog

// Error values returned by the model building and solving functions.
// Callers are expected to test for them with errors.Is; the functions
// themselves return wrapped variants carrying the offending names.

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateVariable is returned when a variable name is declared twice
	// in the same model.
	ErrDuplicateVariable = errors.New("variable already declared")

	// ErrInvalidBounds is returned when a variable is declared with a lower
	// bound greater than its upper bound, or with a NaN bound.
	ErrInvalidBounds = errors.New("invalid variable bounds")

	// ErrUnknownVariable is returned when an expression references a variable
	// that was not declared in the model being operated on.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrNotSolved is returned when a result is requested before the model
	// has been solved to optimality.
	ErrNotSolved = errors.New("model not solved")

	// ErrModelFrozen is returned when a mutating operation is attempted on a
	// model that has already been solved.
	ErrModelFrozen = errors.New("model is frozen after solve")

	// ErrNoObjective is returned by Solve when no objective function has
	// been set.
	ErrNoObjective = errors.New("model has no objective function")
)

// SolverError reports a solve attempt that did not reach an optimal
// solution. Status records the condition reported by the solver engine
// (infeasible, unbounded, or a numerical failure), and Err holds the
// underlying engine error, if any.
type SolverError struct {
	Status Status
	Err    error
}

func (e *SolverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("solver reported %s: %s", e.Status, e.Err)
	}
	return fmt.Sprintf("solver reported %s", e.Status)
}

// Unwrap returns the underlying engine error.
func (e *SolverError) Unwrap() error {
	return e.Err
}
