package linprog

// Solution reporting for solved models.
//
// A Solution is produced by Solve and is read-only. Besides the optimal
// variable values and the objective value it carries the activity (the
// left-hand side evaluated at the optimal point) and the slack of every
// constraint, so callers can inspect which constraints bind without
// re-deriving them.

import (
	"github.com/pkg/errors"
)

// Status reports the outcome of a solve attempt.
type Status int

const (
	StatusOptimal    Status = iota // an optimal solution was found
	StatusInfeasible               // the constraints admit no solution
	StatusUnbounded                // the objective can be improved without limit
	StatusError                    // the solver failed for another reason
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Solution holds the results of a solve attempt. Values, activities, and
// the objective are populated only when Status is StatusOptimal.
type Solution struct {
	Status    Status  // outcome of the solve attempt
	Objective float64 // objective function value at the optimal point
	RowsDel   int     // constraints removed by presolve reductions
	ColsDel   int     // variables removed by presolve reductions

	model    *Model    // model the solution belongs to
	values   []float64 // optimal value per variable, indexed as in the model
	activity []float64 // LHS value per constraint, indexed as in the model
}

// IsOptimal reports whether an optimal solution was found.
func (s *Solution) IsOptimal() bool {
	return s.Status == StatusOptimal
}

// IsInfeasible reports whether the solver found the model infeasible.
func (s *Solution) IsInfeasible() bool {
	return s.Status == StatusInfeasible
}

// IsUnbounded reports whether the solver found the model unbounded.
func (s *Solution) IsUnbounded() bool {
	return s.Status == StatusUnbounded
}

// Value returns the optimal value of the given variable.
// In case of failure, function returns an error.
func (s *Solution) Value(v *Variable) (float64, error) {

	if s.Status != StatusOptimal {
		return 0, errors.Wrapf(ErrNotSolved, "solution status is %s", s.Status)
	}

	if v == nil || v.model != s.model {
		return 0, errors.Wrap(ErrUnknownVariable, "variable belongs to a different model")
	}

	return s.values[v.index], nil
}

// Activity returns the value of the constraint's left-hand side at the
// optimal point.
// In case of failure, function returns an error.
func (s *Solution) Activity(con *Constraint) (float64, error) {

	if s.Status != StatusOptimal {
		return 0, errors.Wrapf(ErrNotSolved, "solution status is %s", s.Status)
	}

	if con == nil || con.model != s.model {
		return 0, errors.New("constraint belongs to a different model")
	}

	return s.activity[con.index], nil
}

// Slack returns the distance between the constraint's right-hand side and
// its activity at the optimal point. For a <= or = constraint the slack
// is rhs - activity; for a >= constraint it is activity - rhs, so a
// binding constraint always has slack zero.
// In case of failure, function returns an error.
func (s *Solution) Slack(con *Constraint) (float64, error) {

	act, err := s.Activity(con)
	if err != nil {
		return 0, err
	}

	if con.rel == GE {
		return act - con.rhs, nil
	}

	return con.rhs - act, nil
}

// evalExpr computes the value of a linear expression at the point given
// by the per-variable values in vals.
func evalExpr(expr *LinearExpr, vals []float64) float64 {
	lhs := 0.0
	for _, t := range expr.terms {
		lhs += t.Coef * vals[t.Var.index]
	}
	return lhs
}
