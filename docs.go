// 01   August 30, 2026   Initial version

/*
Package linprog ("linear programming") provides Go language tools for building
and solving Linear Programming (LP) models. It is intended for users who want
to state an optimization problem in a few lines of Go and have it solved by a
pre-built simplex engine without dealing with matrix form directly.

Some of the main functions include:
  - declaring bounded continuous variables, singly or in bulk
  - adding linear constraints and a linear objective
  - model presolving
  - solving models via submission to the gonum simplex engine

The gonum package (gonum.org/v1/gonum/optimize/convex/lp) is used by linprog
to perform the actual optimization. It is treated as an opaque collaborator:
linprog translates the model to the engine's canonical form, makes a single
synchronous call per solve, and translates the results back.

# Building and Solving Models

A model is created empty, populated, and solved once. After the first call to
Solve the model is frozen and all mutating functions fail. For example, the
code to maximize the revenue of a paint production plan could include the
following:

	m := linprog.NewModel("paint")

	blue, _  := m.AddVariableWithBounds("BluePaint", 0, 860)
	black, _ := m.AddVariableWithBounds("BlackPaint", 0, 1000)

	// Machine capacity: BluePaint/40 + BlackPaint/30 <= 40 hours.
	capacity, _ := m.AddConstraint(
		linprog.NewLinearExpr().Add(1.0/40, blue).Add(1.0/30, black),
		linprog.LE, 40)

	_ = m.SetObjective(
		linprog.NewLinearExpr().Add(10, blue).Add(15, black),
		linprog.Maximize)

	soln, err := m.Solve()
	if err != nil {
		fmt.Printf("linprog returned the following error: %s\n", err)
		return
	}

	v, _ := soln.Value(blue)
	s, _ := soln.Slack(capacity)

The Solution reports per-variable values, the objective value, and the
activity and slack of each constraint. When the engine reports the model
infeasible or unbounded, Solve returns a Solution carrying that status
together with a *SolverError, and no values are available.

# Presolving

Package linprog implements some presolving techniques to reduce the size of a
model before it reaches the engine. The presolver techniques, described by
Andersen and Andersen, include:

  - removing empty rows      (constraint has no variables)
  - removing row singletons  (constraints that have a single variable)
  - removing fixed variables (upper bound equals the lower bound)

You can control which of these presolving methods are invoked by setting the
appropriate boolean flags in the control structure passed to SolveWithCtrl:

	type SolveCtrl struct {
		Tolerance        float64 // Simplex tolerance, or 0 for the engine default
		MaxIter          int     // Maximum presolve iterations
		DelEmptyRows     bool    // Controls if empty rows are removed
		DelRowSingletons bool    // Controls if row singletons are removed
		DelFixedVars     bool    // Controls if fixed variables are removed
	}

Variables removed by the presolver are restored into the Solution after the
engine returns, so the results always match the original model.

Each Model instance is fully independent and owned by its caller; separate
models may be built and solved concurrently. A single Model must be used by
one goroutine at a time.
*/
package linprog
