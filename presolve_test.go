package linprog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// allReductions returns a control structure with every presolve reduction
// enabled.
func allReductions() SolveCtrl {
	return SolveCtrl{
		MaxIter:          10,
		DelEmptyRows:     true,
		DelRowSingletons: true,
		DelFixedVars:     true,
	}
}

func TestPresolveFixedVariable(t *testing.T) {
	m := NewModel("fixed")

	x, err := m.AddVariableWithBounds("x", 3, 3)
	require.NoError(t, err)
	y, err := m.AddVariableWithBounds("y", 0, 10)
	require.NoError(t, err)

	_, err = m.AddConstraint(NewLinearExpr().Add(1, x).Add(1, y), LE, 8)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewLinearExpr().Add(1, x).Add(1, y), Maximize))

	ctrl := SolveCtrl{MaxIter: 10, DelFixedVars: true}
	soln, err := m.SolveWithCtrl(ctrl)
	require.NoError(t, err)
	require.True(t, soln.IsOptimal())
	require.Equal(t, 1, soln.ColsDel)

	// The fixed variable is restored into the solution by postsolve.
	vx, err := soln.Value(x)
	require.NoError(t, err)
	require.InDelta(t, 3, vx, 1e-9)

	vy, err := soln.Value(y)
	require.NoError(t, err)
	require.InDelta(t, 5, vy, 1e-9)
	require.InDelta(t, 8, soln.Objective, 1e-9)
}

func TestPresolveRowSingletonEquality(t *testing.T) {
	m := NewModel("singleton")

	x, err := m.AddVariableWithBounds("x", 0, 10)
	require.NoError(t, err)
	y, err := m.AddVariableWithBounds("y", 0, 10)
	require.NoError(t, err)

	// 2x = 6 decides x before the engine runs.
	_, err = m.AddConstraint(NewLinearExpr().Add(2, x), EQ, 6)
	require.NoError(t, err)
	_, err = m.AddConstraint(NewLinearExpr().Add(1, x).Add(1, y), LE, 7)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewLinearExpr().Add(1, x).Add(1, y), Maximize))

	ctrl := SolveCtrl{MaxIter: 10, DelRowSingletons: true}
	soln, err := m.SolveWithCtrl(ctrl)
	require.NoError(t, err)
	require.Equal(t, 1, soln.RowsDel)
	require.Equal(t, 1, soln.ColsDel)

	vx, err := soln.Value(x)
	require.NoError(t, err)
	require.InDelta(t, 3, vx, 1e-9)

	vy, err := soln.Value(y)
	require.NoError(t, err)
	require.InDelta(t, 4, vy, 1e-9)
}

func TestPresolveRowSingletonTightensBound(t *testing.T) {
	m := NewModel("tighten")

	x, err := m.AddVariableWithBounds("x", 0, 10)
	require.NoError(t, err)

	_, err = m.AddConstraint(NewLinearExpr().Add(1, x), LE, 4)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewLinearExpr().Add(1, x), Maximize))

	ctrl := SolveCtrl{MaxIter: 10, DelRowSingletons: true}
	soln, err := m.SolveWithCtrl(ctrl)
	require.NoError(t, err)
	require.Equal(t, 1, soln.RowsDel)
	require.Equal(t, 0, soln.ColsDel)

	vx, err := soln.Value(x)
	require.NoError(t, err)
	require.InDelta(t, 4, vx, 1e-9)
}

func TestPresolveRowSingletonNegativeCoefficient(t *testing.T) {
	m := NewModel("negcoef")

	x, err := m.AddVariableWithBounds("x", 0, 10)
	require.NoError(t, err)

	// -2x <= -6 is x >= 3 once the sign flips.
	_, err = m.AddConstraint(NewLinearExpr().Add(-2, x), LE, -6)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewLinearExpr().Add(1, x), Minimize))

	ctrl := SolveCtrl{MaxIter: 10, DelRowSingletons: true}
	soln, err := m.SolveWithCtrl(ctrl)
	require.NoError(t, err)

	vx, err := soln.Value(x)
	require.NoError(t, err)
	require.InDelta(t, 3, vx, 1e-9)
}

func TestPresolveSingletonOutsideBounds(t *testing.T) {
	m := NewModel("forced")

	x, err := m.AddVariableWithBounds("x", 0, 5)
	require.NoError(t, err)

	_, err = m.AddConstraint(NewLinearExpr().Add(1, x), EQ, 20)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewLinearExpr().Add(1, x), Maximize))

	soln, err := m.SolveWithCtrl(allReductions())
	require.Error(t, err)

	var slvErr *SolverError
	require.ErrorAs(t, err, &slvErr)
	require.Equal(t, StatusInfeasible, slvErr.Status)
	require.True(t, soln.IsInfeasible())
}

func TestPresolveEmptyRowSatisfied(t *testing.T) {
	m := NewModel("emptyok")

	x, err := m.AddVariableWithBounds("x", 0, 5)
	require.NoError(t, err)

	_, err = m.AddConstraint(NewLinearExpr(), LE, 5)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewLinearExpr().Add(1, x), Maximize))

	soln, err := m.SolveWithCtrl(allReductions())
	require.NoError(t, err)
	require.Equal(t, 1, soln.RowsDel)

	vx, err := soln.Value(x)
	require.NoError(t, err)
	require.InDelta(t, 5, vx, 1e-9)
}

func TestPresolveEmptyRowInfeasible(t *testing.T) {
	m := NewModel("emptybad")

	x, err := m.AddVariableWithBounds("x", 0, 5)
	require.NoError(t, err)

	_, err = m.AddConstraint(NewLinearExpr(), LE, -5)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewLinearExpr().Add(1, x), Maximize))

	soln, err := m.SolveWithCtrl(allReductions())
	require.Error(t, err)

	var slvErr *SolverError
	require.ErrorAs(t, err, &slvErr)
	require.Equal(t, StatusInfeasible, slvErr.Status)
	require.True(t, soln.IsInfeasible())
}

func TestPresolveCascadeDecidesModel(t *testing.T) {
	m := NewModel("cascade")

	x, err := m.AddVariableWithBounds("x", 2, 2)
	require.NoError(t, err)
	y, err := m.AddVariableWithBounds("y", 0, 10)
	require.NoError(t, err)

	// Fixing x turns the row into a singleton that decides y, so the
	// engine is handed nothing at all.
	con, err := m.AddConstraint(NewLinearExpr().Add(1, x).Add(1, y), EQ, 5)
	require.NoError(t, err)
	require.NoError(t, m.SetObjective(NewLinearExpr().Add(1, y), Maximize))

	soln, err := m.SolveWithCtrl(allReductions())
	require.NoError(t, err)
	require.True(t, soln.IsOptimal())
	require.Equal(t, 2, soln.ColsDel)
	require.Equal(t, 1, soln.RowsDel)

	vx, err := soln.Value(x)
	require.NoError(t, err)
	require.InDelta(t, 2, vx, 1e-9)

	vy, err := soln.Value(y)
	require.NoError(t, err)
	require.InDelta(t, 3, vy, 1e-9)
	require.InDelta(t, 3, soln.Objective, 1e-9)

	// Activity is evaluated against the original constraint.
	act, err := soln.Activity(con)
	require.NoError(t, err)
	require.InDelta(t, 5, act, 1e-9)
}

func TestPresolveMatchesPlainSolve(t *testing.T) {
	// The paint model solved with and without reductions must agree.
	plain, bluePlain, _, _ := buildPaintModel(t)
	reduced, blueReduced, _, _ := buildPaintModel(t)

	sPlain, err := plain.Solve()
	require.NoError(t, err)

	sReduced, err := reduced.SolveWithCtrl(allReductions())
	require.NoError(t, err)

	require.InDelta(t, sPlain.Objective, sReduced.Objective, 1e-6)

	vPlain, err := sPlain.Value(bluePlain)
	require.NoError(t, err)
	vReduced, err := sReduced.Value(blueReduced)
	require.NoError(t, err)
	require.InDelta(t, vPlain, vReduced, 1e-6)
}
