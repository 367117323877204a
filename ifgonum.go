package linprog

// Interface to the gonum LP solver engine.
//
// The functions in this file translate a model from the structures used
// while building (model.go) and presolving (presolve.go) into the general
// form accepted by gonum's simplex implementation, invoke the engine, and
// translate the results back. The engine is treated as a black box: one
// synchronous call per solve, no retries.
//
// The general form handed to the engine is
//
//	minimize    c' * x
//	subject to  G * x <= h
//	            A * x  = b
//
// with x free, so finite variable bounds are folded into G and h rows and
// a maximization objective is negated on the way in.

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/go-opt/linprog/logger"
)

// SolveCtrl specifies how a model is to be solved: the tolerance passed
// to the simplex engine, and which presolve reductions should be applied
// before the engine is invoked. It is passed as an argument to
// SolveWithCtrl.
type SolveCtrl struct {
	Tolerance        float64 // Simplex tolerance, or 0 for the engine default
	MaxIter          int     // Maximum presolve iterations
	DelEmptyRows     bool    // Controls if empty rows are removed
	DelRowSingletons bool    // Controls if row singletons are removed
	DelFixedVars     bool    // Controls if fixed variables are removed
}

// DefaultSolveCtrl returns the control structure used by Solve: no
// presolve reductions and the engine's default tolerance.
func DefaultSolveCtrl() SolveCtrl {
	return SolveCtrl{MaxIter: 10}
}

// Solve solves the model with the default control structure. See
// SolveWithCtrl.
func (m *Model) Solve() (*Solution, error) {
	return m.SolveWithCtrl(DefaultSolveCtrl())
}

// SolveWithCtrl performs a single deterministic solve attempt and returns
// the resulting Solution. The first call freezes the model: whatever the
// outcome, the model can no longer be mutated, and repeated calls return
// the original result without invoking the engine again.
//
// When the engine reports the model infeasible or unbounded, the returned
// Solution carries that status and the error is a *SolverError wrapping
// the engine's report; variable values are only available when the status
// is StatusOptimal.
//
// A model without variables or without an objective is rejected before
// the solve is attempted and remains in the building state.
// In case of failure, function returns an error.
func (m *Model) SolveWithCtrl(ctrl SolveCtrl) (*Solution, error) {

	// A terminal model returns its original result.
	if m.state != stateBuilding {
		return m.soln, m.slvErr
	}

	if len(m.vars) == 0 {
		return nil, errors.New("model has no variables")
	}

	if m.obj == nil {
		return nil, errors.Wrapf(ErrNoObjective, "model %s", m.name)
	}

	log := logger.Logger()
	log.Info().Str("model", m.name).Int("rows", len(m.cons)).
		Int("cols", len(m.vars)).Str("direction", m.obj.dir.String()).
		Msg("solving model")

	// Build the working copy and apply the requested reductions. A
	// reduction can prove the model infeasible outright, in which case the
	// engine is never invoked.

	ws := m.newWorkSet()

	if err := ws.reduce(ctrl); err != nil {
		if errors.Is(err, errInfeasible) {
			return m.finishSolve(ws, StatusInfeasible, err)
		}
		m.state = stateFailed
		m.soln = &Solution{Status: StatusError, model: m}
		m.slvErr = errors.Wrap(err, "presolve failed")
		return m.soln, m.slvErr
	}

	// Hand the reduced model to the engine and merge its results with the
	// values decided during presolve.

	vals := make([]float64, len(m.vars))

	err := ws.runSimplex(m.obj, ctrl.Tolerance, vals)
	switch {

	case err == nil:
		if err = ws.postSolve(vals); err != nil {
			m.state = stateFailed
			m.soln = &Solution{Status: StatusError, model: m}
			m.slvErr = errors.Wrap(err, "postsolve failed")
			return m.soln, m.slvErr
		}
		m.soln = m.assembleSoln(ws, vals)
		m.state = stateSolved
		m.slvErr = nil
		log.Info().Str("model", m.name).Float64("objective", m.soln.Objective).
			Msg("optimal solution found")
		return m.soln, nil

	case errors.Is(err, lp.ErrInfeasible):
		return m.finishSolve(ws, StatusInfeasible, err)

	case errors.Is(err, lp.ErrUnbounded):
		return m.finishSolve(ws, StatusUnbounded, err)

	default:
		m.state = stateFailed
		m.soln = &Solution{Status: StatusError, model: m}
		m.slvErr = &SolverError{Status: StatusError, Err: err}
		log.Error().Str("model", m.name).Err(err).Msg("solver engine failed")
		return m.soln, m.slvErr
	}
}

// finishSolve records an infeasible or unbounded outcome as the model's
// terminal state and returns the solution along with the SolverError
// describing the condition.
func (m *Model) finishSolve(ws *workSet, status Status, cause error) (*Solution, error) {

	m.soln = &Solution{
		Status:  status,
		RowsDel: ws.rowsDel(),
		ColsDel: ws.colsDel(),
		model:   m,
	}
	m.state = stateSolved
	m.slvErr = &SolverError{Status: status, Err: cause}

	log := logger.Logger()
	log.Info().Str("model", m.name).Str("status", status.String()).
		Msg("solve finished without optimal solution")

	return m.soln, m.slvErr
}

// assembleSoln builds the optimal Solution from the full set of variable
// values. The objective and the constraint activities are evaluated from
// the original model rather than the reduced one, so values removed by
// presolve are reflected correctly.
func (m *Model) assembleSoln(ws *workSet, vals []float64) *Solution {

	activity := make([]float64, len(m.cons))
	for i, con := range m.cons {
		activity[i] = evalExpr(con.expr, vals)
	}

	return &Solution{
		Status:    StatusOptimal,
		Objective: evalExpr(m.obj.expr, vals),
		RowsDel:   ws.rowsDel(),
		ColsDel:   ws.colsDel(),
		model:     m,
		values:    vals,
		activity:  activity,
	}
}

//==============================================================================
// TRANSLATION TO THE ENGINE'S GENERAL FORM
//==============================================================================

// runSimplex translates the active part of the working set into the
// engine's general form, invokes the engine, and writes the optimal value
// of every surviving column into vals (indexed by original column).
// In case of failure, function returns the error reported by the engine.
func (ws *workSet) runSimplex(obj *Objective, tol float64, vals []float64) error {

	// Map surviving columns to compact indices for the engine.

	compact := make([]int, len(ws.cols))
	var activeCols []int

	for i := range ws.cols {
		compact[i] = -1
		if ws.cols[i].State == wsActive {
			compact[i] = len(activeCols)
			activeCols = append(activeCols, i)
		}
	}
	n := len(activeCols)

	// If presolve fixed every column, there is nothing left to optimize.
	// The remaining active rows have no terms and only need a consistency
	// check.
	if n == 0 {
		for i := range ws.rows {
			if ws.rows[i].State != wsActive {
				continue
			}
			if !emptyRowOK(ws.rows[i].Rel, ws.rows[i].Rhs) {
				return errors.Wrapf(lp.ErrInfeasible,
					"row %s violated by presolved values", ws.rows[i].Name)
			}
		}
		return nil
	}

	// Objective coefficients over the surviving columns. The engine
	// minimizes, so a maximization objective is negated.

	c := make([]float64, n)
	for _, t := range obj.expr.terms {
		if compact[t.Var.index] >= 0 {
			c[compact[t.Var.index]] += t.Coef
		}
	}
	if obj.dir == Maximize {
		for i := range c {
			c[i] = -c[i]
		}
	}

	// Translate the rows. "<=" rows go into G/h as is, ">=" rows are
	// negated, and "=" rows go into A/b.

	var gData, h []float64
	var aData, b []float64

	for i := range ws.rows {

		if ws.rows[i].State != wsActive {
			continue
		}

		dense := make([]float64, n)
		for _, t := range ws.rows[i].Terms {
			dense[compact[t.Col]] += t.Coef
		}

		switch ws.rows[i].Rel {

		case LE:
			gData = append(gData, dense...)
			h = append(h, ws.rows[i].Rhs)

		case GE:
			for j := range dense {
				dense[j] = -dense[j]
			}
			gData = append(gData, dense...)
			h = append(h, -ws.rows[i].Rhs)

		case EQ:
			aData = append(aData, dense...)
			b = append(b, ws.rows[i].Rhs)
		}
	}

	// The engine treats x as free, so every finite variable bound becomes
	// an inequality row, including the default lower bound of zero.

	for k, colIndex := range activeCols {
		col := ws.cols[colIndex]

		if !math.IsInf(col.BndLo, -1) {
			dense := make([]float64, n)
			dense[k] = -1
			gData = append(gData, dense...)
			h = append(h, -col.BndLo)
		}

		if !math.IsInf(col.BndUp, 1) {
			dense := make([]float64, n)
			dense[k] = 1
			gData = append(gData, dense...)
			h = append(h, col.BndUp)
		}
	}

	// Free variables with no rows at all leave nothing to hand to the
	// engine: the objective is unbounded unless it is constant over the
	// surviving columns, in which case any point is optimal and zero is
	// reported.
	if len(h) == 0 && len(b) == 0 {
		for _, coef := range c {
			if coef != 0 {
				return errors.Wrap(lp.ErrUnbounded,
					"free variables with no constraints")
			}
		}
		for _, colIndex := range activeCols {
			vals[colIndex] = 0
		}
		return nil
	}

	var g, a mat.Matrix
	if len(h) > 0 {
		g = mat.NewDense(len(h), n, gData)
	}
	if len(b) > 0 {
		a = mat.NewDense(len(b), n, aData)
	}

	// Convert to standard form and run the simplex engine. Convert splits
	// each free variable x into xplus - xminus, so the first 2n entries of
	// the standard-form optimum recover the original values.

	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)

	_, xStd, err := lp.Simplex(cStd, aStd, bStd, tol, nil)
	if err != nil {
		return err
	}

	for k, colIndex := range activeCols {
		vals[colIndex] = xStd[k] - xStd[n+k]
	}

	return nil
}
