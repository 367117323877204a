package linprog

// Presolve reductions.
//
// Before a model is handed to the solver engine it can optionally be
// reduced by deleting rows and columns whose values are already decided,
// following the techniques described by Andersen and Andersen (1993).
// The reductions operate on a working copy of the model so the original
// is untouched, and every column removal is recorded in an operation log
// that is replayed after the solve to restore the removed variables into
// the solution.
//
// The reductions supported at this time are:
//
//	- removing empty rows      (constraint has no variables left)
//	- removing fixed variables (upper bound equals the lower bound)
//	- removing row singletons  (constraints that have a single variable)

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/go-opt/linprog/logger"
)

// Constants used to determine which presolve operation was performed.
const (
	psopFixedVar   = "FXV" // Fixed variable
	psopRowSingltn = "RSG" // Row singleton
	psopEmptyRow   = "MTR" // Empty row
)

// States of rows and columns in the working set.
const (
	wsActive = iota
	wsDelete
)

// feasTol is the tolerance used when presolve checks bounds and
// right-hand sides for consistency.
const feasTol = 1e-9

// errInfeasible flags a model proven infeasible during presolve, before
// the solver engine is ever invoked.
var errInfeasible = errors.New("model is infeasible")

// workTerm is a single non-zero coefficient in a working-set row.
type workTerm struct {
	Col  int     // index of the column in the working set
	Coef float64 // coefficient value
}

// workRow is the working-set copy of a constraint. Rows are flagged for
// deletion rather than removed so that indices stay stable; the solver
// translation skips deleted rows.
type workRow struct {
	Name  string
	Rel   Relation
	Rhs   float64
	Terms []workTerm
	State int
}

// workCol is the working-set copy of a variable. Bounds may be tightened
// by row-singleton reductions.
type workCol struct {
	Name  string
	BndLo float64
	BndUp float64
	State int
}

// psOp records a column fixed during presolve so its value can be
// restored into the solution by postSolve.
type psOp struct {
	OpType string  // type of reduction operation performed
	Col    int     // column fixed by this operation
	Value  float64 // value the column was fixed at
}

// workSet is the mutable copy of a model that presolve reductions and the
// solver translation operate on. It is local to a single solve, so
// independent models never share reduction state.
type workSet struct {
	rows     []workRow
	cols     []workCol
	psOpList []psOp
}

// newWorkSet builds the working copy of the model. Zero coefficients are
// dropped so that term counts reflect actual row structure.
func (m *Model) newWorkSet() *workSet {

	ws := &workSet{
		rows: make([]workRow, 0, len(m.cons)),
		cols: make([]workCol, 0, len(m.vars)),
	}

	for _, v := range m.vars {
		ws.cols = append(ws.cols, workCol{
			Name:  v.name,
			BndLo: v.BndLo,
			BndUp: v.BndUp,
			State: wsActive,
		})
	}

	for _, con := range m.cons {
		row := workRow{
			Name:  conName(con),
			Rel:   con.rel,
			Rhs:   con.rhs,
			State: wsActive,
		}
		for _, t := range con.expr.terms {
			if t.Coef == 0 {
				continue
			}
			row.Terms = append(row.Terms, workTerm{Col: t.Var.index, Coef: t.Coef})
		}
		ws.rows = append(ws.rows, row)
	}

	return ws
}

// rowsDel returns the number of rows flagged as deleted.
func (ws *workSet) rowsDel() int {
	n := 0
	for i := range ws.rows {
		if ws.rows[i].State == wsDelete {
			n++
		}
	}
	return n
}

// colsDel returns the number of columns flagged as deleted.
func (ws *workSet) colsDel() int {
	n := 0
	for i := range ws.cols {
		if ws.cols[i].State == wsDelete {
			n++
		}
	}
	return n
}

// emptyRowOK checks whether an empty row is trivially satisfied, i.e.
// whether "0 rel rhs" holds.
func emptyRowOK(rel Relation, rhs float64) bool {
	switch rel {
	case LE:
		return rhs >= -feasTol
	case GE:
		return rhs <= feasTol
	default:
		return rhs >= -feasTol && rhs <= feasTol
	}
}

//==============================================================================
// ROW AND COLUMN REDUCTION OPERATIONS
//==============================================================================

// fixCol fixes the column at the given value, substitutes the value into
// every active row that references the column, flags the column as
// deleted, and records the operation for postSolve.
func (ws *workSet) fixCol(opType string, colIndex int, value float64) {

	for i := range ws.rows {
		if ws.rows[i].State != wsActive {
			continue
		}
		newTerms := ws.rows[i].Terms[:0]
		for _, t := range ws.rows[i].Terms {
			if t.Col == colIndex {
				ws.rows[i].Rhs -= t.Coef * value
				continue
			}
			newTerms = append(newTerms, t)
		}
		ws.rows[i].Terms = newTerms
	}

	ws.cols[colIndex].State = wsDelete
	ws.psOpList = append(ws.psOpList, psOp{OpType: opType, Col: colIndex, Value: value})
}

// delEmptyRows flags any active row without variables for deletion, and
// passes back the number of rows deleted in numDltd.
// In case of failure, function returns an error.
func (ws *workSet) delEmptyRows(numDltd *int) error {

	log := logger.Logger()
	log.Debug().Msg("looking for empty rows")

	*numDltd = 0

	for i := range ws.rows {

		if ws.rows[i].State != wsActive || len(ws.rows[i].Terms) > 0 {
			continue
		}

		if !emptyRowOK(ws.rows[i].Rel, ws.rows[i].Rhs) {
			return errors.Wrapf(errInfeasible,
				"empty row %s requires 0 %s %g", ws.rows[i].Name, ws.rows[i].Rel, ws.rows[i].Rhs)
		}

		ws.rows[i].State = wsDelete
		ws.psOpList = append(ws.psOpList, psOp{OpType: psopEmptyRow, Col: -1})
		*numDltd++
		log.Debug().Str("row", ws.rows[i].Name).Msg("empty row removed")
	}

	if *numDltd != 0 {
		log.Info().Int("rows", *numDltd).Msg("deleted empty rows")
	}

	return nil
}

// delFixedVars fixes every active column whose upper bound equals its
// lower bound, and passes back the number of columns deleted in numDltd.
// In case of failure, function returns an error.
func (ws *workSet) delFixedVars(numDltd *int) error {

	log := logger.Logger()
	log.Debug().Msg("looking for fixed variables")

	*numDltd = 0

	for i := range ws.cols {

		if ws.cols[i].State != wsActive || ws.cols[i].BndLo != ws.cols[i].BndUp {
			continue
		}

		ws.fixCol(psopFixedVar, i, ws.cols[i].BndLo)
		*numDltd++
		log.Debug().Str("col", ws.cols[i].Name).Float64("value", ws.cols[i].BndLo).
			Msg("fixed variable removed")
	}

	if *numDltd != 0 {
		log.Info().Int("cols", *numDltd).Msg("deleted fixed variables")
	}

	return nil
}

// delRowSingletons processes active rows that reference a single
// variable. An equality singleton fixes the variable outright; an
// inequality singleton tightens the variable's bound. Either way the row
// is deleted. The function passes back the numbers of rows and columns
// deleted in rowsDltd and colsDltd.
// In case of failure, function returns an error.
func (ws *workSet) delRowSingletons(rowsDltd *int, colsDltd *int) error {

	log := logger.Logger()
	log.Debug().Msg("looking for row singletons")

	*rowsDltd = 0
	*colsDltd = 0

	for i := range ws.rows {

		if ws.rows[i].State != wsActive || len(ws.rows[i].Terms) != 1 {
			continue
		}

		colIndex := ws.rows[i].Terms[0].Col
		coef := ws.rows[i].Terms[0].Coef
		col := &ws.cols[colIndex]
		bound := ws.rows[i].Rhs / coef

		// Dividing by a negative coefficient flips the direction of an
		// inequality row.
		rel := ws.rows[i].Rel
		if coef < 0 {
			switch rel {
			case LE:
				rel = GE
			case GE:
				rel = LE
			}
		}

		switch rel {

		case EQ:
			if bound < col.BndLo-feasTol || bound > col.BndUp+feasTol {
				return errors.Wrapf(errInfeasible,
					"row %s forces %s = %g outside bounds %g to %g",
					ws.rows[i].Name, col.Name, bound, col.BndLo, col.BndUp)
			}
			ws.rows[i].State = wsDelete
			ws.fixCol(psopRowSingltn, colIndex, bound)
			*rowsDltd++
			*colsDltd++
			log.Debug().Str("row", ws.rows[i].Name).Str("col", col.Name).
				Msg("row singleton removed")
			continue

		case LE:
			if bound < col.BndUp {
				col.BndUp = bound
			}

		case GE:
			if bound > col.BndLo {
				col.BndLo = bound
			}
		}

		if col.BndLo > col.BndUp+feasTol {
			return errors.Wrapf(errInfeasible,
				"row %s tightens %s bounds to %g to %g",
				ws.rows[i].Name, col.Name, col.BndLo, col.BndUp)
		}

		ws.rows[i].State = wsDelete
		*rowsDltd++
		log.Debug().Str("row", ws.rows[i].Name).Str("col", col.Name).
			Msg("singleton row absorbed into bounds")
	}

	if *rowsDltd != 0 {
		log.Info().Int("rows", *rowsDltd).Int("cols", *colsDltd).Msg("deleted row singletons")
	}

	return nil
}

//==============================================================================
// REDUCTION LOOP AND POST-SOLVE
//==============================================================================

// reduce runs the reductions enabled in the control structure, repeating
// them until an iteration removes nothing or the iteration limit is
// reached. Reductions cascade: fixing a variable can empty a row, and
// deleting a row can expose a singleton on the next pass.
// In case of failure, function returns an error.
func (ws *workSet) reduce(ctrl SolveCtrl) error {

	log := logger.Logger()

	maxIter := ctrl.MaxIter
	if maxIter <= 0 {
		maxIter = 1
	}

	for iter := 1; iter <= maxIter; iter++ {

		removed := 0
		numDltd := 0

		if ctrl.DelFixedVars {
			if err := ws.delFixedVars(&numDltd); err != nil {
				return err
			}
			removed += numDltd
		}

		if ctrl.DelRowSingletons {
			rowsDltd, colsDltd := 0, 0
			if err := ws.delRowSingletons(&rowsDltd, &colsDltd); err != nil {
				return err
			}
			removed += rowsDltd + colsDltd
		}

		if ctrl.DelEmptyRows {
			if err := ws.delEmptyRows(&numDltd); err != nil {
				return err
			}
			removed += numDltd
		}

		log.Debug().Int("iteration", iter).Int("removed", removed).
			Int("rows", len(ws.rows)-ws.rowsDel()).
			Int("cols", len(ws.cols)-ws.colsDel()).Msg("presolve iteration done")

		if removed == 0 {
			break
		}
	}

	return nil
}

// postSolve merges the values calculated by the solver engine with the
// values decided during presolve, by replaying the operation log in
// reverse. The vals slice is indexed by original column and already
// contains the engine results for the columns that survived reduction.
// In case of failure, function returns an error.
func (ws *workSet) postSolve(vals []float64) error {

	for i := len(ws.psOpList) - 1; i >= 0; i-- {

		op := ws.psOpList[i]

		switch op.OpType {

		// Recorded so deletions can be reported, but needs no post-solve step.
		case psopEmptyRow:
			continue

		case psopFixedVar, psopRowSingltn:
			vals[op.Col] = op.Value

		default:
			return errors.Errorf("unexpected operation %s in postSolve", op.OpType)
		}
	}

	return nil
}

// conName returns the reporting name of a constraint.
func conName(con *Constraint) string {
	return "c" + strconv.Itoa(con.index)
}
