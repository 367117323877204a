package linprog

// Model construction functions for linear programs.
//
// A Model owns the complete description of a linear program: an ordered
// list of continuous variables with bounds, a list of linear constraints,
// and one objective function. Models are created empty, populated through
// the functions in this file, and handed to the solver interface in
// ifgonum.go. Each Model instance is fully independent so that separate
// models can be built and solved without interfering with each other.

import (
	"math"

	"github.com/pkg/errors"
)

// Relation identifies how a constraint expression is compared against its
// right-hand side.
type Relation int

const (
	LE Relation = iota // expression <= rhs
	GE                 // expression >= rhs
	EQ                 // expression == rhs
)

// String returns the conventional symbol for the relation.
func (r Relation) String() string {
	switch r {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	}
	return "?"
}

// Direction identifies whether the objective function is to be maximized
// or minimized.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

// String returns the name of the optimization direction.
func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Model states. A model starts in the building state and reaches exactly
// one of the terminal states on the first call to Solve. Once terminal,
// the model can no longer be mutated.
const (
	stateBuilding = iota
	stateSolved
	stateFailed
)

// Plinfy is the value used to represent an unbounded variable or
// constraint limit.
var Plinfy = math.Inf(1)

// Variable is the handle returned when a variable is declared in a model.
// It identifies the variable in constraint and objective expressions and
// in solution lookups. Bounds are fixed at declaration time.
type Variable struct {
	model *Model  // model in which the variable was declared
	index int     // position in the model's variable list
	name  string  // name under which the variable was declared
	BndLo float64 // lower bound, or -Plinfy if unbounded below
	BndUp float64 // upper bound, or Plinfy if unbounded above
}

// Name returns the name under which the variable was declared.
func (v *Variable) Name() string {
	return v.name
}

// term is a single coefficient/variable pair in a linear expression.
type term struct {
	Coef float64
	Var  *Variable
}

// LinearExpr is a weighted sum of variables. Expressions are built up
// with Add and passed to AddConstraint and SetObjective, which copy them,
// so an expression may be reused or extended by the caller afterwards.
type LinearExpr struct {
	terms []term
}

// NewLinearExpr returns an empty linear expression.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// Add adds coef * v to the expression and returns the expression so that
// calls can be chained. Adding a variable already present in the
// expression accumulates onto its existing coefficient.
func (e *LinearExpr) Add(coef float64, v *Variable) *LinearExpr {
	for i := range e.terms {
		if e.terms[i].Var == v {
			e.terms[i].Coef += coef
			return e
		}
	}
	e.terms = append(e.terms, term{Coef: coef, Var: v})
	return e
}

// clone returns an independent copy of the expression.
func (e *LinearExpr) clone() *LinearExpr {
	cp := &LinearExpr{terms: make([]term, len(e.terms))}
	copy(cp.terms, e.terms)
	return cp
}

// Constraint is the handle returned when a constraint is added to a
// model. The constraint compares a linear expression against a bound and
// is never mutated after creation.
type Constraint struct {
	model *Model
	index int
	expr  *LinearExpr
	rel   Relation
	rhs   float64
}

// Objective holds the objective expression and the optimization
// direction. A model has at most one objective at solve time.
type Objective struct {
	expr *LinearExpr
	dir  Direction
}

// Model holds a linear program while it is being built and solved. Use
// NewModel to create one; the zero value is not usable.
type Model struct {
	name   string
	vars   []*Variable
	varIdx map[string]int
	cons   []*Constraint
	obj    *Objective
	state  int
	soln   *Solution
	slvErr error
}

// NewModel creates an empty model with the given name. The name is used
// only for logging and reporting.
func NewModel(name string) *Model {
	return &Model{
		name:   name,
		varIdx: make(map[string]int),
	}
}

// Name returns the name given to the model at creation.
func (m *Model) Name() string {
	return m.name
}

// NumVariables returns the number of variables declared in the model.
func (m *Model) NumVariables() int {
	return len(m.vars)
}

// NumConstraints returns the number of constraints added to the model.
func (m *Model) NumConstraints() int {
	return len(m.cons)
}

//==============================================================================
// MODEL BUILDING FUNCTIONS
//==============================================================================

// AddVariable declares a continuous variable with the default bounds of
// zero and plus infinity, and returns its handle.
// In case of failure, function returns an error.
func (m *Model) AddVariable(name string) (*Variable, error) {
	return m.AddVariableWithBounds(name, 0, Plinfy)
}

// AddVariableWithBounds declares a continuous variable bounded to the
// closed interval [bndLo, bndUp] and returns its handle. The model is not
// modified if the declaration fails.
// In case of failure, function returns an error.
func (m *Model) AddVariableWithBounds(name string, bndLo, bndUp float64) (*Variable, error) {

	if m.state != stateBuilding {
		return nil, errors.Wrapf(ErrModelFrozen, "cannot declare %s", name)
	}

	if _, ok := m.varIdx[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateVariable, "variable %s", name)
	}

	if math.IsNaN(bndLo) || math.IsNaN(bndUp) {
		return nil, errors.Wrapf(ErrInvalidBounds, "variable %s has NaN bound", name)
	}

	if bndLo > bndUp {
		return nil, errors.Wrapf(ErrInvalidBounds,
			"variable %s has bounds %g to %g", name, bndLo, bndUp)
	}

	v := &Variable{
		model: m,
		index: len(m.vars),
		name:  name,
		BndLo: bndLo,
		BndUp: bndUp,
	}

	m.vars = append(m.vars, v)
	m.varIdx[name] = v.index

	return v, nil
}

// AddVariables declares one variable with default bounds for each name
// given and returns the handles in the same order. The names are checked
// up front so that either all variables are declared or none are.
// In case of failure, function returns an error.
func (m *Model) AddVariables(names ...string) ([]*Variable, error) {
	var vList []*Variable // handles for the declared variables

	if m.state != stateBuilding {
		return nil, errors.Wrap(ErrModelFrozen, "cannot declare variables")
	}

	// Check for collisions with existing variables as well as duplicates
	// within the list itself before declaring anything.

	seen := make(map[string]bool)
	for _, name := range names {
		if _, ok := m.varIdx[name]; ok {
			return nil, errors.Wrapf(ErrDuplicateVariable, "variable %s", name)
		}
		if seen[name] {
			return nil, errors.Wrapf(ErrDuplicateVariable, "variable %s listed twice", name)
		}
		seen[name] = true
	}

	for _, name := range names {
		v, err := m.AddVariable(name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to declare %s", name)
		}
		vList = append(vList, v)
	}

	return vList, nil
}

// checkExpr verifies that every variable referenced by the expression was
// declared in this model.
// In case of failure, function returns an error.
func (m *Model) checkExpr(expr *LinearExpr) error {

	if expr == nil {
		return errors.New("expression is nil")
	}

	for _, t := range expr.terms {
		if t.Var == nil {
			return errors.Wrap(ErrUnknownVariable, "expression contains nil variable")
		}
		if t.Var.model != m {
			return errors.Wrapf(ErrUnknownVariable,
				"variable %s was not declared in model %s", t.Var.name, m.name)
		}
	}

	return nil
}

// AddConstraint appends the constraint "expr rel rhs" to the model and
// returns its handle. The expression is copied, and the model is left
// unchanged if any referenced variable was not declared in it.
// In case of failure, function returns an error.
func (m *Model) AddConstraint(expr *LinearExpr, rel Relation, rhs float64) (*Constraint, error) {

	if m.state != stateBuilding {
		return nil, errors.Wrap(ErrModelFrozen, "cannot add constraint")
	}

	if err := m.checkExpr(expr); err != nil {
		return nil, errors.Wrap(err, "AddConstraint failed")
	}

	con := &Constraint{
		model: m,
		index: len(m.cons),
		expr:  expr.clone(),
		rel:   rel,
		rhs:   rhs,
	}

	m.cons = append(m.cons, con)

	return con, nil
}

// SetObjective sets the objective function to the given expression and
// direction, replacing any objective set earlier. The expression is
// copied.
// In case of failure, function returns an error.
func (m *Model) SetObjective(expr *LinearExpr, dir Direction) error {

	if m.state != stateBuilding {
		return errors.Wrap(ErrModelFrozen, "cannot set objective")
	}

	if err := m.checkExpr(expr); err != nil {
		return errors.Wrap(err, "SetObjective failed")
	}

	m.obj = &Objective{expr: expr.clone(), dir: dir}

	return nil
}

//==============================================================================
// RESULT ACCESS
//==============================================================================

// Value returns the optimal value of the variable once the model has been
// solved to optimality.
// In case of failure, function returns an error.
func (m *Model) Value(v *Variable) (float64, error) {

	if v == nil {
		return 0, errors.Wrap(ErrUnknownVariable, "variable is nil")
	}

	if m.soln == nil || m.soln.Status != StatusOptimal {
		return 0, errors.Wrapf(ErrNotSolved, "no value for %s", v.Name())
	}

	return m.soln.Value(v)
}

// ObjectiveValue returns the value of the objective function once the
// model has been solved to optimality.
// In case of failure, function returns an error.
func (m *Model) ObjectiveValue() (float64, error) {

	if m.soln == nil || m.soln.Status != StatusOptimal {
		return 0, errors.Wrap(ErrNotSolved, "no objective value")
	}

	return m.soln.Objective, nil
}
