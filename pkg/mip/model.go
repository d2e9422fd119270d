package mip

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrInvalidVariableName is returned by [Model.NewVariable] when the
	// name is empty.
	ErrInvalidVariableName = errors.New("variable name must not be empty")

	// ErrDuplicateVariable is returned by [Model.NewVariable] when a
	// variable with the same name was already declared.
	ErrDuplicateVariable = errors.New("duplicate variable name")

	// ErrUnknownVariable is returned when a constraint or branching request
	// references a variable that was not declared on the model.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrNoVariables is returned by [Model.Validate] for a model without
	// any variables.
	ErrNoVariables = errors.New("model has no variables")
)

// Variable is a named real-valued unknown. Identity is shared across the
// whole search tree: a variable is declared once via [Model.NewVariable] and
// every node references it by pointer, never by copy.
type Variable struct {
	name string
}

// Name returns the variable's declared name.
func (v *Variable) Name() string { return v.name }

// Term is a single coefficient-variable product inside a linear expression.
type Term struct {
	Coeff float64
	Var   *Variable
}

// T builds a term. It exists to keep constraint declarations compact.
func T(coeff float64, v *Variable) Term { return Term{Coeff: coeff, Var: v} }

// LinExpr is an immutable linear expression over variables.
// Build one with [Expr]; the term order is preserved.
type LinExpr struct {
	terms []Term
}

// Expr builds a linear expression from the given terms.
// The terms are copied, so the caller may reuse the slice.
func Expr(terms ...Term) LinExpr {
	return LinExpr{terms: slices.Clone(terms)}
}

// Terms returns a copy of the expression's terms.
func (e LinExpr) Terms() []Term { return slices.Clone(e.terms) }

// Eval computes the expression value under the given assignment.
// Variables missing from the assignment contribute zero.
func (e LinExpr) Eval(assign map[*Variable]float64) float64 {
	var sum float64
	for _, t := range e.terms {
		sum += t.Coeff * assign[t.Var]
	}
	return sum
}

// Relation is the comparison of a constraint: equality or inequality.
type Relation int

const (
	// RelEq constrains the expression to equal the right-hand side.
	RelEq Relation = iota
	// RelLe constrains the expression to be at most the right-hand side.
	RelLe
	// RelGe constrains the expression to be at least the right-hand side.
	RelGe
)

// String returns the relation's operator notation.
func (r Relation) String() string {
	switch r {
	case RelEq:
		return "=="
	case RelLe:
		return "<="
	case RelGe:
		return ">="
	default:
		return fmt.Sprintf("relation(%d)", int(r))
	}
}

// Constraint is an immutable linear relational expression: expr rel rhs.
// A node's constraint set is an ordered, append-only sequence of these;
// children copy the parent's sequence and append exactly one new bound.
type Constraint struct {
	expr LinExpr
	rel  Relation
	rhs  float64
}

// Equal builds the constraint expr == rhs.
func Equal(expr LinExpr, rhs float64) Constraint {
	return Constraint{expr: expr, rel: RelEq, rhs: rhs}
}

// LessEq builds the constraint expr <= rhs.
func LessEq(expr LinExpr, rhs float64) Constraint {
	return Constraint{expr: expr, rel: RelLe, rhs: rhs}
}

// GreaterEq builds the constraint expr >= rhs.
func GreaterEq(expr LinExpr, rhs float64) Constraint {
	return Constraint{expr: expr, rel: RelGe, rhs: rhs}
}

// Expr returns the constraint's left-hand expression.
func (c Constraint) Expr() LinExpr { return c.expr }

// Relation returns the constraint's comparison operator.
func (c Constraint) Relation() Relation { return c.rel }

// RHS returns the constraint's right-hand side.
func (c Constraint) RHS() float64 { return c.rhs }

// Satisfied reports whether the assignment fulfils the constraint within tol.
func (c Constraint) Satisfied(assign map[*Variable]float64, tol float64) bool {
	val := c.expr.Eval(assign)
	switch c.rel {
	case RelEq:
		return math.Abs(val-c.rhs) <= tol
	case RelLe:
		return val <= c.rhs+tol
	case RelGe:
		return val >= c.rhs-tol
	default:
		return false
	}
}

// String renders the constraint in operator notation, e.g. "-5x + 4y <= 0".
func (c Constraint) String() string {
	s := ""
	for i, t := range c.expr.terms {
		if i > 0 {
			s += " + "
		}
		s += fmt.Sprintf("%g%s", t.Coeff, t.Var.Name())
	}
	return fmt.Sprintf("%s %s %g", s, c.rel, c.rhs)
}

// Model declares a mixed-integer linear program: an ordered variable list,
// a constraint set, and the objective. The LAST variable in the list is the
// objective variable; it is excluded from integrality checks and from
// branching, and the search maximizes its value. All other variables are
// required to take integer values in the final solution.
//
// A Model must not be mutated while a search is running on it: nodes share
// the variable list by reference.
type Model struct {
	vars        []*Variable
	index       map[*Variable]int
	byName      map[string]*Variable
	constraints []Constraint
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		index:  make(map[*Variable]int),
		byName: make(map[string]*Variable),
	}
}

// NewVariable declares a variable and appends it to the ordered list.
// Returns ErrInvalidVariableName for an empty name and ErrDuplicateVariable
// if the name is already taken. On error the returned variable is nil.
//
// Because the last declared variable is the objective, declare the objective
// variable last (or move it with [Model.SetObjective]).
func (m *Model) NewVariable(name string) (*Variable, error) {
	if name == "" {
		return nil, ErrInvalidVariableName
	}
	if _, exists := m.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateVariable, name)
	}
	v := &Variable{name: name}
	m.index[v] = len(m.vars)
	m.vars = append(m.vars, v)
	m.byName[name] = v
	return v, nil
}

// MustVariable is like [Model.NewVariable] but panics on error.
// Intended for tests and hand-built models with known-good names.
func (m *Model) MustVariable(name string) *Variable {
	v, err := m.NewVariable(name)
	if err != nil {
		panic(err)
	}
	return v
}

// SetObjective moves v to the end of the variable list, making it the
// objective variable. Returns ErrUnknownVariable if v was not declared here.
func (m *Model) SetObjective(v *Variable) error {
	i, ok := m.index[v]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVariable, v.Name())
	}
	m.vars = append(slices.Delete(m.vars, i, i+1), v)
	for j, mv := range m.vars {
		m.index[mv] = j
	}
	return nil
}

// AddConstraint appends a constraint to the model.
// Returns ErrUnknownVariable if the constraint references a variable that
// was not declared on this model.
func (m *Model) AddConstraint(c Constraint) error {
	for _, t := range c.expr.terms {
		if _, ok := m.index[t.Var]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownVariable, t.Var.Name())
		}
	}
	m.constraints = append(m.constraints, c)
	return nil
}

// Vars returns the ordered variable list. The returned slice is a copy;
// the variables themselves are shared.
func (m *Model) Vars() []*Variable { return slices.Clone(m.vars) }

// VarByName returns the declared variable with the given name.
func (m *Model) VarByName(name string) (*Variable, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// VarIndex returns the position of v in the ordered variable list.
func (m *Model) VarIndex(v *Variable) (int, bool) {
	i, ok := m.index[v]
	return i, ok
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// Objective returns the objective variable (the last variable in the list),
// or nil for an empty model.
func (m *Model) Objective() *Variable {
	if len(m.vars) == 0 {
		return nil
	}
	return m.vars[len(m.vars)-1]
}

// Constraints returns a copy of the model's constraint sequence.
func (m *Model) Constraints() []Constraint { return slices.Clone(m.constraints) }

// Validate checks that the model can be searched: it needs at least one
// variable (the objective).
func (m *Model) Validate() error {
	if len(m.vars) == 0 {
		return ErrNoVariables
	}
	return nil
}
