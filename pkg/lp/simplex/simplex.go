// Package simplex provides the default relaxation solver, backed by gonum's
// dense simplex implementation.
//
// Instances arrive in the free-variable form of [lp.Instance] and are lowered
// to the standard form gonum expects (minimize c·x subject to Ax = b, x >= 0)
// through a small presolve:
//
//   - single-variable rows become variable bounds instead of matrix rows;
//     a variable with a finite lower bound L is shifted (x = L + t, t >= 0)
//     and a variable with only an upper bound U is reflected (x = U - t),
//   - free variables are substituted out through an equality row that
//     mentions them, the way an objective-defining row like z = x + y is
//     meant to be read,
//   - each remaining inequality row receives a slack variable, and the
//     maximization objective is negated.
//
// Only a free variable that survives both steps is split into a positive and
// a negative part. Splitting is kept as a fallback because the paired columns
// it produces carry a zero-cost ray that gonum's phase-two pivoting can
// mistake for unboundedness once extra bound rows are appended; the presolve
// keeps every branch-and-bound relaxation away from that shape.
//
// The lowering is deterministic and gonum's simplex is deterministic for
// identical input, so the solver satisfies the reproducibility contract of
// [lp.Solver].
package simplex

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	gonumlp "gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/matzehuels/branchbound/pkg/lp"
)

const (
	// epsCoeff is the magnitude below which a coefficient counts as zero
	// during presolve.
	epsCoeff = 1e-12

	// feasTol bounds the residual of a variable-free row before it counts
	// as a contradiction.
	feasTol = 1e-9
)

// Solver solves LP instances with gonum's two-phase simplex.
// The zero value is ready to use; see [New].
type Solver struct {
	// Tol is the tolerance passed to gonum's simplex. Zero selects
	// gonum's internal default.
	Tol float64
}

// New creates a simplex solver with gonum's default tolerance.
func New() *Solver { return &Solver{} }

// Solve lowers the instance to standard form and runs the simplex.
// Infeasible and unbounded outcomes are reported as statuses, not errors;
// any other failure (including a panic inside the numerics) is reported
// as [lp.StatusError].
func (s *Solver) Solve(ctx context.Context, in lp.Instance) (res lp.Result) {
	if err := in.Validate(); err != nil {
		return lp.Errored(err)
	}
	if err := ctx.Err(); err != nil {
		return lp.Errored(err)
	}

	// Panics inside gonum (degenerate pivots, singular bases) are opaque
	// solver failures, not conditions the search should crash on.
	defer func() {
		if r := recover(); r != nil {
			res = lp.Errored(fmt.Errorf("simplex panic: %v", r))
		}
	}()

	p := newPresolve(in)
	if !p.reduce() {
		return lp.Infeasible()
	}
	p.splitRanges()
	if p.unboundedOffMatrix() {
		return lp.Unbounded()
	}

	colOf, nCols := p.columns()
	if len(p.eqRows)+len(p.leRows) == 0 {
		// Everything was resolved by bounds and substitutions alone.
		values := p.reconstruct(nil, colOf)
		return lp.Optimal(dot(in.Obj, values), values)
	}

	c, a, b := p.standardForm(colOf, nCols)
	_, optX, err := gonumlp.Simplex(c, a, b, s.Tol, nil)
	switch {
	case errors.Is(err, gonumlp.ErrInfeasible):
		return lp.Infeasible()
	case errors.Is(err, gonumlp.ErrUnbounded):
		return lp.Unbounded()
	case err != nil:
		return lp.Errored(err)
	}

	values := p.reconstruct(optX, colOf)
	return lp.Optimal(dot(in.Obj, values), values)
}

// varState tracks what the presolve has learned about one variable.
type varState struct {
	lower float64 // -Inf when no lower bound is known
	upper float64 // +Inf when no upper bound is known

	// fixed variables appear in no remaining row and take fixedVal.
	fixed    bool
	fixedVal float64

	// eliminated variables were substituted out through an equality row:
	// x = subConst + subCoeffs · x.
	eliminated bool
	subConst   float64
	subCoeffs  []float64
}

// presolve holds working copies of the instance while rows are folded into
// bounds and free variables are substituted away.
type presolve struct {
	n      int
	obj    []float64
	eqRows [][]float64
	eqRHS  []float64
	leRows [][]float64
	leRHS  []float64
	vars   []varState
	elim   []int // elimination order, for back-substitution
}

func newPresolve(in lp.Instance) *presolve {
	p := &presolve{
		n:      in.NumVars,
		obj:    append([]float64(nil), in.Obj...),
		eqRows: make([][]float64, len(in.EqCoeffs)),
		eqRHS:  append([]float64(nil), in.EqRHS...),
		leRows: make([][]float64, len(in.LeCoeffs)),
		leRHS:  append([]float64(nil), in.LeRHS...),
		vars:   make([]varState, in.NumVars),
	}
	for r, row := range in.EqCoeffs {
		p.eqRows[r] = append([]float64(nil), row...)
	}
	for r, row := range in.LeCoeffs {
		p.leRows[r] = append([]float64(nil), row...)
	}
	for i := range p.vars {
		p.vars[i].lower = math.Inf(-1)
		p.vars[i].upper = math.Inf(1)
	}
	return p
}

// reduce runs bound extraction and free-variable elimination to a fixpoint.
// It returns false when the bounds alone prove the instance infeasible.
func (p *presolve) reduce() bool {
	for {
		feasible, changed := p.extractBounds()
		if !feasible {
			return false
		}
		if p.eliminateFree() {
			changed = true
		}
		if !changed {
			return true
		}
	}
}

// extractBounds folds single-variable rows into variable bounds and drops
// rows with no variables left. A row that reduces to an unsatisfiable
// constant, or a crossed bound pair, proves infeasibility.
func (p *presolve) extractBounds() (feasible, changed bool) {
	eqRows, eqRHS := p.eqRows[:0], p.eqRHS[:0]
	for r, row := range p.eqRows {
		idx, count := nonzeros(row)
		switch count {
		case 0:
			if math.Abs(p.eqRHS[r]) > feasTol {
				return false, true
			}
			changed = true
		case 1:
			v := p.eqRHS[r] / row[idx]
			p.vars[idx].lower = math.Max(p.vars[idx].lower, v)
			p.vars[idx].upper = math.Min(p.vars[idx].upper, v)
			changed = true
		default:
			eqRows = append(eqRows, row)
			eqRHS = append(eqRHS, p.eqRHS[r])
		}
	}
	p.eqRows, p.eqRHS = eqRows, eqRHS

	leRows, leRHS := p.leRows[:0], p.leRHS[:0]
	for r, row := range p.leRows {
		idx, count := nonzeros(row)
		switch count {
		case 0:
			if p.leRHS[r] < -feasTol {
				return false, true
			}
			changed = true
		case 1:
			bound := p.leRHS[r] / row[idx]
			if row[idx] > 0 {
				p.vars[idx].upper = math.Min(p.vars[idx].upper, bound)
			} else {
				p.vars[idx].lower = math.Max(p.vars[idx].lower, bound)
			}
			changed = true
		default:
			leRows = append(leRows, row)
			leRHS = append(leRHS, p.leRHS[r])
		}
	}
	p.leRows, p.leRHS = leRows, leRHS

	for i := range p.vars {
		if !p.vars[i].eliminated && p.vars[i].lower > p.vars[i].upper {
			return false, changed
		}
	}
	return true, changed
}

// eliminateFree substitutes one unbounded variable out through an equality
// row that mentions it. Returns false when no such pair remains.
func (p *presolve) eliminateFree() bool {
	for i := 0; i < p.n; i++ {
		v := &p.vars[i]
		if v.eliminated || !math.IsInf(v.lower, -1) || !math.IsInf(v.upper, 1) {
			continue
		}
		for r, row := range p.eqRows {
			if math.Abs(row[i]) <= epsCoeff {
				continue
			}
			p.substitute(i, r)
			return true
		}
	}
	return false
}

// substitute removes equality row e, expressing variable i in terms of the
// row's other variables, and applies the substitution everywhere.
func (p *presolve) substitute(i, e int) {
	row, rhs := p.eqRows[e], p.eqRHS[e]
	pivot := row[i]

	sub := make([]float64, p.n)
	for j := range row {
		if j != i {
			sub[j] = -row[j] / pivot
		}
	}
	subConst := rhs / pivot

	p.eqRows = append(p.eqRows[:e], p.eqRows[e+1:]...)
	p.eqRHS = append(p.eqRHS[:e], p.eqRHS[e+1:]...)

	apply := func(rows [][]float64, rhs []float64) {
		for r, rr := range rows {
			f := rr[i]
			if math.Abs(f) <= epsCoeff {
				rr[i] = 0
				continue
			}
			for j := range rr {
				if j != i {
					rr[j] += f * sub[j]
				}
			}
			rr[i] = 0
			rhs[r] -= f * subConst
		}
	}
	apply(p.eqRows, p.eqRHS)
	apply(p.leRows, p.leRHS)

	if f := p.obj[i]; f != 0 {
		for j := range p.obj {
			if j != i {
				p.obj[j] += f * sub[j]
			}
		}
		p.obj[i] = 0
	}

	v := &p.vars[i]
	v.eliminated = true
	v.subConst = subConst
	v.subCoeffs = sub
	p.elim = append(p.elim, i)
}

// splitRanges re-emits the upper bound of a doubly-bounded variable as a
// plain inequality row, leaving the shift substitution to carry the lower
// bound. Runs once, after reduce, so the row is not re-extracted.
func (p *presolve) splitRanges() {
	for i := range p.vars {
		v := &p.vars[i]
		if v.eliminated || math.IsInf(v.lower, -1) || math.IsInf(v.upper, 1) {
			continue
		}
		row := make([]float64, p.n)
		row[i] = 1
		p.leRows = append(p.leRows, row)
		p.leRHS = append(p.leRHS, v.upper)
		v.upper = math.Inf(1)
	}
}

// unboundedOffMatrix classifies every variable that appears in no remaining
// row: an improving objective direction on such a variable makes the whole
// instance unbounded; otherwise the variable is pinned at its best bound.
func (p *presolve) unboundedOffMatrix() bool {
	inRow := make([]bool, p.n)
	mark := func(rows [][]float64) {
		for _, row := range rows {
			for i, coeff := range row {
				if math.Abs(coeff) > epsCoeff {
					inRow[i] = true
				}
			}
		}
	}
	mark(p.eqRows)
	mark(p.leRows)

	for i := range p.vars {
		v := &p.vars[i]
		if v.eliminated || inRow[i] {
			continue
		}
		c := p.obj[i]
		switch {
		case !math.IsInf(v.lower, -1):
			if c > epsCoeff {
				return true
			}
			v.fixed, v.fixedVal = true, v.lower
		case !math.IsInf(v.upper, 1):
			if c < -epsCoeff {
				return true
			}
			v.fixed, v.fixedVal = true, v.upper
		default:
			if math.Abs(c) > epsCoeff {
				return true
			}
			v.fixed, v.fixedVal = true, 0
		}
	}
	return false
}

// columns assigns matrix columns to the variables that survived presolve.
// Shifted and reflected variables take one column; a residual free variable
// takes two (its positive and negative part).
func (p *presolve) columns() (colOf []int, nCols int) {
	colOf = make([]int, p.n)
	for i := range p.vars {
		v := &p.vars[i]
		if v.eliminated || v.fixed {
			colOf[i] = -1
			continue
		}
		colOf[i] = nCols
		if math.IsInf(v.lower, -1) && math.IsInf(v.upper, 1) {
			nCols += 2
		} else {
			nCols++
		}
	}
	return colOf, nCols
}

// standardForm emits minimize c·w, A·w = b, w >= 0 over the surviving
// columns plus one slack per inequality row. Equality rows come first.
func (p *presolve) standardForm(colOf []int, nCols int) ([]float64, *mat.Dense, []float64) {
	nSlack := len(p.leRows)
	nRows := len(p.eqRows) + nSlack

	c := make([]float64, nCols+nSlack)
	for i := range p.vars {
		col := colOf[i]
		if col < 0 {
			continue
		}
		v := &p.vars[i]
		switch {
		case !math.IsInf(v.lower, -1): // x = lower + t
			c[col] = -p.obj[i]
		case !math.IsInf(v.upper, 1): // x = upper - t
			c[col] = p.obj[i]
		default: // x = t+ - t-
			c[col] = -p.obj[i]
			c[col+1] = p.obj[i]
		}
	}

	a := mat.NewDense(nRows, nCols+nSlack, nil)
	b := make([]float64, nRows)
	setRow := func(r int, row []float64, rhs float64) {
		adj := 0.0
		for i, coeff := range row {
			col := colOf[i]
			if col < 0 || coeff == 0 {
				continue
			}
			v := &p.vars[i]
			switch {
			case !math.IsInf(v.lower, -1):
				a.Set(r, col, coeff)
				adj += coeff * v.lower
			case !math.IsInf(v.upper, 1):
				a.Set(r, col, -coeff)
				adj += coeff * v.upper
			default:
				a.Set(r, col, coeff)
				a.Set(r, col+1, -coeff)
			}
		}
		b[r] = rhs - adj
	}

	for r, row := range p.eqRows {
		setRow(r, row, p.eqRHS[r])
	}
	for j, row := range p.leRows {
		r := len(p.eqRows) + j
		setRow(r, row, p.leRHS[j])
		a.Set(r, nCols+j, 1) // slack turns <= into =
	}
	return c, a, b
}

// reconstruct maps a standard-form solution back to the original variables:
// matrix columns are unshifted, pinned variables take their stored value,
// and eliminated variables are back-substituted in reverse order.
func (p *presolve) reconstruct(optX []float64, colOf []int) []float64 {
	values := make([]float64, p.n)
	for i := range p.vars {
		v := &p.vars[i]
		switch {
		case v.eliminated:
		case v.fixed:
			values[i] = v.fixedVal
		case !math.IsInf(v.lower, -1):
			values[i] = v.lower + optX[colOf[i]]
		case !math.IsInf(v.upper, 1):
			values[i] = v.upper - optX[colOf[i]]
		default:
			values[i] = optX[colOf[i]] - optX[colOf[i]+1]
		}
	}
	for k := len(p.elim) - 1; k >= 0; k-- {
		i := p.elim[k]
		v := p.vars[i]
		x := v.subConst
		for j, s := range v.subCoeffs {
			x += s * values[j]
		}
		values[i] = x
	}
	return values
}

// nonzeros counts a row's significant coefficients and reports the index of
// the first one.
func nonzeros(row []float64) (idx, count int) {
	idx = -1
	for i, coeff := range row {
		if math.Abs(coeff) > epsCoeff {
			if idx < 0 {
				idx = i
			}
			count++
		}
	}
	return idx, count
}

func dot(coeffs, values []float64) float64 {
	var sum float64
	for i, c := range coeffs {
		sum += c * values[i]
	}
	return sum
}

// Ensure Solver implements lp.Solver.
var _ lp.Solver = (*Solver)(nil)
