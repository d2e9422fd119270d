// Package lp defines the boundary between the branch-and-bound engine and
// the linear-programming relaxation solver.
//
// The engine never performs linear algebra itself: it hands an [Instance] to
// a [Solver] and branches on the returned [Result]. Any LP backend can be
// plugged in by implementing Solver; the repository ships one backed by
// gonum's simplex implementation in the simplex subpackage.
//
// Solvers must be deterministic: identical instances must produce identical
// results. The search engine relies on this for reproducible exploration
// order and for result caching.
package lp

import (
	"context"
	"fmt"
)

// Status classifies the outcome of a relaxation solve.
//
// All non-optimal statuses cause the producing search node to be pruned:
// none of them can yield a usable bound or a feasible point. They are kept
// distinct so observability layers can log them separately.
type Status int

const (
	// StatusOptimal indicates the relaxation was solved to optimality.
	// Objective and Values are valid only for this status.
	StatusOptimal Status = iota

	// StatusInfeasible indicates the constraint set has an empty feasible region.
	StatusInfeasible

	// StatusUnbounded indicates the objective can be improved without limit.
	StatusUnbounded

	// StatusError indicates an opaque solver failure (numerical breakdown,
	// internal limit). The Err field carries the reason.
	StatusError
)

// String returns a human-readable status name.
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
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Instance is a dense LP in solver-neutral form:
//
//	maximize   Obj · x
//	subject to EqCoeffs · x  = EqRHS
//	           LeCoeffs · x <= LeRHS
//
// Variables are free reals; any sign restriction must be expressed as an
// explicit inequality row. The engine normalizes >= rows to <= rows by
// negation before handing the instance to the solver.
type Instance struct {
	NumVars int

	// Obj holds one objective coefficient per variable.
	Obj []float64

	// Equality rows: EqCoeffs[i] · x = EqRHS[i].
	EqCoeffs [][]float64
	EqRHS    []float64

	// Inequality rows: LeCoeffs[i] · x <= LeRHS[i].
	LeCoeffs [][]float64
	LeRHS    []float64
}

// Validate checks that all rows and the objective have NumVars coefficients
// and that each right-hand-side vector matches its coefficient matrix.
func (in Instance) Validate() error {
	if in.NumVars <= 0 {
		return fmt.Errorf("instance has no variables")
	}
	if len(in.Obj) != in.NumVars {
		return fmt.Errorf("objective has %d coefficients, want %d", len(in.Obj), in.NumVars)
	}
	if len(in.EqCoeffs) != len(in.EqRHS) {
		return fmt.Errorf("equality rows (%d) and right-hand sides (%d) differ", len(in.EqCoeffs), len(in.EqRHS))
	}
	if len(in.LeCoeffs) != len(in.LeRHS) {
		return fmt.Errorf("inequality rows (%d) and right-hand sides (%d) differ", len(in.LeCoeffs), len(in.LeRHS))
	}
	for i, row := range in.EqCoeffs {
		if len(row) != in.NumVars {
			return fmt.Errorf("equality row %d has %d coefficients, want %d", i, len(row), in.NumVars)
		}
	}
	for i, row := range in.LeCoeffs {
		if len(row) != in.NumVars {
			return fmt.Errorf("inequality row %d has %d coefficients, want %d", i, len(row), in.NumVars)
		}
	}
	return nil
}

// Result is the tagged outcome of a relaxation solve.
// Objective and Values are meaningful only when Status is [StatusOptimal];
// Err is non-nil only when Status is [StatusError].
type Result struct {
	Status    Status
	Objective float64
	Values    []float64
	Err       error
}

// Optimal constructs an optimal result with the given objective and assignment.
func Optimal(objective float64, values []float64) Result {
	return Result{Status: StatusOptimal, Objective: objective, Values: values}
}

// Infeasible constructs an infeasible result.
func Infeasible() Result { return Result{Status: StatusInfeasible} }

// Unbounded constructs an unbounded result.
func Unbounded() Result { return Result{Status: StatusUnbounded} }

// Errored constructs an error result carrying the failure reason.
func Errored(err error) Result { return Result{Status: StatusError, Err: err} }

// Solver solves a single LP relaxation.
//
// Implementations must be deterministic for identical input and must not
// retain the instance after Solve returns. A blocked or slow backend can be
// interrupted through ctx by implementations that support it.
type Solver interface {
	Solve(ctx context.Context, in Instance) Result
}
