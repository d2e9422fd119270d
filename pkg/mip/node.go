package mip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/branchbound/pkg/lp"
)

// ErrNotSolved is returned by branching operations on a node whose
// relaxation has not been solved to optimality.
var ErrNotSolved = errors.New("node relaxation is not solved to optimality")

// Node is one vertex of the branch-and-bound tree. It shares the model's
// variable list and objective by reference and owns its constraint sequence:
// every child copies the parent's constraints and appends exactly one bound,
// so a child's feasible region is always a subset of its parent's.
//
// A node is solved at most once and discarded after classification; the
// search space is a tree, so nodes are never revisited.
type Node struct {
	model       *Model
	constraints []Constraint
	result      *lp.Result

	id     int // assigned by the search loop, root is 0
	parent int // -1 for the root
	depth  int

	// branchVar and dir record the bound that created this node,
	// for event reporting. Empty on the root.
	branchVar string
	dir       BranchDir
}

// newRoot creates the root node from the model's initial constraint set.
func newRoot(m *Model) *Node {
	return &Node{
		model:       m,
		constraints: m.Constraints(),
		parent:      -1,
	}
}

// SolveRelaxation builds the LP instance from the node's variables,
// constraints, and objective, delegates to the solver, and stores the
// result. The relaxation is solved exactly once; subsequent calls return
// the stored result without touching the solver.
func (n *Node) SolveRelaxation(ctx context.Context, solver lp.Solver) lp.Result {
	if n.result != nil {
		return *n.result
	}
	res := solver.Solve(ctx, n.instance())
	n.result = &res
	return res
}

// Relaxation returns the stored relaxation result, and false if the node
// has not been solved yet.
func (n *Node) Relaxation() (lp.Result, bool) {
	if n.result == nil {
		return lp.Result{}, false
	}
	return *n.result, true
}

// Value returns v's value in the node's optimal relaxation.
// The second return is false if the node is unsolved, the relaxation is not
// optimal, or v is not declared on the model.
func (n *Node) Value(v *Variable) (float64, bool) {
	if n.result == nil || n.result.Status != lp.StatusOptimal {
		return 0, false
	}
	i, ok := n.model.VarIndex(v)
	if !ok {
		return 0, false
	}
	return n.result.Values[i], true
}

// IsIntegral reports whether every variable except the objective variable
// has a relaxation value within tol of the nearest integer. A node whose
// relaxation is unsolved or failed is never integral.
func (n *Node) IsIntegral(tol float64) bool {
	if n.result == nil || n.result.Status != lp.StatusOptimal {
		return false
	}
	// The objective variable is the last one and is exempt.
	for _, val := range n.result.Values[:n.model.NumVars()-1] {
		if math.Abs(val-math.Round(val)) > tol {
			return false
		}
	}
	return true
}

// Depth returns the node's distance from the root.
func (n *Node) Depth() int { return n.depth }

// Constraints returns a copy of the node's constraint sequence.
func (n *Node) Constraints() []Constraint { return slices.Clone(n.constraints) }

// BranchFloor clones the node and appends the bound v <= floor(value),
// where value is v's value in this node's relaxation. The variable list and
// objective stay shared; only the constraint sequence is copied.
func (n *Node) BranchFloor(v *Variable) (*Node, error) {
	val, ok := n.Value(v)
	if !ok {
		return nil, fmt.Errorf("branch floor on %s: %w", v.Name(), ErrNotSolved)
	}
	return n.child(LessEq(Expr(T(1, v)), math.Floor(val))), nil
}

// BranchCeil clones the node and appends the bound v >= ceil(value).
// Symmetric to [Node.BranchFloor].
func (n *Node) BranchCeil(v *Variable) (*Node, error) {
	val, ok := n.Value(v)
	if !ok {
		return nil, fmt.Errorf("branch ceil on %s: %w", v.Name(), ErrNotSolved)
	}
	return n.child(GreaterEq(Expr(T(1, v)), math.Ceil(val))), nil
}

// child clones the node with one appended bound. The fresh slice keeps the
// parent's sequence intact even if both children append.
func (n *Node) child(bound Constraint) *Node {
	constraints := make([]Constraint, len(n.constraints), len(n.constraints)+1)
	copy(constraints, n.constraints)
	return &Node{
		model:       n.model,
		constraints: append(constraints, bound),
		parent:      n.id,
		depth:       n.depth + 1,
	}
}

// instance lowers the node to the solver-neutral LP form: the objective is
// the objective variable's unit vector, >= rows are negated into <= rows.
func (n *Node) instance() lp.Instance {
	numVars := n.model.NumVars()
	in := lp.Instance{NumVars: numVars, Obj: make([]float64, numVars)}
	if obj := n.model.Objective(); obj != nil {
		i, _ := n.model.VarIndex(obj)
		in.Obj[i] = 1
	}

	for _, c := range n.constraints {
		row := make([]float64, numVars)
		for _, t := range c.Expr().Terms() {
			i, _ := n.model.VarIndex(t.Var)
			row[i] += t.Coeff
		}
		switch c.Relation() {
		case RelEq:
			in.EqCoeffs = append(in.EqCoeffs, row)
			in.EqRHS = append(in.EqRHS, c.RHS())
		case RelLe:
			in.LeCoeffs = append(in.LeCoeffs, row)
			in.LeRHS = append(in.LeRHS, c.RHS())
		case RelGe:
			for i := range row {
				row[i] = -row[i]
			}
			in.LeCoeffs = append(in.LeCoeffs, row)
			in.LeRHS = append(in.LeRHS, -c.RHS())
		}
	}
	return in
}

// assignment maps every variable to its value in the optimal relaxation.
// Returns nil if the node has no optimal result.
func (n *Node) assignment() map[*Variable]float64 {
	if n.result == nil || n.result.Status != lp.StatusOptimal {
		return nil
	}
	assign := make(map[*Variable]float64, n.model.NumVars())
	for i, v := range n.model.vars {
		assign[v] = n.result.Values[i]
	}
	return assign
}
