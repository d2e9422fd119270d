package mip

import (
	"errors"
	"math"
)

// ErrNoFractionalVariable is returned by a [Brancher] when every candidate
// variable is already integral. The search never asks a brancher to select
// on an integral node, so seeing this error indicates a tolerance mismatch
// between the caller and the brancher.
var ErrNoFractionalVariable = errors.New("no fractional variable to branch on")

// Brancher picks the variable to split a fractional node on.
//
// Precondition: the node's relaxation is optimal and not integral, i.e. at
// least one non-objective variable is further than the tolerance from an
// integer. Implementations must be deterministic.
type Brancher interface {
	SelectVariable(n *Node) (*Variable, error)
}

// MostFractional selects the variable whose relaxation value is furthest
// from the nearest integer, breaking ties by lowest index in the variable
// list. Simple and deterministic; sufficient for correctness though not
// optimal for tree size.
type MostFractional struct{}

// SelectVariable returns the most fractional non-objective variable.
func (MostFractional) SelectVariable(n *Node) (*Variable, error) {
	vars := n.model.vars
	var pick *Variable
	best := 0.0

	// The objective variable is the last one and never branched on.
	for _, v := range vars[:len(vars)-1] {
		val, ok := n.Value(v)
		if !ok {
			return nil, ErrNotSolved
		}
		// Strict > keeps the first occurrence on ties.
		if d := math.Abs(val - math.Round(val)); d > best {
			best = d
			pick = v
		}
	}
	if pick == nil {
		return nil, ErrNoFractionalVariable
	}
	return pick, nil
}

// Ensure MostFractional implements Brancher.
var _ Brancher = MostFractional{}
