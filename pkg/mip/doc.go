// Package mip solves mixed-integer linear programs by branch-and-bound
// search over the tree of LP relaxations induced by progressively tightened
// integrality constraints.
//
// # Architecture
//
// The package is built from five small parts:
//
//   - [Model]: the problem declaration — an ordered variable list, a set of
//     linear constraints, and the objective variable (always the last
//     variable in the list).
//   - [Node]: one search-tree node owning an append-only constraint sequence
//     and the result of its LP relaxation.
//   - [Brancher]: picks the branching variable for a fractional node.
//     [MostFractional] is the shipped rule.
//   - [Frontier]: a priority queue over unexplored nodes, ordered best-first
//     on the LP bound with deterministic insertion-order tie-breaking.
//   - [Solve]: the search loop — pop, classify, prune/accept/branch, push —
//     tracking the incumbent until the frontier empties.
//
// The LP relaxation itself is an external collaborator behind [lp.Solver];
// see the lp and lp/simplex packages.
//
// # Usage
//
//	m := mip.NewModel()
//	x := m.MustVariable("x")
//	y := m.MustVariable("y")
//	z := m.MustVariable("z") // last variable is the objective
//	m.AddConstraint(mip.Equal(mip.Expr(mip.T(1, z), mip.T(-1, x), mip.T(-1, y)), 0))
//	m.AddConstraint(mip.LessEq(mip.Expr(mip.T(-5, x), mip.T(4, y)), 0))
//	m.AddConstraint(mip.LessEq(mip.Expr(mip.T(6, x), mip.T(2, y)), 17))
//	m.AddConstraint(mip.GreaterEq(mip.Expr(mip.T(1, x)), 0))
//	m.AddConstraint(mip.GreaterEq(mip.Expr(mip.T(1, y)), 0))
//
//	sol, err := mip.Solve(ctx, m, mip.Options{Solver: simplex.New()})
//
// Solve returns [ErrNoIntegerSolution] when the relaxations are solvable but
// no integer-feasible point exists. Individual relaxation failures never
// surface to the caller: an infeasible, unbounded, or errored node is pruned,
// which is always sound because such a node cannot contribute a better bound
// or a feasible point.
package mip
