package mip

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/branchbound/pkg/lp"
)

// DefaultTolerance is the integrality tolerance used when Options.Tolerance
// is zero: a value counts as integral when it is within this distance of
// the nearest integer.
const DefaultTolerance = 1e-4

var (
	// ErrNoIntegerSolution is returned by [Solve] when the search finishes
	// without ever finding an integer-feasible point. This is the only
	// error surfaced for relaxation outcomes; individual node failures are
	// pruned silently.
	ErrNoIntegerSolution = errors.New("no integer-feasible solution found")

	// ErrNoSolver is returned by [Solve] when Options.Solver is nil.
	ErrNoSolver = errors.New("options: relaxation solver is required")
)

// Options configures a branch-and-bound search.
type Options struct {
	// Solver is the LP relaxation backend. Required.
	Solver lp.Solver

	// Tolerance is the integrality tolerance. Zero means DefaultTolerance.
	Tolerance float64

	// Brancher selects the branching variable. Nil means [MostFractional].
	Brancher Brancher

	// PruneByBound skips expanding nodes whose LP bound cannot strictly
	// beat the current incumbent. Off by default so the exploration order
	// matches the plain best-first search exactly; turning it on never
	// changes the returned solution, only the number of nodes explored.
	PruneByBound bool

	// Logger receives per-node debug logging. Nil discards.
	Logger *log.Logger

	// Hooks receives node lifecycle events. Nil means no-op.
	Hooks SearchHooks
}

// setDefaults fills unset optional fields.
func (o *Options) setDefaults() {
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Brancher == nil {
		o.Brancher = MostFractional{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Hooks == nil {
		o.Hooks = NoopSearchHooks{}
	}
}

// Stats summarizes one search run.
type Stats struct {
	NodesSolved      int     // relaxations solved, including pruned nodes
	NodesPruned      int     // nodes discarded without branching
	NodesBranched    int     // nodes split into floor/ceil children
	IncumbentUpdates int     // times the best solution improved
	MaxDepth         int     // deepest node solved
	RootBound        float64 // the root relaxation's objective (0 if root failed)
}

// Solution is the output of a successful search: the best integer-feasible
// objective, the full assignment (including the objective variable), and
// run statistics.
type Solution struct {
	Objective float64
	Values    map[*Variable]float64
	Stats     Stats
}

// Value returns v's value in the solution assignment.
func (s *Solution) Value(v *Variable) (float64, bool) {
	val, ok := s.Values[v]
	return val, ok
}

// ValuesByName returns the assignment keyed by variable name.
func (s *Solution) ValuesByName() map[string]float64 {
	out := make(map[string]float64, len(s.Values))
	for v, val := range s.Values {
		out[v.Name()] = val
	}
	return out
}

// Solve runs branch-and-bound on the model and returns the best
// integer-feasible solution, maximizing the objective variable.
//
// The search is sequential: one relaxation solve at a time, on the calling
// goroutine. Each popped node is classified exactly once — pruned on any
// non-optimal relaxation, accepted as an incumbent candidate when integral,
// or branched into a floor and a ceil child otherwise. Children are solved
// when created and enter the frontier only if their relaxation is optimal;
// anything else prunes the subtree immediately, which is sound because a
// failed node can contribute neither a bound nor a feasible point.
//
// Returns [ErrNoIntegerSolution] if the frontier empties without an
// incumbent, and the context error if ctx is cancelled between solves.
func Solve(ctx context.Context, m *Model, opts Options) (*Solution, error) {
	if opts.Solver == nil {
		return nil, ErrNoSolver
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()

	s := &search{
		model:    m,
		opts:     opts,
		frontier: NewFrontier(),
	}
	return s.run(ctx)
}

// search is the per-run state of the loop. The node ID counter lives here,
// not in a package variable, for the same reason the frontier owns its
// sequence counter.
type search struct {
	model     *Model
	opts      Options
	frontier  *Frontier
	incumbent Incumbent
	stats     Stats
	nextID    int
}

func (s *search) run(ctx context.Context) (*Solution, error) {
	root := newRoot(s.model)
	res := s.solve(ctx, root)
	s.stats.RootBound = res.Objective
	s.frontier.Push(root, res.Objective)

	for s.frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := s.frontier.Pop()
		res, _ := n.Relaxation()

		switch {
		case res.Status != lp.StatusOptimal:
			s.prune(n, pruneReason(res.Status))

		case n.IsIntegral(s.opts.Tolerance):
			// An integral relaxation is itself a valid MILP solution and
			// cannot be improved by branching further on a satisfied node.
			if s.incumbent.Consider(n, s.opts.Tolerance) {
				s.stats.IncumbentUpdates++
				s.opts.Hooks.OnIncumbent(n.id, res.Objective)
				s.opts.Logger.Debug("incumbent improved", "node", n.id, "objective", res.Objective)
			}

		default:
			s.expand(ctx, n, res)
		}
	}

	objective, values, ok := s.incumbent.Result()
	if !ok {
		return nil, fmt.Errorf("%w (%d nodes solved)", ErrNoIntegerSolution, s.stats.NodesSolved)
	}
	return &Solution{Objective: objective, Values: values, Stats: s.stats}, nil
}

// expand branches a fractional node into its floor and ceil children,
// solving each and pushing the ones with an optimal relaxation.
func (s *search) expand(ctx context.Context, n *Node, res lp.Result) {
	if s.opts.PruneByBound {
		if best, _, ok := s.incumbent.Result(); ok && res.Objective <= best {
			// The LP bound dominates every integer point in this subtree.
			s.prune(n, PruneBound)
			return
		}
	}

	v, err := s.opts.Brancher.SelectVariable(n)
	if err != nil {
		// Can only happen on a brancher/tolerance mismatch; the node is
		// unusable either way.
		s.opts.Logger.Warn("branching failed", "node", n.id, "err", err)
		s.prune(n, PruneSolverError)
		return
	}

	floor, err := n.BranchFloor(v)
	if err != nil {
		s.opts.Logger.Warn("branching failed", "node", n.id, "err", err)
		s.prune(n, PruneSolverError)
		return
	}
	ceil, _ := n.BranchCeil(v)

	floor.branchVar, floor.dir = v.Name(), BranchFloor
	ceil.branchVar, ceil.dir = v.Name(), BranchCeil

	s.stats.NodesBranched++
	// solve assigns the next two IDs to the floor and ceil child in order.
	s.opts.Hooks.OnBranch(n.id, v.Name(), s.nextID, s.nextID+1)
	s.opts.Logger.Debug("branching", "node", n.id, "variable", v.Name())

	for _, child := range []*Node{floor, ceil} {
		childRes := s.solve(ctx, child)
		if childRes.Status == lp.StatusOptimal {
			s.frontier.Push(child, childRes.Objective)
		} else {
			// A child whose solve fails is pruned immediately, never pushed.
			s.prune(child, pruneReason(childRes.Status))
		}
	}
}

// solve runs the node's relaxation, assigns its ID, and reports the event.
func (s *search) solve(ctx context.Context, n *Node) lp.Result {
	n.id = s.nextID
	s.nextID++

	res := n.SolveRelaxation(ctx, s.opts.Solver)
	s.stats.NodesSolved++
	if n.depth > s.stats.MaxDepth {
		s.stats.MaxDepth = n.depth
	}

	s.opts.Hooks.OnNodeSolved(NodeEvent{
		ID:        n.id,
		ParentID:  n.parent,
		Depth:     n.depth,
		Status:    res.Status,
		Bound:     res.Objective,
		BranchVar: n.branchVar,
		Dir:       n.dir,
	})
	s.opts.Logger.Debug("relaxation solved",
		"node", n.id, "depth", n.depth, "status", res.Status, "bound", res.Objective)
	return res
}

func (s *search) prune(n *Node, reason PruneReason) {
	s.stats.NodesPruned++
	s.opts.Hooks.OnNodePruned(n.id, reason)
	s.opts.Logger.Debug("node pruned", "node", n.id, "reason", reason)
}

// pruneReason maps a failed relaxation status to its prune reason.
// All three cases prune identically; they stay distinct for diagnosis.
func pruneReason(status lp.Status) PruneReason {
	switch status {
	case lp.StatusInfeasible:
		return PruneInfeasible
	case lp.StatusUnbounded:
		return PruneUnbounded
	default:
		return PruneSolverError
	}
}
