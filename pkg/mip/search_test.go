package mip_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/branchbound/pkg/lp"
	"github.com/matzehuels/branchbound/pkg/lp/simplex"
	"github.com/matzehuels/branchbound/pkg/mip"
)

// textbookModel builds the small maximization instance used throughout the
// search tests:
//
//	maximize z
//	z == x + y
//	-5x + 4y <= 0
//	 6x + 2y <= 17
//	 x >= 0, y >= 0
//
// Its LP relaxation peaks at z = 4.5 (x=2, y=2.5); the best integer point is
// z = 4 at x=2, y=2.
func textbookModel(t *testing.T) (*mip.Model, *mip.Variable, *mip.Variable, *mip.Variable) {
	t.Helper()
	m := mip.NewModel()
	x := m.MustVariable("x")
	y := m.MustVariable("y")
	z := m.MustVariable("z")

	for _, c := range []mip.Constraint{
		mip.Equal(mip.Expr(mip.T(1, z), mip.T(-1, x), mip.T(-1, y)), 0),
		mip.LessEq(mip.Expr(mip.T(-5, x), mip.T(4, y)), 0),
		mip.LessEq(mip.Expr(mip.T(6, x), mip.T(2, y)), 17),
		mip.GreaterEq(mip.Expr(mip.T(1, x)), 0),
		mip.GreaterEq(mip.Expr(mip.T(1, y)), 0),
	} {
		if err := m.AddConstraint(c); err != nil {
			t.Fatal(err)
		}
	}
	return m, x, y, z
}

func TestSolveTextbook(t *testing.T) {
	m, x, y, z := textbookModel(t)

	sol, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New()})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	if math.Abs(sol.Objective-4) > 1e-6 {
		t.Errorf("objective = %g, want 4", sol.Objective)
	}
	if vx, _ := sol.Value(x); math.Abs(vx-2) > 1e-6 {
		t.Errorf("x = %g, want 2", vx)
	}
	if vy, _ := sol.Value(y); math.Abs(vy-2) > 1e-6 {
		t.Errorf("y = %g, want 2", vy)
	}
	if vz, _ := sol.Value(z); math.Abs(vz-4) > 1e-6 {
		t.Errorf("z = %g, want 4", vz)
	}

	// Root relaxation bound and its relationship to the integer optimum.
	if math.Abs(sol.Stats.RootBound-4.5) > 1e-6 {
		t.Errorf("root bound = %g, want 4.5", sol.Stats.RootBound)
	}
	if sol.Objective > sol.Stats.RootBound+1e-9 {
		t.Error("integer optimum exceeds the root relaxation bound")
	}
	if sol.Stats.IncumbentUpdates < 1 {
		t.Error("no incumbent updates recorded")
	}

	// The solution satisfies every model constraint.
	assign := map[*mip.Variable]float64{x: 2, y: 2, z: 4}
	for _, c := range m.Constraints() {
		if !c.Satisfied(assign, 1e-6) {
			t.Errorf("solution violates %q", c)
		}
	}
}

// Brute force over the integer grid confirms z=4 really is the optimum.
func TestSolveTextbookBruteForce(t *testing.T) {
	best := math.Inf(-1)
	for x := 0.0; x <= 5; x++ {
		for y := 0.0; y <= 10; y++ {
			if -5*x+4*y > 0 || 6*x+2*y > 17 {
				continue
			}
			if z := x + y; z > best {
				best = z
			}
		}
	}
	if best != 4 {
		t.Fatalf("brute force optimum = %g, want 4", best)
	}
}

func TestSolveNoIntegerSolution(t *testing.T) {
	// 0.5 <= x <= 0.6 contains no integer.
	m := mip.NewModel()
	x := m.MustVariable("x")
	z := m.MustVariable("z")

	for _, c := range []mip.Constraint{
		mip.Equal(mip.Expr(mip.T(1, z), mip.T(-1, x)), 0),
		mip.GreaterEq(mip.Expr(mip.T(1, x)), 0.5),
		mip.LessEq(mip.Expr(mip.T(1, x)), 0.6),
	} {
		if err := m.AddConstraint(c); err != nil {
			t.Fatal(err)
		}
	}

	_, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New()})
	if !errors.Is(err, mip.ErrNoIntegerSolution) {
		t.Errorf("err = %v, want ErrNoIntegerSolution", err)
	}
}

func TestSolveUnboundedRoot(t *testing.T) {
	// maximize z with z == x and no upper bound on x.
	m := mip.NewModel()
	x := m.MustVariable("x")
	z := m.MustVariable("z")

	for _, c := range []mip.Constraint{
		mip.Equal(mip.Expr(mip.T(1, z), mip.T(-1, x)), 0),
		mip.GreaterEq(mip.Expr(mip.T(1, x)), 0),
	} {
		if err := m.AddConstraint(c); err != nil {
			t.Fatal(err)
		}
	}

	_, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New()})
	if !errors.Is(err, mip.ErrNoIntegerSolution) {
		t.Errorf("err = %v, want ErrNoIntegerSolution", err)
	}
}

func TestSolveValidatesInput(t *testing.T) {
	m, _, _, _ := textbookModel(t)

	if _, err := mip.Solve(context.Background(), m, mip.Options{}); !errors.Is(err, mip.ErrNoSolver) {
		t.Errorf("nil solver: err = %v, want ErrNoSolver", err)
	}
	if _, err := mip.Solve(context.Background(), mip.NewModel(), mip.Options{Solver: simplex.New()}); !errors.Is(err, mip.ErrNoVariables) {
		t.Errorf("empty model: err = %v, want ErrNoVariables", err)
	}
}

func TestSolveCancellation(t *testing.T) {
	m, _, _, _ := textbookModel(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mip.Solve(ctx, m, mip.Options{Solver: simplex.New()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// eventRecorder captures the full hook stream for comparison across runs.
type eventRecorder struct {
	events   []string
	solved   []mip.NodeEvent
	branches []branchRecord
}

// branchRecord is one OnBranch invocation.
type branchRecord struct {
	parent, floor, ceil int
	variable            string
}

func (r *eventRecorder) OnNodeSolved(e mip.NodeEvent) {
	r.solved = append(r.solved, e)
	r.events = append(r.events, fmt.Sprintf("solved %d parent=%d depth=%d status=%s bound=%.9f var=%s dir=%s",
		e.ID, e.ParentID, e.Depth, e.Status, e.Bound, e.BranchVar, e.Dir))
}

func (r *eventRecorder) OnNodePruned(id int, reason mip.PruneReason) {
	r.events = append(r.events, fmt.Sprintf("pruned %d %s", id, reason))
}

func (r *eventRecorder) OnIncumbent(id int, objective float64) {
	r.events = append(r.events, fmt.Sprintf("incumbent %d %.9f", id, objective))
}

func (r *eventRecorder) OnBranch(parentID int, variable string, floorID, ceilID int) {
	r.branches = append(r.branches, branchRecord{parentID, floorID, ceilID, variable})
	r.events = append(r.events, fmt.Sprintf("branch %d %s -> %d %d", parentID, variable, floorID, ceilID))
}

// Branch events must announce the IDs the children are actually solved
// under, so tree recorders can correlate the two event streams.
func TestSolveBranchChildIDs(t *testing.T) {
	m, _, _, _ := textbookModel(t)
	rec := &eventRecorder{}
	if _, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New(), Hooks: rec}); err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if len(rec.branches) == 0 {
		t.Fatal("no branch events recorded")
	}

	byID := map[int]mip.NodeEvent{}
	for _, e := range rec.solved {
		byID[e.ID] = e
	}
	for _, b := range rec.branches {
		floor, ok := byID[b.floor]
		if !ok {
			t.Fatalf("floor child %d announced but never solved", b.floor)
		}
		ceil, ok := byID[b.ceil]
		if !ok {
			t.Fatalf("ceil child %d announced but never solved", b.ceil)
		}
		if floor.ParentID != b.parent || ceil.ParentID != b.parent {
			t.Errorf("children %d/%d report parents %d/%d, want %d",
				b.floor, b.ceil, floor.ParentID, ceil.ParentID, b.parent)
		}
		if floor.Dir != mip.BranchFloor || ceil.Dir != mip.BranchCeil {
			t.Errorf("children %d/%d report directions %s/%s", b.floor, b.ceil, floor.Dir, ceil.Dir)
		}
		if floor.BranchVar != b.variable || ceil.BranchVar != b.variable {
			t.Errorf("children report variables %s/%s, want %s", floor.BranchVar, ceil.BranchVar, b.variable)
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	run := func() []string {
		m, _, _, _ := textbookModel(t)
		rec := &eventRecorder{}
		if _, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New(), Hooks: rec}); err != nil {
			t.Fatalf("Solve error: %v", err)
		}
		return rec.events
	}

	first := run()
	if len(first) == 0 {
		t.Fatal("no events recorded")
	}
	for i := 0; i < 3; i++ {
		if again := run(); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged:\nfirst: %v\nagain: %v", i+1, first, again)
		}
	}
}

// Every optimal child's bound must not exceed its parent's: appending a
// constraint can only shrink the feasible region.
func TestSolveBoundsMonotone(t *testing.T) {
	m, _, _, _ := textbookModel(t)
	rec := &eventRecorder{}
	if _, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New(), Hooks: rec}); err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	bounds := map[int]float64{}
	for _, e := range rec.solved {
		if e.Status == lp.StatusOptimal {
			bounds[e.ID] = e.Bound
		}
	}
	checked := 0
	for _, e := range rec.solved {
		if e.Status != lp.StatusOptimal || e.ParentID < 0 {
			continue
		}
		parent, ok := bounds[e.ParentID]
		if !ok {
			t.Fatalf("node %d has no recorded parent bound", e.ID)
		}
		if e.Bound > parent+1e-7 {
			t.Errorf("node %d bound %g exceeds parent %d bound %g", e.ID, e.Bound, e.ParentID, parent)
		}
		checked++
	}
	if checked == 0 {
		t.Fatal("no optimal children to check")
	}
}

func TestSolveNodeIdentity(t *testing.T) {
	m, _, _, _ := textbookModel(t)
	rec := &eventRecorder{}
	if _, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New(), Hooks: rec}); err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	root := rec.solved[0]
	if root.ID != 0 || root.ParentID != -1 || root.Depth != 0 {
		t.Errorf("root event = %+v, want ID 0, ParentID -1, Depth 0", root)
	}
	for i, e := range rec.solved {
		if e.ID != i {
			t.Errorf("event %d has ID %d, want creation order", i, e.ID)
		}
		if i > 0 && (e.BranchVar == "" || e.Dir == "") {
			t.Errorf("non-root node %d missing branch provenance: %+v", e.ID, e)
		}
	}
}

// Bound pruning may skip work but never changes the answer.
func TestSolvePruneByBound(t *testing.T) {
	solve := func(prune bool) *mip.Solution {
		m, _, _, _ := textbookModel(t)
		sol, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New(), PruneByBound: prune})
		if err != nil {
			t.Fatalf("Solve(prune=%v) error: %v", prune, err)
		}
		return sol
	}

	plain := solve(false)
	pruned := solve(true)

	if math.Abs(plain.Objective-pruned.Objective) > 1e-9 {
		t.Errorf("objectives differ: %g without pruning, %g with", plain.Objective, pruned.Objective)
	}
	if pruned.Stats.NodesSolved > plain.Stats.NodesSolved {
		t.Errorf("bound pruning solved more nodes (%d) than plain search (%d)",
			pruned.Stats.NodesSolved, plain.Stats.NodesSolved)
	}
}

func TestSolutionValuesByName(t *testing.T) {
	m, _, _, _ := textbookModel(t)
	sol, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New()})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}

	byName := sol.ValuesByName()
	for _, name := range []string{"x", "y", "z"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("ValuesByName missing %q", name)
		}
	}
	if math.Abs(byName["z"]-4) > 1e-6 {
		t.Errorf("z = %g, want 4", byName["z"])
	}
}

// failingSolver errors on every solve.
type failingSolver struct{}

func (failingSolver) Solve(ctx context.Context, in lp.Instance) lp.Result {
	return lp.Errored(errors.New("synthetic failure"))
}

func TestSolveSolverErrorPrunes(t *testing.T) {
	m, _, _, _ := textbookModel(t)
	rec := &eventRecorder{}

	_, err := mip.Solve(context.Background(), m, mip.Options{Solver: failingSolver{}, Hooks: rec})
	if !errors.Is(err, mip.ErrNoIntegerSolution) {
		t.Fatalf("err = %v, want ErrNoIntegerSolution", err)
	}
	// The root fails, gets pruned, and the search stops there.
	want := []string{
		"solved 0 parent=-1 depth=0 status=error bound=0.000000000 var= dir=",
		"pruned 0 solver-error",
	}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}
