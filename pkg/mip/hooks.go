package mip

import "github.com/matzehuels/branchbound/pkg/lp"

// PruneReason says why a node was discarded without branching.
type PruneReason string

const (
	// PruneInfeasible: the node's feasible region is empty.
	PruneInfeasible PruneReason = "infeasible"
	// PruneUnbounded: the node's relaxation is unbounded.
	PruneUnbounded PruneReason = "unbounded"
	// PruneSolverError: the relaxation solver failed opaquely.
	PruneSolverError PruneReason = "solver-error"
	// PruneBound: the node's LP bound cannot beat the incumbent.
	PruneBound PruneReason = "bound"
)

// BranchDir distinguishes the two children of a branch.
type BranchDir string

const (
	// BranchFloor is the child with the appended v <= floor(value) bound.
	BranchFloor BranchDir = "floor"
	// BranchCeil is the child with the appended v >= ceil(value) bound.
	BranchCeil BranchDir = "ceil"
)

// NodeEvent describes one solved node for subscribers. IDs are small
// integers assigned in creation order; the root has ID 0 and ParentID -1.
type NodeEvent struct {
	ID       int
	ParentID int
	Depth    int
	Status   lp.Status
	Bound    float64 // relaxed objective, valid when Status is optimal

	// BranchVar and Dir describe the bound that created this node.
	// Both are empty for the root.
	BranchVar string
	Dir       BranchDir
}

// SearchHooks receives node lifecycle events from the search loop.
// Implementations must be cheap: they run inline with the search.
// The tree renderer and the observability layer subscribe through this
// interface so the core stays decoupled from both.
type SearchHooks interface {
	// OnNodeSolved fires after a node's relaxation is solved, for every
	// node including ones that are subsequently pruned.
	OnNodeSolved(e NodeEvent)

	// OnNodePruned fires when a node is discarded without branching.
	OnNodePruned(id int, reason PruneReason)

	// OnIncumbent fires when a node replaces the incumbent.
	OnIncumbent(id int, objective float64)

	// OnBranch fires when a node spawns its floor and ceil children.
	OnBranch(parentID int, variable string, floorID, ceilID int)
}

// NoopSearchHooks is the default no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnNodeSolved(NodeEvent)         {}
func (NoopSearchHooks) OnNodePruned(int, PruneReason)  {}
func (NoopSearchHooks) OnIncumbent(int, float64)       {}
func (NoopSearchHooks) OnBranch(int, string, int, int) {}

// Ensure NoopSearchHooks implements SearchHooks.
var _ SearchHooks = NoopSearchHooks{}
