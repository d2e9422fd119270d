// Package tree renders branch-and-bound search trees.
//
// A [Recorder] subscribes to the search through the [mip.SearchHooks]
// interface and captures every node event. After the solve finishes, the
// recorded tree can be exported as Graphviz DOT ([ToDOT]), rendered to SVG
// or PNG ([RenderSVG], [RenderPNG]), or serialized as JSON ([Recorder.JSON]).
package tree

import (
	"encoding/json"
	"sync"

	"github.com/matzehuels/branchbound/pkg/mip"
)

// NodeRecord is one recorded search node with its final classification.
type NodeRecord struct {
	ID        int             `json:"id"`
	ParentID  int             `json:"parent_id"`
	Depth     int             `json:"depth"`
	Status    string          `json:"status"`
	Bound     float64         `json:"bound"`
	BranchVar string          `json:"branch_var,omitempty"`
	Dir       mip.BranchDir   `json:"dir,omitempty"`
	Pruned    bool            `json:"pruned,omitempty"`
	Reason    mip.PruneReason `json:"prune_reason,omitempty"`
	Incumbent bool            `json:"incumbent,omitempty"`
}

// Recorder captures node lifecycle events during a search.
//
// The mutex makes the recorder safe to share even though the current search
// loop is sequential; the hooks contract does not promise single-threaded
// callers forever.
type Recorder struct {
	mu    sync.Mutex
	nodes []*NodeRecord
	byID  map[int]*NodeRecord

	// bestID is the node holding the final incumbent, -1 if none.
	bestID int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{byID: make(map[int]*NodeRecord), bestID: -1}
}

// OnNodeSolved records a solved node.
func (r *Recorder) OnNodeSolved(e mip.NodeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := &NodeRecord{
		ID:        e.ID,
		ParentID:  e.ParentID,
		Depth:     e.Depth,
		Status:    e.Status.String(),
		Bound:     e.Bound,
		BranchVar: e.BranchVar,
		Dir:       e.Dir,
	}
	r.nodes = append(r.nodes, rec)
	r.byID[e.ID] = rec
}

// OnNodePruned marks a node as pruned with its reason.
func (r *Recorder) OnNodePruned(id int, reason mip.PruneReason) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.byID[id]; ok {
		rec.Pruned = true
		rec.Reason = reason
	}
}

// OnIncumbent marks a node as the current best solution. Only the final
// incumbent keeps the mark; superseded incumbents revert to plain nodes.
func (r *Recorder) OnIncumbent(id int, objective float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byID[r.bestID]; ok {
		prev.Incumbent = false
	}
	if rec, ok := r.byID[id]; ok {
		rec.Incumbent = true
		r.bestID = id
	}
}

// OnBranch is a no-op: the branch structure is reconstructed from the
// parent IDs carried by the node events.
func (r *Recorder) OnBranch(parentID int, variable string, floorID, ceilID int) {}

// Nodes returns the recorded nodes in solve order.
func (r *Recorder) Nodes() []*NodeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*NodeRecord, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// Len returns the number of recorded nodes.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// JSON serializes the recorded tree.
func (r *Recorder) JSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		Nodes []*NodeRecord `json:"nodes"`
	}{Nodes: r.Nodes()}, "", "  ")
}

// Ensure Recorder implements the search hooks.
var _ mip.SearchHooks = (*Recorder)(nil)
