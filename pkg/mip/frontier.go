package mip

import "container/heap"

// Frontier holds unexplored search nodes in best-first order on the LP
// bound. Ties on the bound are broken by insertion order, which makes the
// exploration order deterministic and reproducible across runs with
// identical input.
//
// The insertion sequence counter is a field of the Frontier — never hidden
// global state — so independent searches cannot interfere and the structure
// stays safe to embed in a future parallel driver.
type Frontier struct {
	entries frontierHeap
	seq     uint64
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier { return &Frontier{} }

// Push inserts a node with the given priority (its own relaxed objective).
func (f *Frontier) Push(n *Node, priority float64) {
	heap.Push(&f.entries, &frontierEntry{node: n, priority: priority, seq: f.seq})
	f.seq++
}

// Pop removes and returns the node with the highest priority; among equal
// priorities the earliest-inserted node wins. Returns nil when empty.
func (f *Frontier) Pop() *Node {
	if len(f.entries) == 0 {
		return nil
	}
	return heap.Pop(&f.entries).(*frontierEntry).node
}

// Len returns the number of unexplored nodes.
func (f *Frontier) Len() int { return len(f.entries) }

// frontierEntry pairs a node with its priority key and insertion sequence.
// The sequence number is a tie-break only, not domain state.
type frontierEntry struct {
	node     *Node
	priority float64
	seq      uint64
}

// frontierHeap implements heap.Interface with max-priority, min-sequence order.
type frontierHeap []*frontierEntry

func (h frontierHeap) Len() int { return len(h) }

func (h frontierHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *frontierHeap) Push(x any) { *h = append(*h, x.(*frontierEntry)) }

func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
