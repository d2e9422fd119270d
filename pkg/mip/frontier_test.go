package mip

import "testing"

func TestFrontierBestFirst(t *testing.T) {
	f := NewFrontier()

	a := &Node{id: 1}
	b := &Node{id: 2}
	c := &Node{id: 3}

	f.Push(a, 3.5)
	f.Push(b, 7.25)
	f.Push(c, 1.0)

	if f.Len() != 3 {
		t.Fatalf("Len = %d, want 3", f.Len())
	}

	for _, want := range []*Node{b, a, c} {
		if got := f.Pop(); got != want {
			t.Errorf("Pop = node %d, want node %d", got.id, want.id)
		}
	}
	if f.Len() != 0 {
		t.Errorf("Len = %d after draining, want 0", f.Len())
	}
}

func TestFrontierTieBreakInsertionOrder(t *testing.T) {
	f := NewFrontier()

	nodes := []*Node{{id: 1}, {id: 2}, {id: 3}, {id: 4}}
	for _, n := range nodes {
		f.Push(n, 4.5)
	}

	// Equal priorities come back in insertion order.
	for _, want := range nodes {
		got := f.Pop()
		if got != want {
			t.Errorf("Pop = node %d, want node %d", got.id, want.id)
		}
	}
}

func TestFrontierInterleaved(t *testing.T) {
	f := NewFrontier()

	a := &Node{id: 1}
	b := &Node{id: 2}
	f.Push(a, 2)
	f.Push(b, 5)

	if got := f.Pop(); got != b {
		t.Fatalf("Pop = node %d, want node %d", got.id, b.id)
	}

	c := &Node{id: 3}
	f.Push(c, 5)
	if got := f.Pop(); got != c {
		t.Errorf("Pop = node %d, want node %d", got.id, c.id)
	}
	if got := f.Pop(); got != a {
		t.Errorf("Pop = node %d, want node %d", got.id, a.id)
	}
}

func TestFrontierPopEmpty(t *testing.T) {
	f := NewFrontier()
	if got := f.Pop(); got != nil {
		t.Errorf("Pop on empty frontier = %v, want nil", got)
	}
}

func TestFrontierSequenceIsPerInstance(t *testing.T) {
	// Two frontiers must not share tie-break state.
	f1 := NewFrontier()
	f2 := NewFrontier()

	a := &Node{id: 1}
	b := &Node{id: 2}
	f1.Push(a, 1)
	f2.Push(b, 1)
	f1.Push(b, 1)
	f2.Push(a, 1)

	if got := f1.Pop(); got != a {
		t.Errorf("f1.Pop = node %d, want node %d", got.id, a.id)
	}
	if got := f2.Pop(); got != b {
		t.Errorf("f2.Pop = node %d, want node %d", got.id, b.id)
	}
}
