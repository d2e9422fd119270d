package mip

import "testing"

func TestIncumbentConsider(t *testing.T) {
	m := NewModel()
	x := m.MustVariable("x")
	m.MustVariable("z")

	var inc Incumbent
	if _, _, ok := inc.Result(); ok {
		t.Fatal("fresh incumbent reports a result")
	}

	// First integral solution is always accepted.
	if !inc.Consider(solvedNode(m, 3, 3, 3), 1e-4) {
		t.Fatal("first integral solution rejected")
	}
	obj, values, ok := inc.Result()
	if !ok || obj != 3 {
		t.Fatalf("Result = %g, %v, want 3, true", obj, ok)
	}
	if values[x] != 3 {
		t.Errorf("values[x] = %g, want 3", values[x])
	}

	// Equal objective does not replace: improvement must be strict.
	if inc.Consider(solvedNode(m, 3, 3, 3), 1e-4) {
		t.Error("equal objective replaced the incumbent")
	}

	// Worse objective never replaces.
	if inc.Consider(solvedNode(m, 2, 2, 2), 1e-4) {
		t.Error("worse objective replaced the incumbent")
	}

	// Strictly better objective replaces both fields together.
	if !inc.Consider(solvedNode(m, 4, 4, 4), 1e-4) {
		t.Fatal("better objective rejected")
	}
	obj, values, _ = inc.Result()
	if obj != 4 || values[x] != 4 {
		t.Errorf("Result = %g with x=%g, want 4 with x=4", obj, values[x])
	}
}

func TestIncumbentRejectsNonIntegral(t *testing.T) {
	m := NewModel()
	m.MustVariable("x")
	m.MustVariable("z")

	var inc Incumbent
	if inc.Consider(solvedNode(m, 4.5, 2.5, 4.5), 1e-4) {
		t.Error("fractional node accepted as incumbent")
	}
	if inc.Consider(newRoot(m), 1e-4) {
		t.Error("unsolved node accepted as incumbent")
	}
	if _, _, ok := inc.Result(); ok {
		t.Error("incumbent set after rejecting every candidate")
	}
}
