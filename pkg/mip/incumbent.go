package mip

// Incumbent tracks the best integer-feasible solution seen so far.
// It starts unset and its objective is monotonically non-decreasing over a
// maximization run; the final state is the search's output.
//
// A sequential search needs no locking here. A parallel extension must make
// Consider a single atomic compare-and-update region and re-read the bound
// under the same synchronization before pruning against it.
type Incumbent struct {
	set       bool
	objective float64
	values    map[*Variable]float64
}

// Consider replaces the incumbent with n's solution iff n's relaxation is
// optimal and integral within tol and its objective strictly exceeds the
// current best (or no best exists yet). Both fields are replaced together.
// Reports whether the incumbent was updated.
func (inc *Incumbent) Consider(n *Node, tol float64) bool {
	res, ok := n.Relaxation()
	if !ok || !n.IsIntegral(tol) {
		return false
	}
	if inc.set && res.Objective <= inc.objective {
		return false
	}
	inc.set = true
	inc.objective = res.Objective
	inc.values = n.assignment()
	return true
}

// Result returns the best objective and assignment found.
// The third return is false if no integer-feasible solution was ever seen.
func (inc *Incumbent) Result() (float64, map[*Variable]float64, bool) {
	return inc.objective, inc.values, inc.set
}
