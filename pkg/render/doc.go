// Package render groups the search-tree visualization subpackages.
//
// # Overview
//
// Rendering turns a recorded branch-and-bound search into visual outputs.
// The [tree] subpackage records node events during the search and exports
// the tree:
//
//   - DOT text for Graphviz tooling
//   - SVG and PNG rendered through goccy/go-graphviz
//   - JSON for programmatic consumers
//
// # Usage
//
// Attach a recorder to the search, then export:
//
//	rec := tree.NewRecorder()
//	sol, err := mip.Solve(ctx, model, mip.Options{Solver: simplex.New(), Hooks: rec})
//	dot := tree.ToDOT(rec, tree.Options{})
//	svg, err := tree.RenderSVG(dot)
//
// [tree]: github.com/matzehuels/branchbound/pkg/render/tree
package render
