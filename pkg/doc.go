// Package pkg provides the core libraries for the Branchbound MILP solver.
//
// # Overview
//
// Branchbound solves mixed-integer linear programs with branch-and-bound
// over LP relaxations. The pkg directory is organized into four main areas:
//
//  1. Solver core ([lp], [mip]) - LP relaxations and the search
//  2. Model input ([modelfile]) - TOML model documents
//  3. Output ([render/tree]) - search-tree visualization
//  4. Infrastructure ([cache], [pipeline], [errors], [observability])
//
// # Architecture
//
// The typical data flow through Branchbound:
//
//	TOML model document
//	         ↓
//	    [modelfile] package (parse, validate, build)
//	         ↓
//	    [mip] package (branch-and-bound over [lp] relaxations)
//	         ↓
//	    [render/tree] package (search-tree export)
//	         ↓
//	    solution + DOT/SVG/PNG/JSON output
//
// # Quick Start
//
// Build a model and solve it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/branchbound/pkg/lp/simplex"
//	    "github.com/matzehuels/branchbound/pkg/mip"
//	)
//
//	m := mip.NewModel()
//	x := m.MustVariable("x")
//	y := m.MustVariable("y")
//	z := m.MustVariable("z") // last variable is the objective
//
//	m.AddConstraint(mip.Equal(mip.Expr(mip.T(1, z), mip.T(-1, x), mip.T(-1, y)), 0))
//	m.AddConstraint(mip.LessEq(mip.Expr(mip.T(-5, x), mip.T(4, y)), 0))
//	m.AddConstraint(mip.LessEq(mip.Expr(mip.T(6, x), mip.T(2, y)), 17))
//	m.AddConstraint(mip.GreaterEq(mip.Expr(mip.T(1, x)), 0))
//	m.AddConstraint(mip.GreaterEq(mip.Expr(mip.T(1, y)), 0))
//
//	sol, err := mip.Solve(context.Background(), m, mip.Options{Solver: simplex.New()})
//
// # Main Packages
//
// ## Solver Core
//
// [lp] - The LP abstraction: standard-form instances, solve statuses, and
// the Solver interface. The [lp/simplex] subpackage adapts gonum's simplex
// implementation.
//
// [mip] - Branch-and-bound: models, constraints, the best-first frontier,
// the most-fractional brancher, and the search loop with its hooks.
//
// ## Model Input
//
// [modelfile] - TOML model documents: parsing, validation, content hashing,
// and building [mip] models.
//
// ## Visualization
//
// [render/tree] - Records node events during the search and exports the
// tree as DOT, SVG, PNG, or JSON.
//
// ## Infrastructure
//
// [pipeline] - Complete solve pipeline (load → solve → render) used by CLI
// and API. Ensures consistent behavior across all entry points.
//
// [cache] - Cache backends (file, Redis, MongoDB, null) and deterministic
// cache keys derived from model hashes and solve options.
//
// [errors] - Structured errors with machine-readable codes, plus input
// validation helpers.
//
// [observability] - Pluggable hooks for solve, cache, and render events.
//
// [lp]: github.com/matzehuels/branchbound/pkg/lp
// [lp/simplex]: github.com/matzehuels/branchbound/pkg/lp/simplex
// [mip]: github.com/matzehuels/branchbound/pkg/mip
// [modelfile]: github.com/matzehuels/branchbound/pkg/modelfile
// [render/tree]: github.com/matzehuels/branchbound/pkg/render/tree
// [pipeline]: github.com/matzehuels/branchbound/pkg/pipeline
// [cache]: github.com/matzehuels/branchbound/pkg/cache
// [errors]: github.com/matzehuels/branchbound/pkg/errors
// [observability]: github.com/matzehuels/branchbound/pkg/observability
package pkg
