// Package pipeline provides the core solve pipeline for Branchbound.
//
// This package implements the complete load → solve → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse and validate the TOML model document
//  2. Solve: Run branch-and-bound on the model's LP relaxations
//  3. Render: Export the search tree in various formats (DOT, SVG, PNG, JSON)
//
// Solve results and rendered artifacts are cached keyed on the model's
// content hash plus the solve options, so repeated runs replay from cache.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ModelPath: "models/textbook.toml",
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/branchbound/pkg/cache"
	apperrors "github.com/matzehuels/branchbound/pkg/errors"
	"github.com/matzehuels/branchbound/pkg/lp"
	"github.com/matzehuels/branchbound/pkg/mip"
)

// Format constants for tree output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported tree output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// BrancherName identifies the branching rule in cache keys. Only one rule
// ships today; the name keeps old cache entries valid if more are added.
const BrancherName = "most-fractional"

// Options contains all configuration for the solve pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Model input: exactly one of ModelPath (a file on disk) or ModelTOML
	// (the document inline, as the API receives it).
	ModelPath string `json:"model_path,omitempty"`
	ModelTOML string `json:"model_toml,omitempty"`

	// Solve options
	Tolerance    float64 `json:"tolerance,omitempty"`
	PruneByBound bool    `json:"prune_by_bound,omitempty"`

	// Refresh bypasses the cache for reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	Solver lp.Solver   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution for logs and API responses.
	RunID string `json:"run_id"`

	// ModelHash is the content hash of the canonical model document.
	ModelHash string `json:"model_hash"`

	// Objective is the best integer-feasible objective value.
	Objective float64 `json:"objective"`

	// Values is the solution assignment keyed by variable name.
	Values map[string]float64 `json:"values"`

	// Stats summarizes the search.
	Stats mip.Stats `json:"stats"`

	// Artifacts contains rendered tree outputs keyed by format.
	Artifacts map[string][]byte `json:"-"`

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo `json:"cache_info"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit     bool `json:"solve_hit"`     // solve result came from cache
	ArtifactsHit bool `json:"artifacts_hit"` // all requested artifacts came from cache
}

// ValidateFormats checks that all requested formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !ValidFormats[f] {
			return apperrors.New(apperrors.ErrCodeInvalidFormat,
				"invalid format: %q (must be one of: dot, svg, png, json)", f)
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.ModelPath == "" && o.ModelTOML == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "model_path or model_toml is required")
	}
	if o.ModelPath != "" && o.ModelTOML != "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "model_path and model_toml are mutually exclusive")
	}
	if err := apperrors.ValidateTolerance(o.Tolerance); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Tolerance == 0 {
		o.Tolerance = mip.DefaultTolerance
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// SolveKeyOpts returns cache key options for the solve stage.
func (o *Options) SolveKeyOpts() cache.SolveKeyOpts {
	return cache.SolveKeyOpts{
		Tolerance:    o.Tolerance,
		PruneByBound: o.PruneByBound,
		Brancher:     BrancherName,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Detailed labels change the artifact bytes, so the flag is folded into the
// format component.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	if o.Detailed {
		format += ":detailed"
	}
	return cache.ArtifactKeyOpts{Format: format}
}
