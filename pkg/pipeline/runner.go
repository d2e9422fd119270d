package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/branchbound/pkg/cache"
	apperrors "github.com/matzehuels/branchbound/pkg/errors"
	"github.com/matzehuels/branchbound/pkg/lp"
	"github.com/matzehuels/branchbound/pkg/lp/simplex"
	"github.com/matzehuels/branchbound/pkg/mip"
	"github.com/matzehuels/branchbound/pkg/modelfile"
	"github.com/matzehuels/branchbound/pkg/observability"
	"github.com/matzehuels/branchbound/pkg/render/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// solveRecord is the cached shape of a finished solve.
type solveRecord struct {
	Objective float64            `json:"objective"`
	Values    map[string]float64 `json:"values"`
	Stats     mip.Stats          `json:"stats"`
}

// Execute runs the complete load → solve → render pipeline with caching.
//
// When tree formats are requested and not all artifacts are cached, the
// solve runs fresh even if its result is cached: rendering needs the node
// events, which only a live search produces.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	doc, err := r.loadDocument(opts)
	if err != nil {
		return nil, err
	}
	modelHash, err := doc.Hash()
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		ModelHash: modelHash,
		Artifacts: make(map[string][]byte),
	}
	solveKey := r.Keyer.SolveKey(modelHash, opts.SolveKeyOpts())
	needsTree := len(opts.Formats) > 0

	// Stage 1: replay from cache when possible.
	if !opts.Refresh {
		if rec, hit := r.cachedSolve(ctx, solveKey); hit {
			artifacts, allHit := r.cachedArtifacts(ctx, solveKey, opts)
			if !needsTree || allHit {
				result.Objective = rec.Objective
				result.Values = rec.Values
				result.Stats = rec.Stats
				result.Artifacts = artifacts
				result.CacheInfo = CacheInfo{SolveHit: true, ArtifactsHit: allHit && needsTree}
				r.Logger.Info("solve replayed from cache", "run", result.RunID, "model", shortHash(modelHash))
				return result, nil
			}
		}
	}

	// Stage 2: solve.
	model, err := doc.Build()
	if err != nil {
		return nil, err
	}

	var recorder *tree.Recorder
	var hooks mip.SearchHooks
	if needsTree {
		recorder = tree.NewRecorder()
		hooks = recorder
	}

	solveStart := time.Now()
	observability.Solve().OnSolveStart(ctx, modelHash, model.NumVars(), len(model.Constraints()))

	sol, err := mip.Solve(ctx, model, mip.Options{
		Solver:       r.solver(opts),
		Tolerance:    opts.Tolerance,
		PruneByBound: opts.PruneByBound,
		Logger:       opts.Logger,
		Hooks:        hooks,
	})

	solveTime := time.Since(solveStart)
	nodesSolved := 0
	if sol != nil {
		nodesSolved = sol.Stats.NodesSolved
	}
	observability.Solve().OnSolveComplete(ctx, modelHash, nodesSolved, solveTime, err)

	if err != nil {
		switch {
		case errors.Is(err, mip.ErrNoIntegerSolution):
			return nil, apperrors.Wrap(apperrors.ErrCodeNoIntegerSolution, err, "model %q has no integer-feasible solution", doc.Name)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, apperrors.Wrap(apperrors.ErrCodeSearchCancelled, err, "solve interrupted")
		default:
			return nil, apperrors.Wrap(apperrors.ErrCodeSolverFailure, err, "solve failed")
		}
	}

	result.Objective = sol.Objective
	result.Values = sol.ValuesByName()
	result.Stats = sol.Stats

	r.Logger.Info("solved model",
		"run", result.RunID,
		"objective", sol.Objective,
		"nodes", sol.Stats.NodesSolved,
		"duration", solveTime)

	r.cacheSolve(ctx, solveKey, result)

	// Stage 3: render.
	if needsTree {
		renderStart := time.Now()
		observability.Render().OnRenderStart(ctx, opts.Formats, recorder.Len())

		artifacts, err := r.renderTree(recorder, opts)

		observability.Render().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
		r.cacheArtifacts(ctx, solveKey, opts, artifacts)

		r.Logger.Info("rendered search tree",
			"run", result.RunID,
			"formats", opts.Formats,
			"nodes", recorder.Len())
	}

	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// loadDocument reads the model from disk or from the inline TOML.
func (r *Runner) loadDocument(opts Options) (*modelfile.Document, error) {
	if opts.ModelPath != "" {
		return modelfile.Load(opts.ModelPath)
	}
	return modelfile.Parse([]byte(opts.ModelTOML))
}

// solver returns the configured LP backend, defaulting to gonum's simplex.
func (r *Runner) solver(opts Options) lp.Solver {
	if opts.Solver != nil {
		return opts.Solver
	}
	return simplex.New()
}

// cacheGet wraps Cache.Get with retries. Remote backends tag transient
// failures as retryable; the file and null backends never do, so the
// wrapper costs them nothing.
func (r *Runner) cacheGet(ctx context.Context, key string) (data []byte, hit bool, err error) {
	err = cache.RetryWithBackoff(ctx, func() error {
		var inner error
		data, hit, inner = r.Cache.Get(ctx, key)
		return inner
	})
	return data, hit, err
}

// cacheSet wraps Cache.Set with the same retry policy as cacheGet.
func (r *Runner) cacheSet(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
}

// cachedSolve looks up a finished solve.
func (r *Runner) cachedSolve(ctx context.Context, key string) (*solveRecord, bool) {
	data, hit, err := r.cacheGet(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "solve")
		return nil, false
	}

	var rec solveRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Invalid cache entry - treat as miss
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "solve")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "solve")
	return &rec, true
}

// cacheSolve stores a finished solve; failures only log.
func (r *Runner) cacheSolve(ctx context.Context, key string, result *Result) {
	data, err := json.Marshal(solveRecord{
		Objective: result.Objective,
		Values:    result.Values,
		Stats:     result.Stats,
	})
	if err != nil {
		return
	}
	if err := r.cacheSet(ctx, key, data, cache.TTLSolve); err != nil {
		r.Logger.Warn("cannot cache solve result", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "solve", len(data))
}

// cachedArtifacts tries to fetch every requested format from cache.
func (r *Runner) cachedArtifacts(ctx context.Context, solveKey string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(solveKey, opts.ArtifactKeyOpts(format))
		data, hit, err := r.cacheGet(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		artifacts[format] = data
	}
	if len(opts.Formats) > 0 {
		observability.Cache().OnCacheHit(ctx, "artifact")
	}
	return artifacts, true
}

// cacheArtifacts stores rendered artifacts; failures only log.
func (r *Runner) cacheArtifacts(ctx context.Context, solveKey string, opts Options, artifacts map[string][]byte) {
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(solveKey, opts.ArtifactKeyOpts(format))
		if err := r.cacheSet(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cannot cache artifact", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
}

// renderTree exports the recorded search in every requested format.
func (r *Runner) renderTree(recorder *tree.Recorder, opts Options) (map[string][]byte, error) {
	dot := tree.ToDOT(recorder, tree.Options{Detailed: opts.Detailed})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = recorder.JSON()
		case FormatSVG:
			data, err = tree.RenderSVG(dot)
		case FormatPNG:
			data, err = tree.RenderPNG(dot)
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "cannot render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// shortHash abbreviates a content hash for log lines.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
