package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/branchbound/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	tolerance    float64 // integrality tolerance, part of the cache key
	pruneByBound bool    // must match the solve run to replay its tree
	formats      string  // comma-separated output formats
	output       string  // output file path (or base path for multiple formats)
	detailed     bool    // show bound and status details on tree nodes
	noCache      bool    // disable caching
	refresh      bool    // bypass cache reads
}

// renderCommand creates the render command. It is a shortcut for
// "solve --format" that defaults to SVG and skips the solution printout:
// the search runs (or replays from cache) and only the tree is written.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <model.toml>",
		Short: "Render the branch-and-bound search tree",
		Long: `Render the branch-and-bound search tree for a model.

The model is solved (or replayed from cache) and the search tree is
written in the requested formats. Nodes show their LP bound; the
incumbent and pruned nodes are highlighted.

Examples:
  branchbound render model.toml
  branchbound render model.toml -f dot,json -o tree`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "integrality tolerance (default 1e-4)")
	cmd.Flags().BoolVar(&opts.pruneByBound, "prune-bound", true, "prune nodes whose bound cannot beat the incumbent")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), dot, png, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include bound and status details on tree nodes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache reads")

	return cmd
}

// runRender solves the model and writes the rendered tree.
func (c *CLI) runRender(ctx context.Context, modelPath string, opts *renderOpts) error {
	formats := parseFormats(opts.formats)
	if len(formats) == 0 {
		formats = []string{pipeline.FormatSVG}
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(modelPath)))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		ModelPath:    modelPath,
		Tolerance:    opts.tolerance,
		PruneByBound: opts.pruneByBound,
		Refresh:      opts.refresh,
		Formats:      formats,
		Detailed:     opts.detailed,
		Logger:       c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess("Rendered search tree (%d nodes)", result.Stats.NodesSolved)
	printStats(result.Stats.NodesSolved, result.Stats.IncumbentUpdates, result.CacheInfo.ArtifactsHit)

	return writeArtifacts(result.Artifacts, formats, modelPath, opts.output)
}
