package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/branchbound/pkg/pipeline"
)

// solveOpts holds the command-line flags for the solve command.
type solveOpts struct {
	tolerance    float64 // integrality tolerance
	pruneByBound bool    // discard nodes that cannot beat the incumbent
	formats      string  // comma-separated tree output formats
	output       string  // output file (single format) or base path (multiple)
	detailed     bool    // show LP details on tree nodes
	noCache      bool    // disable caching
	refresh      bool    // bypass cache reads
}

// solveCommand creates the solve command. It loads a TOML model, runs
// branch-and-bound, prints the solution, and optionally writes the search
// tree in the requested formats.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve <model.toml>",
		Short: "Solve a mixed-integer model",
		Long: `Solve a mixed-integer model with branch-and-bound.

The model is a TOML document declaring variables and linear constraints.
The last variable in the list (or the one named by "objective") is
maximized and exempt from integrality.

Results are cached locally, keyed on the model content and solve options,
so repeated runs replay instantly.

Examples:
  branchbound solve model.toml
  branchbound solve model.toml --tolerance 1e-6
  branchbound solve model.toml -f svg -o tree.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "integrality tolerance (default 1e-4)")
	cmd.Flags().BoolVar(&opts.pruneByBound, "prune-bound", true, "prune nodes whose bound cannot beat the incumbent")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "tree output format(s): dot, svg, png, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include bound and status details on tree nodes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache reads")

	return cmd
}

// runSolve executes the solve pipeline and presents the result.
func (c *CLI) runSolve(ctx context.Context, modelPath string, opts *solveOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	pipeOpts := pipeline.Options{
		ModelPath:    modelPath,
		Tolerance:    opts.tolerance,
		PruneByBound: opts.pruneByBound,
		Refresh:      opts.refresh,
		Formats:      parseFormats(opts.formats),
		Detailed:     opts.detailed,
		Logger:       c.Logger,
	}
	if err := pipeline.ValidateFormats(pipeOpts.Formats); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Solving %s...", filepath.Base(modelPath)))
	spinner.Start()

	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return err
	}
	spinner.Stop()

	printSolution(result)

	if len(pipeOpts.Formats) > 0 {
		if err := writeArtifacts(result.Artifacts, pipeOpts.Formats, modelPath, opts.output); err != nil {
			return err
		}
	} else {
		printNextStep("Render the search tree", fmt.Sprintf("branchbound solve %s -f svg", modelPath))
	}
	return nil
}

// printSolution prints the objective, the assignment, and search stats.
func printSolution(result *pipeline.Result) {
	printSuccess("Optimal objective: %s", StyleNumber.Render(fmt.Sprintf("%g", result.Objective)))

	names := make([]string, 0, len(result.Values))
	for name := range result.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printKeyValue(name, fmt.Sprintf("%g", result.Values[name]))
	}

	printStats(result.Stats.NodesSolved, result.Stats.IncumbentUpdates, result.CacheInfo.SolveHit)
}

// writeArtifacts writes each rendered format to its own file.
//
// With a single format the output flag names the file directly; with
// multiple formats it acts as a base path and the format becomes the
// extension. An empty output derives the base from the model path.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	if len(formats) == 1 {
		path := output
		if path == "" {
			path = basePath("", input) + "." + formats[0]
		}
		return writeArtifact(path, artifacts[formats[0]])
	}

	base := basePath(output, input)
	for _, format := range formats {
		if err := writeArtifact(base+"."+format, artifacts[format]); err != nil {
			return err
		}
	}
	return nil
}

// writeArtifact writes one artifact, announcing the path. An empty path
// streams to stdout instead.
func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if path != "" {
		printFile(path)
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output ends in a known format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
