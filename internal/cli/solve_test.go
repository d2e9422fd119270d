package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const textbookTOML = `
variables = ["x", "y", "z"]

[[constraints]]
terms = { z = 1.0, x = -1.0, y = -1.0 }
relation = "=="
rhs = 0.0

[[constraints]]
terms = { x = -5.0, y = 4.0 }
relation = "<="
rhs = 0.0

[[constraints]]
terms = { x = 6.0, y = 2.0 }
relation = "<="
rhs = 17.0

[[constraints]]
terms = { x = 1.0 }
relation = ">="
rhs = 0.0

[[constraints]]
terms = { y = 1.0 }
relation = ">="
rhs = 0.0
`

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSolve(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)

	model := writeModel(t, textbookTOML)
	err := c.runSolve(context.Background(), model, &solveOpts{})
	if err != nil {
		t.Fatalf("runSolve error: %v", err)
	}
}

func TestRunSolveWritesArtifacts(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)

	model := writeModel(t, textbookTOML)
	output := filepath.Join(t.TempDir(), "tree.dot")

	err := c.runSolve(context.Background(), model, &solveOpts{
		formats: "dot",
		output:  output,
	})
	if err != nil {
		t.Fatalf("runSolve error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph search") {
		t.Errorf("artifact starts with %q", data[:min(len(data), 20)])
	}
}

func TestRunSolveInvalidFormat(t *testing.T) {
	c := New(io.Discard, LogInfo)

	model := writeModel(t, textbookTOML)
	err := c.runSolve(context.Background(), model, &solveOpts{formats: "pdf", noCache: true})
	if err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestRunSolveMissingModel(t *testing.T) {
	c := New(io.Discard, LogInfo)

	err := c.runSolve(context.Background(), filepath.Join(t.TempDir(), "missing.toml"), &solveOpts{noCache: true})
	if err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestRunRenderWritesMultipleFormats(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)

	model := writeModel(t, textbookTOML)
	base := filepath.Join(t.TempDir(), "tree")

	err := c.runRender(context.Background(), model, &renderOpts{
		formats: "dot,json",
		output:  base,
	})
	if err != nil {
		t.Fatalf("runRender error: %v", err)
	}

	for _, ext := range []string{".dot", ".json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing artifact %s: %v", base+ext, err)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output string
		input  string
		want   string
	}{
		{"", "model.toml", "model"},
		{"", "dir/model.toml", "dir/model"},
		{"out.svg", "model.toml", "out"},
		{"out", "model.toml", "out"},
		{"out.backup", "model.toml", "out.backup"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}
