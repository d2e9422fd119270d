package modelfile

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/matzehuels/branchbound/pkg/errors"
)

const textbookTOML = `
name = "textbook"
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

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(textbookTOML))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if doc.Name != "textbook" {
		t.Errorf("Name = %q, want textbook", doc.Name)
	}
	if len(doc.Variables) != 3 {
		t.Errorf("Variables = %v, want 3 entries", doc.Variables)
	}
	if len(doc.Constraints) != 5 {
		t.Errorf("Constraints = %d, want 5", len(doc.Constraints))
	}
	if doc.Constraints[0].Relation != "==" || doc.Constraints[0].RHS != 0 {
		t.Errorf("first constraint = %+v", doc.Constraints[0])
	}
}

func TestParseInvalidTOML(t *testing.T) {
	_, err := Parse([]byte(`variables = [`))
	if !apperrors.Is(err, apperrors.ErrCodeInvalidModel) {
		t.Errorf("err = %v, want INVALID_MODEL", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
		code   apperrors.Code
	}{
		{"no variables", func(d *Document) { d.Variables = nil }, apperrors.ErrCodeInvalidModel},
		{"bad variable name", func(d *Document) { d.Variables[0] = "2x" }, apperrors.ErrCodeInvalidVariable},
		{"duplicate variable", func(d *Document) { d.Variables[1] = "x" }, apperrors.ErrCodeInvalidVariable},
		{"unknown objective", func(d *Document) { d.Objective = "w" }, apperrors.ErrCodeVariableNotFound},
		{"bad relation", func(d *Document) { d.Constraints[0].Relation = "<" }, apperrors.ErrCodeInvalidRelation},
		{"empty terms", func(d *Document) { d.Constraints[0].Terms = nil }, apperrors.ErrCodeInvalidModel},
		{"undeclared term", func(d *Document) { d.Constraints[0].Terms["w"] = 1 }, apperrors.ErrCodeVariableNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(textbookTOML))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(doc)
			if err := doc.Validate(); !apperrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	doc, err := Parse([]byte(textbookTOML))
	if err != nil {
		t.Fatal(err)
	}

	m, err := doc.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if m.NumVars() != 3 {
		t.Errorf("NumVars = %d, want 3", m.NumVars())
	}
	if m.Objective().Name() != "z" {
		t.Errorf("objective = %s, want z (last declared)", m.Objective().Name())
	}
	if len(m.Constraints()) != 5 {
		t.Errorf("constraints = %d, want 5", len(m.Constraints()))
	}

	// Terms come out in variable order regardless of TOML map order.
	if got, want := m.Constraints()[0].String(), "-1x + -1y + 1z == 0"; got != want {
		t.Errorf("constraint 0 = %q, want %q", got, want)
	}
}

func TestBuildExplicitObjective(t *testing.T) {
	doc, err := Parse([]byte(textbookTOML))
	if err != nil {
		t.Fatal(err)
	}
	doc.Objective = "x"

	m, err := doc.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if m.Objective().Name() != "x" {
		t.Errorf("objective = %s, want x", m.Objective().Name())
	}
	// The relative order of the remaining variables is preserved.
	vars := m.Vars()
	if vars[0].Name() != "y" || vars[1].Name() != "z" || vars[2].Name() != "x" {
		t.Errorf("variable order = %s %s %s, want y z x",
			vars[0].Name(), vars[1].Name(), vars[2].Name())
	}
}

func TestBuildSkipsZeroCoefficients(t *testing.T) {
	doc, err := Parse([]byte(textbookTOML))
	if err != nil {
		t.Fatal(err)
	}
	doc.Constraints[1].Terms["z"] = 0

	m, err := doc.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if got, want := m.Constraints()[1].String(), "-5x + 4y <= 0"; got != want {
		t.Errorf("constraint 1 = %q, want %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "textbook.toml")
	if err := os.WriteFile(path, []byte(textbookTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if doc.Name != "textbook" {
		t.Errorf("Name = %q, want textbook", doc.Name)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("../outside.toml"); !apperrors.Is(err, apperrors.ErrCodeInvalidPath) {
		t.Errorf("traversal path: err = %v, want INVALID_PATH", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !apperrors.Is(err, apperrors.ErrCodeModelNotFound) {
		t.Errorf("missing file: err = %v, want MODEL_NOT_FOUND", err)
	}
}

func TestHash(t *testing.T) {
	doc, err := Parse([]byte(textbookTOML))
	if err != nil {
		t.Fatal(err)
	}

	h1, err := doc.Hash()
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, _ := doc.Hash()
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}

	// Formatting-only differences hash identically.
	reformatted := `
name = "textbook"
variables = [ "x", "y", "z" ]
[[constraints]]
relation = "=="
rhs = 0.0
terms = { y = -1.0, x = -1.0, z = 1.0 }
[[constraints]]
terms = { y = 4.0, x = -5.0 }
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
	other, err := Parse([]byte(reformatted))
	if err != nil {
		t.Fatal(err)
	}
	h3, _ := other.Hash()
	if h3 != h1 {
		t.Error("equivalent documents should hash identically")
	}

	// Semantic differences do not.
	doc.Constraints[2].RHS = 18
	h4, _ := doc.Hash()
	if h4 == h1 {
		t.Error("different documents should hash differently")
	}
}
