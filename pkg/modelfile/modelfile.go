// Package modelfile loads MILP models from TOML documents.
//
// A model file declares an ordered variable list, an optional objective
// variable, and a list of linear constraints:
//
//	name = "textbook"
//	variables = ["x", "y", "z"]
//	objective = "z"
//
//	[[constraints]]
//	terms = { z = 1.0, x = -1.0, y = -1.0 }
//	relation = "=="
//	rhs = 0.0
//
//	[[constraints]]
//	terms = { x = -5.0, y = 4.0 }
//	relation = "<="
//	rhs = 0.0
//
// When objective is omitted, the last declared variable is the objective.
// When present, the named variable is moved to the end of the variable list,
// preserving the relative order of the others.
package modelfile

import (
	"encoding/json"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/branchbound/pkg/cache"
	apperrors "github.com/matzehuels/branchbound/pkg/errors"
	"github.com/matzehuels/branchbound/pkg/mip"
)

// Document is the decoded model file, kept close to the TOML shape.
// JSON tags define the canonical encoding used for content hashing.
type Document struct {
	Name        string          `toml:"name" json:"name"`
	Variables   []string        `toml:"variables" json:"variables"`
	Objective   string          `toml:"objective,omitempty" json:"objective,omitempty"`
	Constraints []ConstraintDoc `toml:"constraints" json:"constraints"`
}

// ConstraintDoc is one constraint row: a sparse coefficient map over the
// declared variables, a relation, and a right-hand side.
type ConstraintDoc struct {
	Terms    map[string]float64 `toml:"terms" json:"terms"`
	Relation string             `toml:"relation" json:"relation"`
	RHS      float64            `toml:"rhs" json:"rhs"`
}

// Load reads and parses a model file from disk.
func Load(path string) (*Document, error) {
	if err := apperrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeModelNotFound, err, "cannot read model file %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML model document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidModel, err, "cannot parse model file")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document against the model rules: at least one
// variable, valid and unique names, a declared objective, and constraints
// referencing only declared variables.
func (d *Document) Validate() error {
	if len(d.Variables) == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidModel, "model declares no variables")
	}

	declared := make(map[string]bool, len(d.Variables))
	for _, name := range d.Variables {
		if err := apperrors.ValidateVariableName(name); err != nil {
			return err
		}
		if declared[name] {
			return apperrors.New(apperrors.ErrCodeInvalidVariable, "duplicate variable: %q", name)
		}
		declared[name] = true
	}

	if d.Objective != "" && !declared[d.Objective] {
		return apperrors.New(apperrors.ErrCodeVariableNotFound, "objective variable %q is not declared", d.Objective)
	}

	for i, c := range d.Constraints {
		if err := apperrors.ValidateRelation(c.Relation); err != nil {
			return err
		}
		if len(c.Terms) == 0 {
			return apperrors.New(apperrors.ErrCodeInvalidModel, "constraint %d has no terms", i)
		}
		for name := range c.Terms {
			if !declared[name] {
				return apperrors.New(apperrors.ErrCodeVariableNotFound, "constraint %d references undeclared variable %q", i, name)
			}
		}
	}
	return nil
}

// Build constructs the solver model from the document. Variables keep their
// declaration order except for the objective variable, which is moved to the
// end. Constraint terms are emitted in variable order so the built model is
// identical across runs regardless of map iteration order.
func (d *Document) Build() (*mip.Model, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	m := mip.NewModel()
	for _, name := range d.Variables {
		if _, err := m.NewVariable(name); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidModel, err, "cannot declare variable %q", name)
		}
	}
	if d.Objective != "" {
		obj, _ := m.VarByName(d.Objective)
		if err := m.SetObjective(obj); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidModel, err, "cannot set objective %q", d.Objective)
		}
	}

	for i, c := range d.Constraints {
		var terms []mip.Term
		for _, v := range m.Vars() {
			coeff, ok := c.Terms[v.Name()]
			if !ok || coeff == 0 {
				continue
			}
			terms = append(terms, mip.T(coeff, v))
		}
		expr := mip.Expr(terms...)

		var constraint mip.Constraint
		switch c.Relation {
		case "==":
			constraint = mip.Equal(expr, c.RHS)
		case "<=":
			constraint = mip.LessEq(expr, c.RHS)
		case ">=":
			constraint = mip.GreaterEq(expr, c.RHS)
		}
		if err := m.AddConstraint(constraint); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidModel, err, "cannot add constraint %d", i)
		}
	}
	return m, nil
}

// Hash returns the content hash of the document's canonical JSON encoding.
// Two documents describing the same model (up to TOML formatting) hash
// identically; encoding/json sorts map keys, which makes the term maps
// canonical.
func (d *Document) Hash() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, err, "cannot hash model document")
	}
	return cache.Hash(data), nil
}
