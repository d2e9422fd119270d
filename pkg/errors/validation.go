package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// variableNameRegex matches valid model variable names: a letter or
// underscore followed by letters, digits, and underscores.
var variableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateVariableName validates a variable name from a model file.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - Identifier syntax only (letters, digits, underscore; no leading digit)
//
// The modelfile loader calls this before constructing the model, so
// downstream consumers (solution maps, DOT labels, JSON exports) can rely
// on names being plain identifiers.
func ValidateVariableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidVariable, "variable name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidVariable, "variable name too long (max 64 characters)")
	}

	if !variableNameRegex.MatchString(name) {
		return New(ErrCodeInvalidVariable, "invalid variable name: %q", name)
	}

	return nil
}

// ValidateRelation validates a constraint relation string from a model file.
// Accepted relations are "==", "<=", and ">=".
func ValidateRelation(rel string) error {
	switch rel {
	case "==", "<=", ">=":
		return nil
	case "":
		return New(ErrCodeInvalidRelation, "constraint relation cannot be empty")
	default:
		return New(ErrCodeInvalidRelation, "invalid constraint relation: %q (want ==, <=, or >=)", rel)
	}
}

// ValidateTolerance validates an integrality tolerance.
// Zero is allowed and means "use the default".
func ValidateTolerance(tol float64) error {
	if tol < 0 {
		return New(ErrCodeInvalidTolerance, "tolerance cannot be negative: %g", tol)
	}
	if tol >= 0.5 {
		return New(ErrCodeInvalidTolerance, "tolerance %g is too large: every value would count as integral", tol)
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateOutputFormat validates a tree rendering format name.
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "dot", "svg", "png", "json":
		return nil
	case "":
		return New(ErrCodeInvalidFormat, "output format cannot be empty")
	default:
		return New(ErrCodeInvalidFormat, "unsupported output format: %q (want dot, svg, png, or json)", format)
	}
}
