package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeName checks a node name read from an input document.
// Dots are rejected because they separate segments in a materialized path.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "node name cannot be empty")
	}
	if strings.Contains(name, ".") {
		return New(ErrCodeInvalidInput, "node name %q contains a path separator", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a materialized path supplied by a caller.
//
// Validation rules:
//   - Path cannot be empty
//   - Path must start with "." (".app.node")
//   - No empty segments ("..", trailing ".")
//   - No control characters
//
// Length is not bounded: trees may nest arbitrarily deep.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if !strings.HasPrefix(path, ".") {
		return New(ErrCodeInvalidPath, "path must start with '.'")
	}
	for _, seg := range strings.Split(path[1:], ".") {
		if seg == "" {
			return New(ErrCodeInvalidPath, "path contains an empty segment")
		}
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
