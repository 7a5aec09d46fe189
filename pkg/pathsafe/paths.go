// Package pathsafe validates and normalizes the paths handed to the snapshot
// machinery and decides which tree entries are excluded from comparison.
package pathsafe

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePath cleans a path for the current platform
func NormalizePath(path string) string {
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// IsAbsolute checks if a path is absolute
func IsAbsolute(path string) bool {
	if runtime.GOOS == "windows" && (strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")) {
		return true
	}
	return filepath.IsAbs(path)
}

// ValidatePath normalizes an absolute path and, when base is not empty,
// requires the result to lie strictly inside base. The base itself is
// rejected as well as anything that climbs out of it.
func ValidatePath(input, base string) (string, error) {
	if input == "" {
		return "", &PathError{Path: input, Message: "path cannot be empty"}
	}
	if !IsAbsolute(input) {
		return "", &PathError{Path: input, Message: "path must be absolute"}
	}

	resolved := NormalizePath(input)

	if base != "" {
		absBase, err := filepath.Abs(base)
		if err != nil {
			return "", &PathError{Path: base, Message: "failed to resolve base path: " + err.Error()}
		}

		rel, err := filepath.Rel(absBase, resolved)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", &PathError{
				Path:    input,
				Message: "resolves outside of allowed base path \"" + base + "\"",
			}
		}
	}

	return resolved, nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path \"" + e.Path + "\": " + e.Message
}
