package pathsafe

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a tree entry is excluded.
// Patterns support:
//   - Simple glob patterns matched against the base name: *.tmp, *.log
//   - Directory patterns (trailing slash) matching directories only: .git/, node_modules/
//   - Path patterns matched against the path relative to the tree root: build/*, **/testdata/*.golden
//
// A nil Matcher excludes nothing.
type Matcher struct {
	patterns []pattern
}

type pattern struct {
	glob    string
	dirOnly bool
	anchor  bool // match the relative path instead of the base name
}

// NewMatcher compiles exclude patterns, rejecting malformed ones
func NewMatcher(patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	m := &Matcher{}
	for _, raw := range patterns {
		if raw == "" {
			continue
		}

		p := pattern{glob: filepath.ToSlash(raw)}
		if strings.HasSuffix(p.glob, "/") {
			p.dirOnly = true
			p.glob = strings.TrimSuffix(p.glob, "/")
		}
		p.anchor = strings.Contains(p.glob, "/")

		if !doublestar.ValidatePattern(p.glob) {
			return nil, &PathError{Path: raw, Message: "invalid exclude pattern"}
		}
		m.patterns = append(m.patterns, p)
	}

	return m, nil
}

// Match reports whether the entry at relPath (relative to the tree root) is excluded
func (m *Matcher) Match(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}

	normalized := filepath.ToSlash(relPath)
	base := path.Base(normalized)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}

		target := base
		if p.anchor {
			target = normalized
		}
		if ok, _ := doublestar.Match(p.glob, target); ok {
			return true
		}
	}

	return false
}

// String returns the patterns for logging
func (m *Matcher) String() string {
	if m == nil {
		return "[]"
	}
	globs := make([]string, 0, len(m.patterns))
	for _, p := range m.patterns {
		if p.dirOnly {
			globs = append(globs, p.glob+"/")
			continue
		}
		globs = append(globs, p.glob)
	}
	return fmt.Sprintf("%v", globs)
}
