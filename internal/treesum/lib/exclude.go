package lib

import (
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExcludeMatcher decides whether a root-relative path is excluded by any of
// a set of glob patterns. Paths and patterns use forward slashes.
type ExcludeMatcher struct {
	patterns []string
}

// NewExcludeMatcher compiles the usable patterns. Invalid patterns are
// dropped with a debug message rather than failing the scan.
func NewExcludeMatcher(patterns []string, logger *slog.Logger) *ExcludeMatcher {
	logger = loggerOrDiscard(logger)

	m := &ExcludeMatcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = filepath.ToSlash(p)
		p = strings.TrimPrefix(p, "./")
		if !doublestar.ValidatePattern(p) {
			logger.Debug("ignoring malformed exclude pattern", "pattern", p)
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Len returns the number of usable patterns.
func (m *ExcludeMatcher) Len() int {
	return len(m.patterns)
}

// Match reports whether relPath is matched by any pattern. A pattern with no
// slash also matches against the base name, so "*.tmp" excludes files at
// any depth.
func (m *ExcludeMatcher) Match(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	base := path.Base(relPath)
	for _, pattern := range m.patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, base); err == nil && ok {
				return true
			}
		}
	}
	return false
}
