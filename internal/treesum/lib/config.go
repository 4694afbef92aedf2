package lib

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/denormal/go-gitignore"
)

// IgnoreFilename is the name of the optional file holding gitignore-style
// rules that apply to a scan root.
const IgnoreFilename = ".treesumignore"

// SettingsFilename is the name of the optional YAML settings file looked up
// in the scanned directory.
const SettingsFilename = ".treesum.yaml"

// IgnoreRules wraps the compiled rules from an ignore file. The zero value
// and a nil pointer both ignore nothing.
type IgnoreRules struct {
	matcher gitignore.GitIgnore
}

// Ignored reports whether the root-relative path is excluded by the rules.
func (r *IgnoreRules) Ignored(relPath string, isDir bool) bool {
	if r == nil || r.matcher == nil {
		return false
	}
	match := r.matcher.Relative(filepath.ToSlash(relPath), isDir)
	if match == nil {
		return false
	}
	return match.Ignore()
}

// LoadIgnoreRules reads IgnoreFilename from rootDir. A missing file yields
// nil rules and no error.
func LoadIgnoreRules(rootDir string, logger *slog.Logger) (*IgnoreRules, error) {
	logger = loggerOrDiscard(logger)

	content, err := os.ReadFile(filepath.Join(rootDir, IgnoreFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// Windows-style separators are accepted in the file.
		trimmed = strings.ReplaceAll(trimmed, "\\", "/")
		// Directory patterns also cover everything below them.
		if strings.HasSuffix(trimmed, "/") && !strings.HasSuffix(trimmed, "**/") {
			trimmed += "**"
		}
		patterns = append(patterns, trimmed)
	}

	matcher := gitignore.New(
		strings.NewReader(strings.Join(patterns, "\n")),
		rootDir,
		func(e gitignore.Error) bool {
			logger.Debug("skipping malformed ignore rule", "file", IgnoreFilename, "error", e.Error())
			return true
		},
	)
	if matcher == nil {
		return nil, nil
	}

	logger.Debug("loaded ignore rules", "file", IgnoreFilename, "rules", len(patterns))
	return &IgnoreRules{matcher: matcher}, nil
}
