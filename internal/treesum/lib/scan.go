package lib

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// FileRecord identifies one file found by Scan.
type FileRecord struct {
	AbsPath string
	// RelPath is relative to the scan root and always uses forward slashes.
	RelPath string
}

// ScanOptions controls which files Scan yields.
type ScanOptions struct {
	// Excludes are glob patterns matched against root-relative paths.
	Excludes []string
	// FollowSymlinks descends into linked directories and yields linked
	// regular files. When false, symlinks are skipped.
	FollowSymlinks bool
	// IgnoreFile enables rules from IgnoreFilename in the root.
	IgnoreFile bool
	Logger     *slog.Logger
}

type scanner struct {
	matcher *ExcludeMatcher
	ignore  *IgnoreRules
	follow  bool
	logger  *slog.Logger
	visited map[string]bool
	files   []FileRecord
}

// Scan walks rootDir recursively and returns every regular file that is not
// excluded. The order of the result is unspecified.
func Scan(rootDir string, opts ScanOptions) ([]FileRecord, error) {
	logger := loggerOrDiscard(opts.Logger)

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path for %s: %w", rootDir, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot scan %s: not a directory", absRoot)
	}

	s := &scanner{
		matcher: NewExcludeMatcher(opts.Excludes, logger),
		follow:  opts.FollowSymlinks,
		logger:  logger,
		visited: make(map[string]bool),
	}
	if opts.IgnoreFile {
		s.ignore, err = LoadIgnoreRules(absRoot, logger)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", IgnoreFilename, err)
		}
	}
	if real, err := filepath.EvalSymlinks(absRoot); err == nil {
		s.visited[real] = true
	}

	if err := s.walk(absRoot, ""); err != nil {
		return nil, err
	}
	return s.files, nil
}

func (s *scanner) excluded(relPath string, isDir bool) bool {
	return s.matcher.Match(relPath) || s.ignore.Ignored(relPath, isDir)
}

// walk scans dir, prefixing relative paths with relPrefix. Errors below dir
// are logged and the affected subtree is skipped; only a failure to read dir
// itself is returned.
func (s *scanner) walk(dir, relPrefix string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			s.logger.Warn("skipping unreadable path", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = path.Join(relPrefix, filepath.ToSlash(rel))

		if s.excluded(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case d.IsDir():
			return nil
		case d.Type().IsRegular():
			s.files = append(s.files, FileRecord{AbsPath: p, RelPath: rel})
		case d.Type()&fs.ModeSymlink != 0:
			if s.follow {
				s.followLink(p, rel)
			}
		}
		return nil
	})
}

// followLink resolves a symlink found at p. Linked regular files are yielded
// under the link's own relative path; linked directories are walked unless
// their resolved path has already been visited.
func (s *scanner) followLink(p, rel string) {
	target, err := filepath.EvalSymlinks(p)
	if err != nil {
		s.logger.Debug("skipping dangling symlink", "path", p, "error", err)
		return
	}
	info, err := os.Stat(target)
	if err != nil {
		s.logger.Debug("skipping unreadable symlink target", "path", p, "error", err)
		return
	}

	switch {
	case info.Mode().IsRegular():
		s.files = append(s.files, FileRecord{AbsPath: p, RelPath: rel})
	case info.IsDir():
		if s.visited[target] {
			s.logger.Debug("skipping symlink cycle", "path", p, "target", target)
			return
		}
		s.visited[target] = true
		if s.excluded(rel, true) {
			return
		}
		if err := s.walk(target, rel); err != nil {
			s.logger.Warn("skipping unreadable linked directory", "path", p, "error", err)
		}
	}
}
