// Package scan resolves include globs against an input directory.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern is returned for include patterns doublestar cannot parse.
var ErrBadPattern = doublestar.ErrBadPattern

// Files expands include patterns under root to regular files. Patterns
// use doublestar syntax relative to root ("**/*.json"). The result holds
// slash-separated paths relative to root, sorted and de-duplicated.
// Hidden files and directories are skipped.
//
// Examples:
//   - "*.json" → ["a.json", "b.json"]
//   - "**/*.yaml" → ["doc.yaml", "sub/more.yaml", ...]
func Files(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || hidden(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Abs joins Files results back onto root.
func Abs(root string, rel []string) []string {
	out := make([]string, len(rel))
	for i, r := range rel {
		out[i] = filepath.Join(root, filepath.FromSlash(r))
	}
	return out
}

// Match reports whether a path relative to root matches any pattern.
// Hidden paths never match.
func Match(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	if hidden(rel) {
		return false
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// Dirs returns root and every non-hidden directory below it.
func Dirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, p)
		return nil
	})
	return dirs, err
}

func hidden(rel string) bool {
	for _, part := range strings.Split(path.Clean(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
