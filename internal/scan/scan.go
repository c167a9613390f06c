// Package scan resolves a CLI target — a single file or a directory — to
// the list of SL (JavaScript) source files it names.
package scan

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/typeinfer/internal/report"
)

// DefaultPattern matches every JavaScript source file under a directory,
// recursively.
const DefaultPattern = "**/*.js"

// Resolve expands target into a sorted list of source file paths: target
// itself if it's a regular file, or every file under it matching pattern if
// it's a directory.
func Resolve(target, pattern string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, report.Wrap(report.ErrIO, "cannot stat target", err)
	}

	if !info.IsDir() {
		return []string{target}, nil
	}

	if pattern == "" {
		pattern = DefaultPattern
	}

	fsys := os.DirFS(target)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, report.Wrap(report.ErrIO, "invalid glob pattern", err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(target, m))
	}
	sort.Strings(files)
	return files, nil
}
