// Package scan implements heuristic security and code quality checks over
// the Java sources of a project.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileFilter selects the Java files to scan
type FileFilter struct {
	IncludeTests bool
	// Exclude holds glob patterns matched against the absolute path, the
	// path relative to the root and the base name
	Exclude []string
}

// ParsePatterns splits a comma separated pattern list
func ParsePatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// JavaFiles walks root and returns the matching .java files in lexical
// order. Build output under target/ is always skipped.
func JavaFiles(ctx context.Context, root string, filter FileFilter) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if d.Name() == "target" && path != root {
				return filepath.SkipDir
			}
			if !filter.IncludeTests && d.Name() == "test" && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".java") || excluded(root, path, filter.Exclude) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func excluded(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	candidates := []string{path, filepath.ToSlash(rel), filepath.Base(path)}
	for _, pattern := range patterns {
		for _, candidate := range candidates {
			if ok, _ := filepath.Match(pattern, candidate); ok {
				return true
			}
		}
	}
	return false
}

// readLines returns the file split into lines without trailing newlines
func readLines(path string) ([]string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n"), content, nil
}
