// Package ignore implements .auditignore pattern loading and matching.
// The format follows gitignore in spirit: one glob pattern per line,
// comments and blank lines skipped, a trailing separator stripped.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the per-directory ignore file consulted at a walk root.
const FileName = ".auditignore"

// Load reads the ignore file of dir. A missing file is an empty pattern
// list, not an error.
func Load(dir string) ([]string, error) {
	path := filepath.Join(dir, FileName)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		// A trailing slash marks a directory pattern; the prefix rule in
		// Matches covers descendants, so the slash itself goes away.
		patterns = append(patterns, strings.TrimSuffix(line, "/"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// Matches reports whether path, resolved relative to root, is excluded by
// any pattern. With no patterns nothing is excluded.
func Matches(path, root string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)

	for _, pattern := range patterns {
		// Separator-free patterns match the base name only.
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		// A pattern naming a directory excludes everything beneath it.
		if strings.HasPrefix(rel, pattern+"/") {
			return true
		}
	}
	return false
}
