// Package walker enumerates auditable source files under a root,
// honoring the fixed exclusion set and .auditignore patterns.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/randalmurphy/code-auditor/internal/ignore"
	"github.com/randalmurphy/code-auditor/internal/parser"
)

// excludedDirs are never descended into, independent of ignore patterns:
// version control, dependency trees, and build output.
var excludedDirs = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".idea":        true,
	".vscode":      true,
}

// Walker traverses a directory tree and yields absolute paths of files
// with a supported grammar.
type Walker struct {
	extraPatterns []string
}

// New creates a walker. extraPatterns are exclusion globs applied in
// addition to the root's .auditignore file.
func New(extraPatterns ...string) *Walker {
	return &Walker{extraPatterns: extraPatterns}
}

// Walk calls fn for every candidate file under root in lexical order.
// A nonexistent root is fatal to the whole walk; everything per-file is
// the callback's business.
func (w *Walker) Walk(root string, fn func(path string) error) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return fmt.Errorf("walk root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("walk root %s: not a directory", absRoot)
	}

	patterns, err := ignore.Load(absRoot)
	if err != nil {
		return fmt.Errorf("load ignore file: %w", err)
	}
	patterns = append(patterns, w.extraPatterns...)

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != absRoot && excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			if path != absRoot && ignore.Matches(path, absRoot, patterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := parser.DetectLanguage(path); !ok {
			return nil
		}
		if ignore.Matches(path, absRoot, patterns) {
			return nil
		}

		return fn(path)
	})
}
