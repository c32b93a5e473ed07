// Package scanner discovers analyzable source files under workspace roots.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/augurdev/augur/pkg/config"
)

// skipDirs are directory basenames never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	"vendor":       true,
	".git":         true,
}

// sourceExtensions are the file extensions the workspace analyzer handles.
var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
}

// Scanner finds source files in a directory tree.
type Scanner struct {
	ignorePatterns []string
}

// New creates a scanner honoring the configured ignore glob patterns.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{ignorePatterns: cfg.Analyzer.IgnorePatterns}
}

// IsSourceFile reports whether the path has an analyzable extension.
// TypeScript declaration files carry no runtime code and are excluded.
func IsSourceFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".d.ts") || strings.HasSuffix(base, ".d.mts") || strings.HasSuffix(base, ".d.cts") {
		return false
	}
	return sourceExtensions[filepath.Ext(base)]
}

// isIgnored checks the workspace-relative path against the configured glob
// patterns. Invalid patterns never match.
func (s *Scanner) isIgnored(relPath string) bool {
	slashed := filepath.ToSlash(relPath)
	for _, pattern := range s.ignorePatterns {
		if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for source files. Returned paths
// are relative to root, slash-separated, and sorted for deterministic
// downstream ordering. Unreadable subtrees are skipped rather than failing
// the scan.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if rel != "." && (skipDirs[d.Name()] || s.isIgnored(rel)) {
				return fs.SkipDir
			}
			return nil
		}

		if !IsSourceFile(path) || s.isIgnored(rel) {
			return nil
		}

		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
