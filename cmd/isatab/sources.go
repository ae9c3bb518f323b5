package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// resolveSources expands patterns to source document paths.
// Supports plain files, directories (searched recursively) and glob
// patterns with recursive wildcards (**). Only files whose extension is
// listed in extensions are returned; explicitly named files are always kept.
func resolveSources(patterns, extensions []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern, extensions)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

func resolvePattern(pattern string, extensions []string) ([]string, error) {
	if !containsGlob(pattern) {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return []string{absPath}, nil
		}

		// Directory: search it recursively
		pattern = filepath.Join(absPath, "**", "*")
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		if !hasExtension(match, extensions) {
			continue
		}
		absPath, err := filepath.Abs(match)
		if err != nil {
			return nil, err
		}
		files = append(files, absPath)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no source documents match pattern: %s", pattern)
	}

	return files, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range extensions {
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
