package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolvePaths expands plain paths and doublestar globs ("contracts/**/*.docx")
// into a sorted, de-duplicated list of supported document files. Directories
// are walked.
func ResolvePaths(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] && AllowedExtension(p) {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		if !containsGlob(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(pattern)
				continue
			}
			err = filepath.WalkDir(pattern, func(p string, d os.DirEntry, err error) error {
				if err == nil && !d.IsDir() {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				add(m)
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no documents match %s", strings.Join(patterns, ", "))
	}
	sort.Strings(out)
	return out, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
