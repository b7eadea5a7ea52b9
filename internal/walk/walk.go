// Package walk discovers the files of a directory tree, honoring
// path-exclusion patterns.
package walk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// AlwaysExcluded is excluded from every walk regardless of caller patterns.
const AlwaysExcluded = ".git"

// Matcher decides whether a root-relative path is excluded.
//
// Each pattern is a regular expression anchored at the start of the
// slash-separated relative path, and a match must end on a segment
// boundary: "int" excludes "int/x.c" but not "internal/x.c".
type Matcher struct {
	patterns []*regexp.Regexp
	sources  []string
}

// NewMatcher compiles patterns for root. Absolute patterns inside root are
// made root-relative first. ".git" is always included.
func NewMatcher(root string, patterns []string) (*Matcher, error) {
	m := &Matcher{}
	all := append([]string{AlwaysExcluded}, patterns...)
	for _, p := range all {
		rel, err := relativePattern(root, p)
		if err != nil {
			return nil, err
		}
		if rel == "" {
			continue
		}
		re, err := regexp.Compile(`^(?:` + rel + `)(?:/|$)`)
		if err != nil {
			return nil, fmt.Errorf("walk: invalid exclude pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, re)
		m.sources = append(m.sources, rel)
	}
	return m, nil
}

func relativePattern(root, p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", nil
	}
	if !filepath.IsAbs(p) {
		// "./build" and "build/" both name build.
		rel := path.Clean(filepath.ToSlash(p))
		if rel == "." {
			return "", nil
		}
		return rel, nil
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("walk: exclude path %q is outside %s", p, root)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// Excluded reports whether rel (slash-separated, relative to the root) is
// excluded.
func (m *Matcher) Excluded(rel string) bool {
	for _, re := range m.patterns {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// patternSources returns the normalized pattern sources, ".git" first.
func (m *Matcher) patternSources() []string {
	return append([]string(nil), m.sources...)
}

// Files walks root recursively and returns the absolute paths of every
// regular file (or symlink to one) not excluded by m, in lexical order.
// Excluded directories are pruned. Any walk error aborts the walk.
func Files(ctx context.Context, root string, m *Matcher) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if m.Excluded(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case d.Type().IsRegular():
			paths = append(paths, path)
		case d.Type()&fs.ModeSymlink != 0:
			// Links to regular files count; links to directories are not
			// followed.
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				paths = append(paths, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
