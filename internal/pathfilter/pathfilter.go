// Package pathfilter holds concrete predicates for the lazywalk traversal
// engine. Glob and Names prune subtrees by path; Extensions hides files from
// output without affecting descent.
package pathfilter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	lazywalk "github.com/TFMV/lazywalk/internal/walk"
)

// Glob prunes paths matching any of its doublestar patterns. Patterns are
// matched case-sensitively against the slash-separated path relative to the
// walk root. A pattern without a slash is also tried against the base name,
// so "*.tmp" prunes at every depth.
type Glob struct {
	root     string
	patterns []string
}

var _ lazywalk.PathFilter = (*Glob)(nil)

// NewGlob validates patterns and returns a filter relative to root.
func NewGlob(root string, patterns ...string) (*Glob, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}
	return &Glob{root: root, patterns: patterns}, nil
}

// Ignore reports whether path matches one of the patterns.
func (g *Glob) Ignore(path string) bool {
	rel, err := filepath.Rel(g.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)

	for _, p := range g.patterns {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
		if !strings.Contains(p, "/") && doublestar.MatchUnvalidated(p, base) {
			return true
		}
	}
	return false
}

// Names prunes any path whose base name is in the set.
type Names map[string]struct{}

var _ lazywalk.PathFilter = Names(nil)

// NewNames builds a Names filter. Empty names are skipped.
func NewNames(names ...string) Names {
	n := make(Names, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		n[name] = struct{}{}
	}
	return n
}

// Ignore reports whether the base name of path is in the set.
func (n Names) Ignore(path string) bool {
	_, ok := n[filepath.Base(path)]
	return ok
}

// Extensions hides regular files whose extension is not in the set.
// Directories and other kinds pass through untouched.
type Extensions map[string]struct{}

var _ lazywalk.EntryFilter = Extensions(nil)

// NewExtensions builds an Extensions filter. A leading dot is optional and
// matching is case-insensitive.
func NewExtensions(exts ...string) Extensions {
	e := make(Extensions, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e[ext] = struct{}{}
	}
	return e
}

// Ignore reports whether e is a file with an unlisted extension.
func (x Extensions) Ignore(e *lazywalk.Entry) bool {
	if e.Kind() != lazywalk.KindFile {
		return false
	}
	_, ok := x[strings.ToLower(filepath.Ext(e.Name()))]
	return !ok
}
