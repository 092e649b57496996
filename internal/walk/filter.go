package lazywalk

import (
	"path/filepath"
	"strings"
)

// PathFilter decides on a raw path, before the entry's type is known.
// Returning true discards the path and everything beneath it.
type PathFilter interface {
	Ignore(path string) bool
}

// EntryFilter decides on a resolved entry. Returning true withholds the
// entry from output only; a directory is still descended into.
type EntryFilter interface {
	Ignore(e *Entry) bool
}

// PathFilterFunc adapts a function to PathFilter.
type PathFilterFunc func(path string) bool

// Ignore calls f(path).
func (f PathFilterFunc) Ignore(path string) bool { return f(path) }

// EntryFilterFunc adapts a function to EntryFilter.
type EntryFilterFunc func(e *Entry) bool

// Ignore calls f(e).
func (f EntryFilterFunc) Ignore(e *Entry) bool { return f(e) }

// pathChain ORs its members. An empty chain ignores nothing.
type pathChain []PathFilter

func (c pathChain) Ignore(path string) bool {
	for _, f := range c {
		if f.Ignore(path) {
			return true
		}
	}
	return false
}

type entryChain []EntryFilter

func (c entryChain) Ignore(e *Entry) bool {
	for _, f := range c {
		if f.Ignore(e) {
			return true
		}
	}
	return false
}

// FilesOnly hides every directory from output.
type FilesOnly struct{}

func (FilesOnly) Ignore(e *Entry) bool { return e.IsDir() }

// DirectoriesOnly hides every non-directory from output.
type DirectoriesOnly struct{}

func (DirectoriesOnly) Ignore(e *Entry) bool { return !e.IsDir() }

// Hidden prunes dot-prefixed names, other than "." and "..".
type Hidden struct{}

func (Hidden) Ignore(path string) bool { return isHidden(path) }

// isHidden checks if a file is hidden
func isHidden(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
