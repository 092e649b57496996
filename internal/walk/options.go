package lazywalk

import (
	"slices"

	"go.uber.org/zap"
)

// Unbounded disables the depth ceiling.
const Unbounded = -1

// SymlinkHandling defines how symbolic links found in listings are processed.
type SymlinkHandling int

const (
	SymlinkIgnore SymlinkHandling = iota // Discard links entirely
	SymlinkFollow                        // Treat links as their target
)

// DepthMode selects how MaxDepth is counted.
type DepthMode int

const (
	// DepthPerBranch counts distance from the root. Root is depth 0, its
	// directory children depth 1. A directory is descended into when its
	// depth is at most MaxDepth.
	DepthPerBranch DepthMode = iota

	// DepthGlobal counts every directory ever queued for descent, across
	// the whole traversal. A directory is queued while the count is below
	// MaxDepth.
	DepthGlobal
)

// String returns the flag spelling of the mode.
func (m DepthMode) String() string {
	if m == DepthGlobal {
		return "global"
	}
	return "branch"
}

// Options is the frozen configuration of a traversal. The zero value is not
// useful; start from New. Every method returns a modified copy, so an Options
// value can be shared and extended without affecting other holders.
type Options struct {
	Root            string
	SymlinkHandling SymlinkHandling
	MaxDepth        int // Unbounded when negative
	DepthMode       DepthMode
	DetectCycles    bool // Opt-in; the default walk has no cycle protection
	PathFilters     []PathFilter
	EntryFilters    []EntryFilter
	Logger          *zap.Logger // Receives swallowed I/O failures at debug level
}

// New returns the default configuration for walking root. Root is not
// checked here; a missing or unreadable root walks as an empty tree.
func New(root string) Options {
	return Options{
		Root:            root,
		SymlinkHandling: SymlinkIgnore,
		MaxDepth:        Unbounded,
		DepthMode:       DepthPerBranch,
	}
}

// FollowSymlinks treats links as their resolved target for both output and
// descent. There is no cycle detection unless WithCycleDetection is also set.
func (o Options) FollowSymlinks() Options {
	o.SymlinkHandling = SymlinkFollow
	return o
}

// WithMaxDepth sets the depth ceiling. A negative value removes it.
func (o Options) WithMaxDepth(n int) Options {
	if n < 0 {
		n = Unbounded
	}
	o.MaxDepth = n
	return o
}

// WithDepthMode selects how the depth ceiling is counted.
func (o Options) WithDepthMode(m DepthMode) Options {
	o.DepthMode = m
	return o
}

// WithCycleDetection stops a followed symlink from queueing a directory whose
// canonical path was already queued.
func (o Options) WithCycleDetection() Options {
	o.DetectCycles = true
	return o
}

// FilesOnly restricts output to non-directories.
func (o Options) FilesOnly() Options {
	return o.WithEntryFilter(FilesOnly{})
}

// DirectoriesOnly restricts output to directories.
func (o Options) DirectoriesOnly() Options {
	return o.WithEntryFilter(DirectoriesOnly{})
}

// WithFilter attaches a path filter.
func (o Options) WithFilter(f PathFilter) Options {
	return o.WithFilters(f)
}

// WithFilters attaches several path filters.
func (o Options) WithFilters(fs ...PathFilter) Options {
	o.PathFilters = append(slices.Clip(o.PathFilters), fs...)
	return o
}

// WithEntryFilter attaches an entry filter.
func (o Options) WithEntryFilter(f EntryFilter) Options {
	return o.WithEntryFilters(f)
}

// WithEntryFilters attaches several entry filters.
func (o Options) WithEntryFilters(fs ...EntryFilter) Options {
	o.EntryFilters = append(slices.Clip(o.EntryFilters), fs...)
	return o
}

// WithLogger sets the logger that records swallowed I/O failures.
func (o Options) WithLogger(l *zap.Logger) Options {
	o.Logger = l
	return o
}

// Walker consumes the configuration and returns a fresh traversal.
func (o Options) Walker() *Walker {
	return newWalker(o)
}
