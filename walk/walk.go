// Package walk is the public face of the lazywalk traversal engine.
//
// A traversal is configured with an immutable Options value and consumed by
// pulling entries from a Walker one at a time. Nothing is read from disk
// until the first pull, and each pull lists at most as many directories as it
// needs to produce one entry.
package walk

import (
	internal "github.com/TFMV/lazywalk/internal/walk"
	"go.uber.org/zap"
)

// Re-export the engine types
type (
	// Options is the frozen configuration of a traversal.
	Options = internal.Options

	// Walker produces entries on demand.
	Walker = internal.Walker

	// Entry is one yielded filesystem object.
	Entry = internal.Entry

	// Kind is the resolved type of an entry.
	Kind = internal.Kind

	// Stats counts what a walker did, including the failures it swallowed.
	Stats = internal.Stats

	// SymlinkHandling defines how symbolic links are processed.
	SymlinkHandling = internal.SymlinkHandling

	// DepthMode selects how the depth ceiling is counted.
	DepthMode = internal.DepthMode

	// PathFilter prunes by raw path before the entry type is known.
	PathFilter = internal.PathFilter

	// EntryFilter hides resolved entries from output without pruning.
	EntryFilter = internal.EntryFilter

	PathFilterFunc  = internal.PathFilterFunc
	EntryFilterFunc = internal.EntryFilterFunc
	FilesOnly       = internal.FilesOnly
	DirectoriesOnly = internal.DirectoriesOnly
	Hidden          = internal.Hidden

	// LogLevel defines the verbosity of logging.
	LogLevel = internal.LogLevel

	// Re-export watch types
	WatchEvent   = internal.WatchEvent
	WatchOptions = internal.WatchOptions
	WatchMessage = internal.WatchMessage
	WatchHandler = internal.WatchHandler
)

// Re-export all the constants
const (
	Unbounded = internal.Unbounded

	KindFile    = internal.KindFile
	KindDir     = internal.KindDir
	KindSymlink = internal.KindSymlink
	KindOther   = internal.KindOther

	// Symlink handling modes
	SymlinkIgnore = internal.SymlinkIgnore
	SymlinkFollow = internal.SymlinkFollow

	// Depth modes
	DepthPerBranch = internal.DepthPerBranch
	DepthGlobal    = internal.DepthGlobal

	// Log levels
	LogLevelError = internal.LogLevelError
	LogLevelWarn  = internal.LogLevelWarn
	LogLevelInfo  = internal.LogLevelInfo
	LogLevelDebug = internal.LogLevelDebug

	// Watch event constants
	EventCreate = internal.EventCreate
	EventModify = internal.EventModify
	EventDelete = internal.EventDelete
	EventRename = internal.EventRename
	EventChmod  = internal.EventChmod
)

// New returns the default configuration for walking root: symlinks ignored,
// no depth ceiling, no filters.
func New(root string) Options {
	return internal.New(root)
}

// NewLogger creates a zap logger with the specified log level.
func NewLogger(level LogLevel) (*zap.Logger, error) {
	return internal.NewLogger(level)
}
