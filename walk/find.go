package walk

import (
	"context"

	internal "github.com/TFMV/lazywalk/internal/walk"
)

type (
	// FindMessage holds information about an entry found during traversal
	FindMessage = internal.FindMessage

	// FindOptions defines the criteria for finding entries
	FindOptions = internal.FindOptions

	// FindHandler processes each match
	FindHandler = internal.FindHandler

	// StorageReport summarizes a traversal
	StorageReport = internal.StorageReport
	TypeStats     = internal.TypeStats
	FileInfo      = internal.FileInfo
)

// NewFindOptions creates a new FindOptions with default values
func NewFindOptions() FindOptions {
	return internal.NewFindOptions()
}

// Find pulls entries under root and passes each match to handler.
func Find(ctx context.Context, root string, opts FindOptions, handler FindHandler) error {
	return internal.Find(ctx, root, opts, handler)
}

// FindWithExec searches for entries and executes a command for each match
func FindWithExec(ctx context.Context, root string, opts FindOptions, cmdTemplate string) error {
	return internal.FindWithExec(ctx, root, opts, cmdTemplate)
}

// FindWithFormat searches for entries and formats output according to a template
func FindWithFormat(ctx context.Context, root string, opts FindOptions, formatTemplate string) error {
	return internal.FindWithFormat(ctx, root, opts, formatTemplate)
}

// NewWatchOptions creates a new WatchOptions with default values
func NewWatchOptions() WatchOptions {
	return internal.NewWatchOptions()
}

// ParseWatchEvent maps a user-facing event name to a WatchEvent.
func ParseWatchEvent(s string) (WatchEvent, error) {
	return internal.ParseWatchEvent(s)
}

// Watch monitors a directory for filesystem changes
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	return internal.Watch(ctx, root, opts, handler)
}

// WatchWithExec watches for filesystem changes and executes a command for each event
func WatchWithExec(ctx context.Context, root string, opts WatchOptions, cmdTemplate string) error {
	return internal.WatchWithExec(ctx, root, opts, cmdTemplate)
}

// WatchWithFormat watches for filesystem changes and formats output for each event
func WatchWithFormat(ctx context.Context, root string, opts WatchOptions, formatTemplate string) error {
	return internal.WatchWithFormat(ctx, root, opts, formatTemplate)
}

// Summarize drains w into a storage report keeping the top largest files.
func Summarize(w *Walker, top int) StorageReport {
	return internal.Summarize(w, top)
}
