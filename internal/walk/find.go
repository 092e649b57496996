package lazywalk

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// FindMessage holds information about an entry found during traversal
type FindMessage struct {
	Path  string    // Full path to the entry
	Name  string    // Base name of the entry
	Dir   string    // Directory containing the entry
	Size  int64     // Size in bytes
	Time  time.Time // Modification time
	IsDir bool      // Whether the entry is a directory
	Kind  Kind      // Resolved kind
}

// FindOptions defines the criteria for finding entries
type FindOptions struct {
	// Pattern matching options
	NamePattern  string         // Match base name (doublestar syntax, NFC-normalized)
	PathPattern  string         // Match root-relative slash path (doublestar syntax)
	RegexPattern *regexp.Regexp // Match full path by regular expression

	// Time-based filtering
	OlderThan time.Duration // Entries older than this duration
	NewerThan time.Duration // Entries newer than this duration

	// Size-based filtering
	LargerSize  int64 // Entries larger than this size (bytes)
	SmallerSize int64 // Entries smaller than this size (bytes)

	// Traversal options
	MaxDepth       int          // Depth ceiling; negative means unbounded
	DepthMode      DepthMode    // How MaxDepth is counted
	FollowSymlinks bool         // Whether to follow symbolic links
	DetectCycles   bool         // Stop followed links from revisiting a directory
	IncludeHidden  bool         // Whether to include hidden entries
	IncludeDirs    bool         // Whether directories are reported as well as files
	Exclude        []PathFilter // Subtrees never descended into
	Logger         *zap.Logger  // Receives swallowed traversal failures

	// Output options
	ExecCmd     string // Command to execute for each match
	PrintFormat string // Format string for output
}

// FindHandler processes each match. Returning an error stops the search.
type FindHandler func(ctx context.Context, msg FindMessage) error

// NewFindOptions creates a new FindOptions with default values
func NewFindOptions() FindOptions {
	return FindOptions{MaxDepth: Unbounded}
}

// walkOptions translates find criteria into a traversal configuration.
func (opts FindOptions) walkOptions(root string) Options {
	w := New(root).
		WithMaxDepth(opts.MaxDepth).
		WithDepthMode(opts.DepthMode).
		WithFilters(opts.Exclude...).
		WithLogger(opts.Logger)
	if opts.FollowSymlinks {
		w = w.FollowSymlinks()
	}
	if opts.DetectCycles {
		w = w.WithCycleDetection()
	}
	if !opts.IncludeHidden {
		w = w.WithFilter(Hidden{})
	}
	if !opts.IncludeDirs {
		w = w.FilesOnly()
	}
	return w
}

// defaultFindHandler returns a default handler that prints found entries
func defaultFindHandler() FindHandler {
	return func(ctx context.Context, msg FindMessage) error {
		fmt.Println(msg.Path)
		return nil
	}
}

// execHandler returns a handler that executes a command for each found entry
func execHandler(cmdTemplate string) FindHandler {
	return func(ctx context.Context, msg FindMessage) error {
		return executeCommand(ctx, formatCommand(cmdTemplate, msg))
	}
}

// formatHandler returns a handler that formats output according to a template
func formatHandler(formatTemplate string) FindHandler {
	return func(ctx context.Context, msg FindMessage) error {
		fmt.Println(formatCommand(formatTemplate, msg))
		return nil
	}
}

// formatCommand replaces placeholders in a template with values from the message
func formatCommand(template string, msg FindMessage) string {
	size := strconv.FormatInt(msg.Size, 10)
	modified := msg.Time.Format(time.RFC3339)

	return strings.NewReplacer(
		`{""}`, strconv.Quote(msg.Path),
		`{"base"}`, strconv.Quote(msg.Name),
		`{"dir"}`, strconv.Quote(msg.Dir),
		`{"size"}`, strconv.Quote(size),
		`{"time"}`, strconv.Quote(modified),
		"{}", msg.Path,
		"{base}", msg.Name,
		"{dir}", msg.Dir,
		"{size}", size,
		"{time}", modified,
		"{kind}", msg.Kind.String(),
	).Replace(template)
}

// Format renders a template against the message. See formatCommand for the
// placeholders.
func (m FindMessage) Format(template string) string {
	return formatCommand(template, m)
}

// executeCommand runs cmdStr, printing its stdout
func executeCommand(ctx context.Context, cmdStr string) error {
	args := strings.Fields(cmdStr)
	if len(args) == 0 {
		return fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("command error: %s: %w", stderr.String(), err)
		}
		return err
	}

	if stdout.Len() > 0 {
		fmt.Print(stdout.String())
	}
	return nil
}

// nameMatch checks if a base name matches the given pattern. Both sides are
// NFC-normalized so decomposed names from some filesystems still match.
func nameMatch(pattern, name string) bool {
	matched, err := doublestar.Match(norm.NFC.String(pattern), norm.NFC.String(name))
	return err == nil && matched
}

// pathMatch checks if a root-relative path matches the given pattern
func pathMatch(pattern, root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	matched, err := doublestar.Match(pattern, filepath.ToSlash(rel))
	return err == nil && matched
}

// matchFind checks if an entry matches the find criteria
func matchFind(opts FindOptions, root string, msg FindMessage, now time.Time) bool {
	if opts.NamePattern != "" && !nameMatch(opts.NamePattern, msg.Name) {
		return false
	}
	if opts.PathPattern != "" && !pathMatch(opts.PathPattern, root, msg.Path) {
		return false
	}
	if opts.RegexPattern != nil && !opts.RegexPattern.MatchString(msg.Path) {
		return false
	}

	if opts.OlderThan > 0 && now.Sub(msg.Time) <= opts.OlderThan {
		return false
	}
	if opts.NewerThan > 0 && now.Sub(msg.Time) >= opts.NewerThan {
		return false
	}

	if opts.LargerSize > 0 && msg.Size <= opts.LargerSize {
		return false
	}
	if opts.SmallerSize > 0 && msg.Size >= opts.SmallerSize {
		return false
	}
	return true
}

// newFindMessage reads the metadata of e. It fails only if the entry has
// vanished since it was listed.
func newFindMessage(e *Entry) (FindMessage, error) {
	info, err := e.Info()
	if err != nil {
		return FindMessage{}, err
	}
	return FindMessage{
		Path:  e.Path(),
		Name:  e.Name(),
		Dir:   filepath.Dir(e.Path()),
		Size:  info.Size(),
		Time:  info.ModTime(),
		IsDir: e.IsDir(),
		Kind:  e.Kind(),
	}, nil
}

// Find pulls entries under root one at a time and passes each match to
// handler. It stops early when ctx is done or the handler fails. Traversal
// I/O failures are never returned; unreadable parts of the tree simply yield
// nothing.
func Find(ctx context.Context, root string, opts FindOptions, handler FindHandler) error {
	if handler == nil {
		handler = defaultFindHandler()
	}

	w := opts.walkOptions(root).Walker()
	now := time.Now()
	for e := range w.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := newFindMessage(e)
		if err != nil {
			continue
		}
		if !matchFind(opts, root, msg, now) {
			continue
		}
		if err := handler(ctx, msg); err != nil {
			return fmt.Errorf("path %q: %w", msg.Path, err)
		}
	}
	return nil
}

// FindWithExec searches for entries and executes a command for each match
func FindWithExec(ctx context.Context, root string, opts FindOptions, cmdTemplate string) error {
	return Find(ctx, root, opts, execHandler(cmdTemplate))
}

// FindWithFormat searches for entries and formats output according to a template
func FindWithFormat(ctx context.Context, root string, opts FindOptions, formatTemplate string) error {
	return Find(ctx, root, opts, formatHandler(formatTemplate))
}
