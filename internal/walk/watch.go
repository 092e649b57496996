package lazywalk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEvent represents a filesystem event type
type WatchEvent string

// Watch event types
const (
	EventCreate WatchEvent = "create"
	EventModify WatchEvent = "modify"
	EventDelete WatchEvent = "delete"
	EventRename WatchEvent = "rename"
	EventChmod  WatchEvent = "chmod"
)

// ParseWatchEvent maps a user-facing event name to a WatchEvent.
func ParseWatchEvent(s string) (WatchEvent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "create":
		return EventCreate, nil
	case "write", "modify":
		return EventModify, nil
	case "remove", "delete":
		return EventDelete, nil
	case "rename":
		return EventRename, nil
	case "chmod":
		return EventChmod, nil
	default:
		return "", fmt.Errorf("unknown event type: %s", s)
	}
}

// WatchOptions defines options for watching filesystem changes
type WatchOptions struct {
	// Events to watch for. If empty, all events are watched.
	Events []WatchEvent

	// Whether to register every directory below the root
	Recursive bool

	// Registration follows the same traversal policy as a walk
	MaxDepth       int
	DepthMode      DepthMode
	FollowSymlinks bool
	IncludeHidden  bool
	Exclude        []PathFilter

	// Timeout duration (0 means no timeout)
	Timeout time.Duration

	Logger *zap.Logger
}

// WatchMessage contains information about a filesystem event
type WatchMessage struct {
	Path  string     // Full path to the file
	Name  string     // Base name of the file
	Dir   string     // Directory containing the file
	Size  int64      // Size in bytes (0 for deleted files)
	Time  time.Time  // Modification time
	IsDir bool       // Whether it's a directory
	Event WatchEvent // Event type
}

// WatchHandler processes watch events
type WatchHandler func(ctx context.Context, msg WatchMessage) error

// NewWatchOptions creates a new WatchOptions with default values
func NewWatchOptions() WatchOptions {
	return WatchOptions{MaxDepth: Unbounded}
}

// defaultWatchHandler returns a default handler that prints events
func defaultWatchHandler() WatchHandler {
	return func(ctx context.Context, msg WatchMessage) error {
		fmt.Printf("%s: %s\n", strings.ToUpper(string(msg.Event)), msg.Path)
		return nil
	}
}

// registrationOptions is the directories-only walk used to find directories
// to register below a directory that may itself hold budget more levels.
// Every directory it yields is one a walk of the watched root would list.
func (opts WatchOptions) registrationOptions(dir string, budget int) Options {
	ceiling := Unbounded
	if budget > 0 {
		ceiling = budget - 1
	}
	w := New(dir).
		DirectoriesOnly().
		WithMaxDepth(ceiling).
		WithFilters(opts.Exclude...).
		WithLogger(opts.Logger)
	if opts.FollowSymlinks {
		w = w.FollowSymlinks().WithCycleDetection()
	}
	if !opts.IncludeHidden {
		w = w.WithFilter(Hidden{})
	}
	return w
}

// ignored reports whether an event path is excluded by the registration policy.
func (opts WatchOptions) ignored(path string) bool {
	if !opts.IncludeHidden && isHidden(path) {
		return true
	}
	return pathChain(opts.Exclude).Ignore(path)
}

// registrar tracks the directories registered below root so that the depth
// ceiling holds for directories created while watching.
type registrar struct {
	watcher *fsnotify.Watcher
	root    string
	opts    WatchOptions
	log     *zap.Logger
	count   int
}

// depthOf returns the depth of dir below root, where root is depth 0.
func (r *registrar) depthOf(dir string) (int, bool) {
	rel, err := filepath.Rel(r.root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return 0, false
	}
	if rel == "." {
		return 0, true
	}
	return strings.Count(rel, string(filepath.Separator)) + 1, true
}

// full reports whether a global ceiling has been used up.
func (r *registrar) full() bool {
	return r.opts.DepthMode == DepthGlobal && r.opts.MaxDepth >= 0 && r.count >= r.opts.MaxDepth
}

// budget is the number of levels that may be registered below a directory at
// depth. Under DepthGlobal the limit is on the total count instead.
func (r *registrar) budget(depth int) int {
	if r.opts.MaxDepth < 0 || r.opts.DepthMode == DepthGlobal {
		return Unbounded
	}
	return r.opts.MaxDepth - depth
}

func (r *registrar) add(dir string) bool {
	if err := r.watcher.Add(dir); err != nil {
		r.log.Warn("error watching directory", zap.String("path", dir), zap.Error(err))
		return false
	}
	r.count++
	return true
}

// registerBelow registers the directories under dir, which sits at depth.
func (r *registrar) registerBelow(dir string, depth int) {
	budget := r.budget(depth)
	if budget == 0 {
		return
	}
	for e := range r.opts.registrationOptions(dir, budget).Walker().All() {
		if r.full() {
			return
		}
		r.add(e.Path())
	}
}

// registerNew registers a directory created while watching, along with
// anything already inside it, if the depth policy admits it.
func (r *registrar) registerNew(dir string) {
	depth, ok := r.depthOf(dir)
	if !ok || depth == 0 {
		return
	}
	if r.opts.MaxDepth >= 0 && r.opts.DepthMode == DepthPerBranch && depth > r.opts.MaxDepth {
		r.log.Debug("not watching directory beyond depth ceiling", zap.String("path", dir), zap.Int("depth", depth))
		return
	}
	if r.full() {
		r.log.Debug("not watching directory, registration limit reached", zap.String("path", dir))
		return
	}
	if r.add(dir) {
		r.registerBelow(dir, depth)
	}
}

// admits reports whether a created path should be considered for
// registration, applying the symlink policy.
func (opts WatchOptions) admits(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeSymlink != 0 {
		if !opts.FollowSymlinks {
			return false
		}
		if info, err = os.Stat(path); err != nil {
			return false
		}
	}
	return info.IsDir()
}

func eventMask(events []WatchEvent) map[fsnotify.Op]bool {
	mask := make(map[fsnotify.Op]bool)
	if len(events) == 0 {
		events = []WatchEvent{EventCreate, EventModify, EventDelete, EventRename, EventChmod}
	}
	for _, e := range events {
		switch e {
		case EventCreate:
			mask[fsnotify.Create] = true
		case EventModify:
			mask[fsnotify.Write] = true
		case EventDelete:
			mask[fsnotify.Remove] = true
		case EventRename:
			mask[fsnotify.Rename] = true
		case EventChmod:
			mask[fsnotify.Chmod] = true
		}
	}
	return mask
}

// classify picks the reported event type for an fsnotify event.
func classify(event fsnotify.Event, mask map[fsnotify.Op]bool) (WatchEvent, bool) {
	switch {
	case event.Has(fsnotify.Create) && mask[fsnotify.Create]:
		return EventCreate, true
	case event.Has(fsnotify.Write) && mask[fsnotify.Write]:
		return EventModify, true
	case event.Has(fsnotify.Remove) && mask[fsnotify.Remove]:
		return EventDelete, true
	case event.Has(fsnotify.Rename) && mask[fsnotify.Rename]:
		return EventRename, true
	case event.Has(fsnotify.Chmod) && mask[fsnotify.Chmod]:
		return EventChmod, true
	}
	return "", false
}

// Watch monitors a directory for filesystem changes until ctx is done or the
// timeout elapses. When recursive, directories are registered by a
// directories-only walk, so exclusions and the symlink policy apply to
// registration exactly as they do to a listing. Under DepthPerBranch only
// directories at depth MaxDepth or less are watched, including ones created
// later. Under DepthGlobal MaxDepth caps the total number of directories
// registered below root over the life of the watch.
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	if handler == nil {
		handler = defaultWatchHandler()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("error watching directory %s: %w", root, err)
	}
	reg := &registrar{watcher: watcher, root: root, opts: opts, log: log}
	if opts.Recursive {
		reg.registerBelow(root, 0)
		log.Debug("registered directories", zap.String("root", root), zap.Int("count", reg.count+1))
	}

	mask := eventMask(opts.Events)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if opts.ignored(event.Name) {
					continue
				}

				var info os.FileInfo
				if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					var statErr error
					info, statErr = os.Stat(event.Name)
					if statErr != nil {
						log.Debug("error getting file info", zap.String("path", event.Name), zap.Error(statErr))
						continue
					}
					if opts.Recursive && event.Has(fsnotify.Create) && opts.admits(event.Name) {
						reg.registerNew(event.Name)
					}
				}

				kind, ok := classify(event, mask)
				if !ok {
					continue
				}

				msg := WatchMessage{
					Path:  event.Name,
					Name:  filepath.Base(event.Name),
					Dir:   filepath.Dir(event.Name),
					Time:  time.Now(),
					Event: kind,
				}
				if info != nil {
					msg.Size = info.Size()
					msg.IsDir = info.IsDir()
					msg.Time = info.ModTime()
				}

				if err := handler(ctx, msg); err != nil {
					log.Error("error handling event", zap.String("path", event.Name), zap.Error(err))
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("watcher error", zap.Error(err))

			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	wg.Wait()
	return nil
}

// Format renders a template with the find placeholders plus {event}.
func (m WatchMessage) Format(template string) string {
	kind := KindFile
	if m.IsDir {
		kind = KindDir
	}
	return FindMessage{
		Path:  m.Path,
		Name:  m.Name,
		Dir:   m.Dir,
		Size:  m.Size,
		Time:  m.Time,
		IsDir: m.IsDir,
		Kind:  kind,
	}.Format(strings.ReplaceAll(template, "{event}", string(m.Event)))
}

// WatchWithFormat watches for filesystem changes and formats output for each event
func WatchWithFormat(ctx context.Context, root string, opts WatchOptions, formatTemplate string) error {
	return Watch(ctx, root, opts, func(ctx context.Context, msg WatchMessage) error {
		fmt.Println(msg.Format(formatTemplate))
		return nil
	})
}

// WatchWithExec watches for filesystem changes and executes a command for each event
func WatchWithExec(ctx context.Context, root string, opts WatchOptions, cmdTemplate string) error {
	return Watch(ctx, root, opts, func(ctx context.Context, msg WatchMessage) error {
		return executeCommand(ctx, msg.Format(cmdTemplate))
	})
}
