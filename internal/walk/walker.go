package lazywalk

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/karrick/godirwalk"
	"go.uber.org/zap"
)

// Stats counts what a Walker has done so far.
type Stats struct {
	DirsListed     int64 `json:"dirs_listed"`     // Directories successfully listed
	ListErrors     int64 `json:"list_errors"`     // Directories whose listing failed and contributed nothing
	ResolveErrors  int64 `json:"resolve_errors"`  // Children dropped because their type could not be read
	Pruned         int64 `json:"pruned"`          // Children discarded by a path filter
	SymlinksDenied int64 `json:"symlinks_denied"` // Children discarded because they are symlinks
	Hidden         int64 `json:"hidden"`          // Entries withheld by an entry filter
	DirsQueued     int64 `json:"dirs_queued"`     // Directories pushed for descent, root included
	Yielded        int64 `json:"yielded"`         // Entries returned to the caller
}

// frame is a directory awaiting expansion.
type frame struct {
	path  string
	depth int
}

// Walker is a lazy, single-owner cursor over a directory tree. Each call to
// Next lists at most as many directories as it takes to produce one entry.
//
// Directories are kept on a stack, so once a directory is expanded all of
// its descendants are produced before any directory queued earlier. Order
// within one listing is whatever the filesystem returns.
//
// Walker never reports I/O errors. An unreadable directory, including the
// root, contributes no entries; a child whose type cannot be read is
// dropped. Failures are logged at debug level and counted in Stats.
//
// A Walker must not be used from more than one goroutine, and cannot be
// rewound.
type Walker struct {
	opts    Options
	paths   pathChain
	entries entryChain
	log     *zap.Logger
	list    listFunc

	frontier []frame
	ready    []*Entry
	scratch  []byte

	queued int // directories queued for descent, root excluded
	seen   map[string]struct{}
	done   bool
	stats  Stats
}

func newWalker(o Options) *Walker {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	w := &Walker{
		opts:     o,
		paths:    pathChain(slices.Clone(o.PathFilters)),
		entries:  entryChain(slices.Clone(o.EntryFilters)),
		log:      log.With(zap.String("root", o.Root)),
		list:     listDir,
		frontier: []frame{{path: o.Root}},
	}
	w.stats.DirsQueued = 1
	if o.DetectCycles && o.SymlinkHandling == SymlinkFollow {
		w.seen = make(map[string]struct{})
		if target, err := filepath.EvalSymlinks(o.Root); err == nil {
			w.seen[target] = struct{}{}
		}
	}
	return w
}

// Next returns the next entry. It returns false once the tree is exhausted,
// and keeps returning false after that.
func (w *Walker) Next() (*Entry, bool) {
	for len(w.ready) == 0 && len(w.frontier) > 0 {
		dir := w.frontier[len(w.frontier)-1]
		w.frontier = w.frontier[:len(w.frontier)-1]
		w.expand(dir)
	}
	if len(w.ready) == 0 {
		w.exhaust()
		return nil, false
	}
	e := w.ready[len(w.ready)-1]
	w.ready[len(w.ready)-1] = nil
	w.ready = w.ready[:len(w.ready)-1]
	w.stats.Yielded++
	return e, true
}

// All returns the remaining entries as a sequence. Breaking out of the loop
// leaves the walker where it stopped.
func (w *Walker) All() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for {
			e, ok := w.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}

// Stats returns a snapshot of the walker's counters.
func (w *Walker) Stats() Stats {
	return w.stats
}

func (w *Walker) exhaust() {
	if w.done {
		return
	}
	w.done = true
	w.frontier, w.ready, w.scratch, w.seen = nil, nil, nil, nil
	w.log.Debug("walk exhausted",
		zap.Int64("dirs_listed", w.stats.DirsListed),
		zap.Int64("yielded", w.stats.Yielded),
	)
}

// expand lists dir and admits its children. Results are staged and only
// committed when the listing completes, so a directory that fails part way
// through contributes nothing.
func (w *Walker) expand(dir frame) {
	if w.scratch == nil {
		w.scratch = make([]byte, godirwalk.MinimumScratchBufferSize)
	}

	var (
		dirs    []frame
		entries []*Entry
		queued  = w.queued
		seen    map[string]struct{}
		stats   Stats
	)
	if w.seen != nil {
		seen = make(map[string]struct{})
	}
	err := w.list(dir.path, w.scratch, func(name string, resolve resolveFunc) {
		path := filepath.Join(dir.path, name)
		if w.paths.Ignore(path) {
			stats.Pruned++
			return
		}

		e, ok := w.resolve(path, resolve, &stats)
		if !ok {
			return
		}

		if e.IsDir() && w.withinDepth(dir.depth+1, queued) && w.unseen(e, seen) {
			queued++
			dirs = append(dirs, frame{path: path, depth: dir.depth + 1})
		}

		if w.entries.Ignore(e) {
			stats.Hidden++
			return
		}
		entries = append(entries, e)
	})
	if err != nil {
		w.stats.ListErrors++
		w.log.Debug("skipping unreadable directory", zap.String("path", dir.path), zap.Error(err))
		return
	}

	w.queued = queued
	for target := range seen {
		w.seen[target] = struct{}{}
	}
	w.frontier = append(w.frontier, dirs...)
	w.ready = append(w.ready, entries...)

	w.stats.DirsListed++
	w.stats.DirsQueued += int64(len(dirs))
	w.stats.Pruned += stats.Pruned
	w.stats.Hidden += stats.Hidden
	w.stats.ResolveErrors += stats.ResolveErrors
	w.stats.SymlinksDenied += stats.SymlinksDenied
}

// resolve builds the entry for path, applying the symlink policy.
func (w *Walker) resolve(path string, resolve resolveFunc, stats *Stats) (*Entry, bool) {
	typ, err := resolve()
	if err != nil {
		stats.ResolveErrors++
		w.log.Debug("dropping entry with unreadable type", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	if typ&fs.ModeSymlink == 0 {
		return newEntry(path, typ, false, nil), true
	}

	if w.opts.SymlinkHandling != SymlinkFollow {
		stats.SymlinksDenied++
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil {
		stats.ResolveErrors++
		w.log.Debug("dropping unresolvable symlink", zap.String("path", path), zap.Error(err))
		return nil, false
	}
	return newEntry(path, info.Mode(), true, info), true
}

// withinDepth applies the depth ceiling to a directory found at depth, given
// the number of directories queued so far.
func (w *Walker) withinDepth(depth, queued int) bool {
	ceiling := w.opts.MaxDepth
	if ceiling < 0 {
		return true
	}
	if w.opts.DepthMode == DepthGlobal {
		return queued < ceiling
	}
	return depth <= ceiling
}

// unseen reports whether the canonical path of a directory has not been
// queued before, either by an earlier listing or earlier in the current one.
// New paths are recorded in staged and only become permanent when the
// listing completes. It always holds unless cycle detection is enabled.
func (w *Walker) unseen(e *Entry, staged map[string]struct{}) bool {
	if w.seen == nil {
		return true
	}
	target, err := filepath.EvalSymlinks(e.Path())
	if err != nil {
		return false
	}
	_, queued := w.seen[target]
	if _, ok := staged[target]; ok || queued {
		w.log.Debug("not descending into already queued directory",
			zap.String("path", e.Path()),
			zap.String("target", target),
		)
		return false
	}
	staged[target] = struct{}{}
	return true
}
