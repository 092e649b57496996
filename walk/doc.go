// Walking
//
// Configure once, then pull:
//
//	w := walk.New("/src").
//		WithMaxDepth(3).
//		WithFilter(walk.Hidden{}).
//		FilesOnly().
//		Walker()
//	for e := range w.All() {
//		fmt.Println(e.Path())
//	}
//
// Path filters prune: a directory they reject is never listed. Entry filters
// only hide: FilesOnly still descends into every directory to find files.
// Filters of each kind combine with OR.
//
// Breaking out of the loop leaves the walker usable; the next pull resumes
// where the last one stopped. Once a walker reports exhaustion it stays
// exhausted. Unreadable directories and dangling links are skipped silently
// and counted in w.Stats().
//
// Find and Watch
//
//	opts := walk.NewFindOptions()
//	opts.NamePattern = "*.{go,mod}"
//	err := walk.FindWithFormat(ctx, "/src", opts, "{base} ({size} bytes)")
//
//	wopts := walk.NewWatchOptions()
//	wopts.Recursive = true
//	wopts.Events = []walk.WatchEvent{walk.EventCreate, walk.EventModify}
//	err = walk.WatchWithExec(ctx, "/src", wopts, "echo {event}: {}")

package walk
