package lazywalk

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"testing"
)

// buildTree creates the given paths under root. Paths ending in "/" are
// directories, everything else is a file holding its own name.
func buildTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatalf("Failed to create directory: %v", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(p), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

// symlink creates a link or skips the test where links are unavailable.
func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
}

// collect drains w and returns root-relative slash paths in produced order.
func collect(t *testing.T, root string, w *Walker) []string {
	t.Helper()
	var out []string
	for e := range w.All() {
		rel, err := filepath.Rel(root, e.Path())
		if err != nil {
			t.Fatalf("Entry %q is not under root: %v", e.Path(), err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func sorted(paths []string) []string {
	out := slices.Clone(paths)
	sort.Strings(out)
	return out
}

func assertSet(t *testing.T, got []string, want ...string) {
	t.Helper()
	g, w := sorted(got), sorted(want)
	if !slices.Equal(g, w) {
		t.Errorf("Unexpected entries\n got: %v\nwant: %v", g, w)
	}
}

// scenarioTree is root/{a.txt, sub/{b.txt, nested/c.txt}}.
func scenarioTree(t *testing.T) string {
	root := t.TempDir()
	buildTree(t, root, "a.txt", "sub/b.txt", "sub/nested/c.txt")
	return root
}

func TestWalkerScenario(t *testing.T) {
	root := scenarioTree(t)
	got := collect(t, root, New(root).Walker())
	assertSet(t, got, "a.txt", "sub", "sub/b.txt", "sub/nested", "sub/nested/c.txt")
}

func TestWalkerMatchesWalkDir(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root,
		"a.txt", "b.go", "empty/",
		"x/1.txt", "x/y/2.txt", "x/y/z/3.txt", "x/y/z/deep/",
		"p/q/r/s/t.txt", "p/other.md",
	)

	var want []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		want = append(want, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDir failed: %v", err)
	}

	got := collect(t, root, New(root).Walker())
	assertSet(t, got, want...)

	seen := make(map[string]bool)
	for _, p := range got {
		if seen[p] {
			t.Errorf("Entry %q produced more than once", p)
		}
		seen[p] = true
	}
}

func TestWalkerDescendantsAreContiguous(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root,
		"top.txt",
		"p/1.txt", "p/pp/2.txt", "p/pp/ppp/3.txt",
		"q/1.txt", "q/qq/2.txt",
		"r/rr/rrr/1.txt",
	)

	got := collect(t, root, New(root).Walker())

	// The root listing is drained first, then each top-level directory is
	// expanded completely before the next one is popped.
	for _, top := range []string{"p", "q", "r"} {
		first, last := -1, -1
		for i, p := range got {
			if strings.HasPrefix(p, top+"/") {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if first < 0 {
			t.Fatalf("No descendants of %s produced: %v", top, got)
		}
		for i := first; i <= last; i++ {
			if !strings.HasPrefix(got[i], top+"/") {
				t.Errorf("Descendants of %s interleaved with %q: %v", top, got[i], got)
			}
		}
	}
	for i, p := range got[:4] {
		if strings.Contains(p, "/") {
			t.Errorf("Expected root children first, got %q at %d: %v", p, i, got)
		}
	}
}

func TestWalkerFilesOnly(t *testing.T) {
	root := scenarioTree(t)

	plain := New(root).Walker()
	collect(t, root, plain)

	w := New(root).FilesOnly().Walker()
	got := collect(t, root, w)
	assertSet(t, got, "a.txt", "sub/b.txt", "sub/nested/c.txt")

	if w.Stats().DirsQueued != plain.Stats().DirsQueued {
		t.Errorf("FilesOnly changed descent: queued %d, want %d", w.Stats().DirsQueued, plain.Stats().DirsQueued)
	}
	if w.Stats().Hidden != 2 {
		t.Errorf("Expected 2 hidden directories, got %d", w.Stats().Hidden)
	}
}

func TestWalkerDirectoriesOnly(t *testing.T) {
	root := scenarioTree(t)

	plain := New(root).Walker()
	collect(t, root, plain)

	w := New(root).DirectoriesOnly().Walker()
	got := collect(t, root, w)
	assertSet(t, got, "sub", "sub/nested")

	if w.Stats().DirsQueued != plain.Stats().DirsQueued {
		t.Errorf("DirectoriesOnly changed descent: queued %d, want %d", w.Stats().DirsQueued, plain.Stats().DirsQueued)
	}
}

func TestWalkerEntryFilterDoesNotPrune(t *testing.T) {
	root := scenarioTree(t)
	hideSub := EntryFilterFunc(func(e *Entry) bool { return e.Name() == "sub" })

	got := collect(t, root, New(root).WithEntryFilter(hideSub).Walker())
	assertSet(t, got, "a.txt", "sub/b.txt", "sub/nested", "sub/nested/c.txt")
}

func TestWalkerPathFilterPrunes(t *testing.T) {
	root := scenarioTree(t)
	var asked []string
	skipSub := PathFilterFunc(func(path string) bool {
		asked = append(asked, filepath.Base(path))
		return filepath.Base(path) == "sub"
	})

	got := collect(t, root, New(root).WithFilter(skipSub).Walker())
	assertSet(t, got, "a.txt")

	// Nothing beneath sub is ever listed, so the filter never sees it.
	for _, name := range asked {
		if name == "b.txt" || name == "nested" || name == "c.txt" {
			t.Errorf("Path filter consulted for %q inside a pruned directory", name)
		}
	}
}

func TestWalkerFiltersCombineWithOr(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "keep.txt", "drop.log", "node_modules/x.js", "src/main.go", "src/gen.pb.go")

	w := New(root).
		WithFilters(
			PathFilterFunc(func(p string) bool { return filepath.Base(p) == "node_modules" }),
			PathFilterFunc(func(p string) bool { return strings.HasSuffix(p, ".log") }),
		).
		WithEntryFilters(
			FilesOnly{},
			EntryFilterFunc(func(e *Entry) bool { return strings.HasSuffix(e.Name(), ".pb.go") }),
		).
		Walker()

	assertSet(t, collect(t, root, w), "keep.txt", "src/main.go")
}

func TestWalkerHiddenFilter(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "visible.txt", ".git/config", ".env", "dir/.cache/x", "dir/y")

	got := collect(t, root, New(root).WithFilter(Hidden{}).Walker())
	assertSet(t, got, "visible.txt", "dir", "dir/y")
}

func TestWalkerSymlinksIgnoredByDefault(t *testing.T) {
	root := scenarioTree(t)
	symlink(t, filepath.Join(root, "sub"), filepath.Join(root, "link-dir"))
	symlink(t, filepath.Join(root, "a.txt"), filepath.Join(root, "link-file"))
	symlink(t, filepath.Join(root, "missing"), filepath.Join(root, "dangling"))

	w := New(root).Walker()
	var got []string
	for e := range w.All() {
		if e.Kind() == KindSymlink || e.IsSymlink() {
			t.Errorf("Symlink %q produced with following disabled", e.Path())
		}
		rel, _ := filepath.Rel(root, e.Path())
		got = append(got, filepath.ToSlash(rel))
	}
	assertSet(t, got, "a.txt", "sub", "sub/b.txt", "sub/nested", "sub/nested/c.txt")

	if w.Stats().SymlinksDenied != 3 {
		t.Errorf("Expected 3 denied symlinks, got %d", w.Stats().SymlinksDenied)
	}
}

func TestWalkerFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	buildTree(t, root, "a.txt")
	buildTree(t, target, "t1.txt", "inner/t2.txt")
	symlink(t, target, filepath.Join(root, "link-dir"))
	symlink(t, filepath.Join(root, "a.txt"), filepath.Join(root, "link-file"))
	symlink(t, filepath.Join(root, "missing"), filepath.Join(root, "dangling"))

	w := New(root).FollowSymlinks().Walker()
	kinds := make(map[string]Kind)
	links := make(map[string]bool)
	for e := range w.All() {
		rel, _ := filepath.Rel(root, e.Path())
		kinds[filepath.ToSlash(rel)] = e.Kind()
		links[filepath.ToSlash(rel)] = e.IsSymlink()
	}

	want := map[string]Kind{
		"a.txt":                 KindFile,
		"link-file":             KindFile,
		"link-dir":              KindDir,
		"link-dir/t1.txt":       KindFile,
		"link-dir/inner":        KindDir,
		"link-dir/inner/t2.txt": KindFile,
	}
	if len(kinds) != len(want) {
		t.Errorf("Expected %d entries, got %d: %v", len(want), len(kinds), kinds)
	}
	for p, k := range want {
		if kinds[p] != k {
			t.Errorf("Entry %s: expected kind %s, got %s", p, k, kinds[p])
		}
	}
	if !links["link-dir"] || !links["link-file"] || links["a.txt"] {
		t.Errorf("IsSymlink mismatch: %v", links)
	}
	if _, ok := kinds["dangling"]; ok {
		t.Errorf("Dangling symlink should be dropped")
	}
	if w.Stats().ResolveErrors != 1 {
		t.Errorf("Expected 1 resolve error, got %d", w.Stats().ResolveErrors)
	}
}

func TestWalkerCycleDetection(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a/file.txt")
	symlink(t, root, filepath.Join(root, "a", "loop"))

	got := collect(t, root, New(root).FollowSymlinks().WithCycleDetection().Walker())
	assertSet(t, got, "a", "a/file.txt", "a/loop")
}

func TestWalkerCycleDetectionIgnoresFailedListing(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	buildTree(t, target, "file.txt")
	buildTree(t, root, "x/", "y/")
	symlink(t, target, filepath.Join(root, "x", "l"))
	symlink(t, target, filepath.Join(root, "y", "l"))

	w := New(root).FollowSymlinks().WithCycleDetection().Walker()
	broken := errors.New("listing interrupted")
	w.list = func(dir string, scratch []byte, fn func(string, resolveFunc)) error {
		err := listDir(dir, scratch, fn)
		if filepath.Base(dir) == "x" {
			return broken
		}
		return err
	}

	// x is listed in full and then fails, so its link must not count as
	// queued; y/l is the only remaining route to target.
	got := collect(t, root, w)
	assertSet(t, got, "x", "y", "y/l", "y/l/file.txt")
	if w.Stats().ListErrors != 1 {
		t.Errorf("Expected 1 list error, got %d", w.Stats().ListErrors)
	}
}

func TestWalkerMaxDepthPerBranch(t *testing.T) {
	root := scenarioTree(t)

	tests := []struct {
		name  string
		depth int
		want  []string
	}{
		{"root only", 0, []string{"a.txt", "sub"}},
		{"one level", 1, []string{"a.txt", "sub", "sub/b.txt", "sub/nested"}},
		{"two levels", 2, []string{"a.txt", "sub", "sub/b.txt", "sub/nested", "sub/nested/c.txt"}},
		{"unbounded", Unbounded, []string{"a.txt", "sub", "sub/b.txt", "sub/nested", "sub/nested/c.txt"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := collect(t, root, New(root).WithMaxDepth(tc.depth).Walker())
			assertSet(t, got, tc.want...)
		})
	}
}

func TestWalkerMaxDepthGlobal(t *testing.T) {
	root := scenarioTree(t)

	// Only one directory may ever be queued: sub. nested is surfaced as a
	// child of sub but never listed. The ceiling stops descent, not output,
	// in both depth modes, so sub/nested is expected here. Suppressing
	// directories that will not be listed would break per-branch parity.
	w := New(root).WithMaxDepth(1).WithDepthMode(DepthGlobal).Walker()
	assertSet(t, collect(t, root, w), "a.txt", "sub", "sub/b.txt", "sub/nested")
	if w.Stats().DirsQueued != 2 {
		t.Errorf("Expected root and sub queued, got %d", w.Stats().DirsQueued)
	}
}

func TestWalkerDepthModesDiffer(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "x/x1/fx.txt", "y/y1/fy.txt")

	branch := collect(t, root, New(root).WithMaxDepth(2).Walker())
	assertSet(t, branch, "x", "x/x1", "x/x1/fx.txt", "y", "y/y1", "y/y1/fy.txt")

	// The root listing alone queues x and y, using up the global budget.
	global := collect(t, root, New(root).WithMaxDepth(2).WithDepthMode(DepthGlobal).Walker())
	assertSet(t, global, "x", "x/x1", "y", "y/y1")
}

func TestWalkerMissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "does", "not", "exist")).Walker()
	if e, ok := w.Next(); ok {
		t.Fatalf("Expected empty walk, got %q", e.Path())
	}
	if _, ok := w.Next(); ok {
		t.Errorf("Exhausted walker produced an entry")
	}
	if w.Stats().ListErrors != 1 {
		t.Errorf("Expected 1 list error, got %d", w.Stats().ListErrors)
	}
}

func TestWalkerRootIsFile(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "file.txt")

	if got := collect(t, root, New(filepath.Join(root, "file.txt")).Walker()); len(got) != 0 {
		t.Errorf("Expected no entries for a file root, got %v", got)
	}
}

func TestWalkerUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := scenarioTree(t)
	locked := filepath.Join(root, "sub")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("Failed to chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	w := New(root).Walker()
	assertSet(t, collect(t, root, w), "a.txt", "sub")
	if w.Stats().ListErrors != 1 {
		t.Errorf("Expected 1 list error, got %d", w.Stats().ListErrors)
	}
}

func TestWalkerEmptyDirectory(t *testing.T) {
	w := New(t.TempDir()).Walker()
	if _, ok := w.Next(); ok {
		t.Errorf("Expected no entries")
	}
	if w.Stats().DirsListed != 1 {
		t.Errorf("Expected root listed once, got %d", w.Stats().DirsListed)
	}
}

func TestWalkerResumeAfterBreak(t *testing.T) {
	root := scenarioTree(t)
	w := New(root).Walker()

	var first []string
	for e := range w.All() {
		first = append(first, e.Path())
		break
	}
	rest := collect(t, root, w)
	if len(first)+len(rest) != 5 {
		t.Errorf("Expected 5 entries across both loops, got %d and %d", len(first), len(rest))
	}
}

func TestWalkerIndependentRunsAgree(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a", "b/c", "b/d/e", "f/g/h/i")

	one := collect(t, root, New(root).Walker())
	two := collect(t, root, New(root).Walker())
	if !slices.Equal(sorted(one), sorted(two)) {
		t.Errorf("Runs differ: %v vs %v", one, two)
	}
}

func TestEntryInfoCached(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "data.bin")

	e, ok := New(root).Walker().Next()
	if !ok {
		t.Fatal("Expected an entry")
	}
	info, err := e.Info()
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Size() != int64(len("data.bin")) {
		t.Errorf("Expected size %d, got %d", len("data.bin"), info.Size())
	}
	if err := os.Remove(e.Path()); err != nil {
		t.Fatalf("Failed to remove: %v", err)
	}
	if _, err := e.Info(); err != nil {
		t.Errorf("Expected cached info after removal, got %v", err)
	}
	if e.Kind() != KindFile || e.Type() != 0 || e.IsDir() {
		t.Errorf("Unexpected type for file entry: kind=%s type=%v", e.Kind(), e.Type())
	}
}

type named string

func (n named) Ignore(path string) bool { return filepath.Base(path) == string(n) }

func TestOptionsAreImmutable(t *testing.T) {
	base := New("root").WithFilter(named("a"))
	left := base.WithFilter(named("left"))
	right := base.WithFilter(named("right"))

	if len(base.PathFilters) != 1 {
		t.Errorf("Base options mutated: %v", base.PathFilters)
	}
	if left.PathFilters[1] != named("left") || right.PathFilters[1] != named("right") {
		t.Errorf("Derived options share storage: left=%v right=%v", left.PathFilters, right.PathFilters)
	}

	files := base.FilesOnly()
	if len(base.EntryFilters) != 0 || len(files.EntryFilters) != 1 {
		t.Errorf("FilesOnly mutated base: %v / %v", base.EntryFilters, files.EntryFilters)
	}
	if base.SymlinkHandling != SymlinkIgnore || base.FollowSymlinks().SymlinkHandling != SymlinkFollow {
		t.Errorf("FollowSymlinks did not copy")
	}
	if New("root").WithMaxDepth(-7).MaxDepth != Unbounded {
		t.Errorf("Negative depth should mean unbounded")
	}
}

func TestWalkerIgnoresOptionsChangedAfterBuild(t *testing.T) {
	root := scenarioTree(t)

	opts := New(root).WithFilter(named("none")).WithEntryFilter(EntryFilterFunc(func(*Entry) bool { return false }))
	w := opts.Walker()
	opts.PathFilters[0] = named("sub")
	opts.EntryFilters[0] = FilesOnly{}

	got := collect(t, root, w)
	assertSet(t, got, "a.txt", "sub", "sub/b.txt", "sub/nested", "sub/nested/c.txt")
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{KindFile: "file", KindDir: "dir", KindSymlink: "symlink", KindOther: "other"} {
		if k.String() != want {
			t.Errorf("Kind %d: expected %q, got %q", k, want, k.String())
		}
	}
}
