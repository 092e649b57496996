package walk_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/TFMV/lazywalk/walk"
)

func ExampleOptions_Walker() {
	root, err := os.MkdirTemp("", "lazywalk-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(root)

	for _, p := range []string{"a/x.txt", "a/b/y.txt", ".git/HEAD", "z.txt"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		os.MkdirAll(filepath.Dir(full), 0755)
		os.WriteFile(full, nil, 0644)
	}

	w := walk.New(root).
		WithFilter(walk.Hidden{}).
		FilesOnly().
		Walker()

	var names []string
	for e := range w.All() {
		rel, _ := filepath.Rel(root, e.Path())
		names = append(names, filepath.ToSlash(rel))
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Println(n)
	}
	fmt.Println("listed:", w.Stats().DirsListed)

	// Output:
	// a/b/y.txt
	// a/x.txt
	// z.txt
	// listed: 3
}
