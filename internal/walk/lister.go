package lazywalk

import (
	"io/fs"

	"github.com/karrick/godirwalk"
)

// resolveFunc reads the lstat-level type of the current child.
type resolveFunc func() (fs.FileMode, error)

// listFunc is the signature of listDir.
type listFunc func(dir string, scratch []byte, fn func(name string, resolve resolveFunc)) error

// listDir scans dir one child at a time, in the order the filesystem returns
// them. fn receives each child's base name and a resolver for its type; the
// type is only read if fn asks for it. The directory handle is closed before
// listDir returns.
func listDir(dir string, scratch []byte, fn func(name string, resolve resolveFunc)) error {
	scanner, err := godirwalk.NewScannerWithScratchBuffer(dir, scratch)
	if err != nil {
		return err
	}
	resolve := func() (fs.FileMode, error) {
		de, err := scanner.Dirent()
		if err != nil {
			return 0, err
		}
		return de.ModeType(), nil
	}
	for scanner.Scan() {
		fn(scanner.Name(), resolve)
	}
	return scanner.Err()
}
