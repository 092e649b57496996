package lazywalk

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Kind is the resolved type of an Entry.
type Kind int

const (
	KindFile    Kind = iota // Regular file
	KindDir                 // Directory
	KindSymlink             // Symbolic link (only seen through Kind when the link itself is reported)
	KindOther               // Devices, sockets, pipes and the like
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// Entry is a single member of a listed directory. When symlinks are followed,
// an entry that is itself a link carries the type of its target.
//
// Entry implements fs.DirEntry.
type Entry struct {
	path    string
	typ     fs.FileMode // type bits only
	symlink bool
	info    fs.FileInfo
}

func newEntry(path string, typ fs.FileMode, symlink bool, info fs.FileInfo) *Entry {
	return &Entry{path: path, typ: typ.Type(), symlink: symlink, info: info}
}

// Path returns the path of the entry, rooted at the walker's root.
func (e *Entry) Path() string { return e.path }

// Name returns the base name of the entry.
func (e *Entry) Name() string { return filepath.Base(e.path) }

// Kind returns the resolved kind of the entry.
func (e *Entry) Kind() Kind { return kindOf(e.typ) }

// IsDir reports whether the entry resolves to a directory.
func (e *Entry) IsDir() bool { return e.typ.IsDir() }

// Type returns the resolved type bits of the entry.
func (e *Entry) Type() fs.FileMode { return e.typ }

// IsSymlink reports whether the entry itself is a symbolic link, regardless
// of what it resolved to.
func (e *Entry) IsSymlink() bool { return e.symlink }

// Info returns the metadata of the entry. For followed symlinks this is the
// metadata of the target. The result is cached after the first successful call.
func (e *Entry) Info() (fs.FileInfo, error) {
	if e.info != nil {
		return e.info, nil
	}
	var (
		info fs.FileInfo
		err  error
	)
	if e.symlink {
		info, err = os.Stat(e.path)
	} else {
		info, err = os.Lstat(e.path)
	}
	if err != nil {
		return nil, err
	}
	e.info = info
	return info, nil
}

// String returns the entry path.
func (e *Entry) String() string { return e.path }

var _ fs.DirEntry = (*Entry)(nil)
