package vfs

import (
	"io/fs"
	"time"
)

// FileType classifies a resolved directory entry.
type FileType int

const (
	TypeNone FileType = iota
	TypeRegular
	TypeDir
	TypeSymlink
)

// String returns the wire name of the type.
func (t FileType) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDir:
		return "directory"
	case TypeSymlink:
		return "symlink"
	default:
		return "none"
	}
}

// Info is a point-in-time metadata snapshot. It is produced fresh for every
// query and never cached.
type Info struct {
	Type    FileType
	Size    int64
	ModTime time.Time
}

// classify maps lstat metadata to a FileType. Symlinks are reported as
// symlinks, not as their targets.
func classify(fi fs.FileInfo) FileType {
	mode := fi.Mode()
	switch {
	case mode.IsRegular():
		return TypeRegular
	case mode.IsDir():
		return TypeDir
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink
	default:
		return TypeNone
	}
}
