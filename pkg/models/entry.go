package models

import (
	"io/fs"
	"time"
)

// EntryKind classifies a directory entry for correspondence checks
type EntryKind string

const (
	// KindFile is a regular file
	KindFile EntryKind = "file"
	// KindDirectory is a directory
	KindDirectory EntryKind = "directory"
	// KindOther covers symlinks, devices, sockets and pipes (never traversed)
	KindOther EntryKind = "special file"
)

// KindFromMode maps file mode bits to an EntryKind without following symlinks
func KindFromMode(mode fs.FileMode) EntryKind {
	switch {
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// DirectoryEntry is a single listing result. Only Name and Kind take part in
// comparisons; timestamps and permissions are ignored.
type DirectoryEntry struct {
	Name string
	Kind EntryKind
}

// IsDir reports whether the entry is a directory
func (e DirectoryEntry) IsDir() bool {
	return e.Kind == KindDirectory
}

// FileInfo represents metadata about a path as seen by a storage backend
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	Mode    fs.FileMode
	Kind    EntryKind
}

// IsDir reports whether the path is a directory
func (i *FileInfo) IsDir() bool {
	return i.Kind == KindDirectory
}
