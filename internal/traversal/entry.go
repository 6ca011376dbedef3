// Package traversal enumerates the entries below a root path according to a
// policy of depth bounds, link handling, ordering, and pruning.
package traversal

import (
	"io/fs"
)

// Entry describes one path produced by a Provider.
type Entry struct {
	// Path is the cleaned path of the entry, rooted at the walk root.
	Path string
	// Name is the final element of Path.
	Name string
	// Depth is the distance from the walk root, which has depth zero.
	Depth int
	// Mode carries the type bits of the entry. For a followed link these
	// describe the link target.
	Mode fs.FileMode
	// IsSymlink reports whether Path itself is a symbolic link.
	IsSymlink bool
	// LinkTarget holds the raw link text for symbolic links when readable.
	LinkTarget string
	// Info is the file information backing Mode. It may be nil for entries
	// that only carry an error.
	Info fs.FileInfo
}

// IsDir reports whether the entry is (or, for a followed link, points to) a directory.
func (entry *Entry) IsDir() bool {
	return entry.Mode.IsDir()
}

// Type returns the type bits of Mode.
func (entry *Entry) Type() fs.FileMode {
	return entry.Mode.Type()
}
