//go:build !unix

package traversal

import "io/fs"

// deviceOf reports no device on platforms without syscall.Stat_t, which
// makes SameFileSystem a no-op there.
func deviceOf(info fs.FileInfo) (uint64, bool) {
	return 0, false
}
