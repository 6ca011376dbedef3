//go:build unix

package traversal

import (
	"io/fs"
	"syscall"
)

func deviceOf(info fs.FileInfo) (uint64, bool) {
	if info == nil {
		return 0, false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return 0, false
	}
	return uint64(stat.Dev), true
}
