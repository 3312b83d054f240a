//go:build unix

package fs

import (
	"time"

	"golang.org/x/sys/unix"
)

func statEntry(path string) (fileStat, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return fileStat{}, err
	}
	sec, nsec := st.Mtim.Unix()
	mode := st.Mode & unix.S_IFMT
	return fileStat{
		size:    st.Size,
		blocks:  st.Blocks,
		links:   uint64(st.Nlink),
		dev:     uint64(st.Dev),
		mtime:   time.Unix(sec, nsec),
		dir:     mode == unix.S_IFDIR,
		symlink: mode == unix.S_IFLNK,
	}, nil
}
