//go:build !unix

package fs

import (
	"os"
)

// Without device numbers no directory is reported as a mount point.
func statEntry(path string) (fileStat, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return fileStat{}, err
	}
	return fileStat{
		size:    fi.Size(),
		blocks:  (fi.Size() + 511) / 512,
		links:   1,
		mtime:   fi.ModTime(),
		dir:     fi.IsDir(),
		symlink: fi.Mode()&os.ModeSymlink != 0,
	}, nil
}
