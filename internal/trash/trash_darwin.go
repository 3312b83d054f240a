//go:build darwin

package trash

import (
	"os"
	"path/filepath"
)

// defaultDir is ~/.Trash. Finder keeps no metadata files there.
func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".Trash")
}

func displayName() string {
	return "Trash"
}

func (b *Bin) ready() bool {
	info, err := os.Stat(b.Dir)
	return err == nil && info.IsDir()
}

func (b *Bin) move(absPath string) (string, error) {
	return renameInto(b.Dir, absPath, b.now())
}
