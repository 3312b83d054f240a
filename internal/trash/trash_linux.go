//go:build linux

package trash

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const infoDateLayout = "2006-01-02T15:04:05"

// defaultDir is $XDG_DATA_HOME/Trash, falling back to ~/.local/share/Trash.
func defaultDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "Trash")
}

func displayName() string {
	return "Trash"
}

func (b *Bin) filesDir() string { return filepath.Join(b.Dir, "files") }
func (b *Bin) infoDir() string  { return filepath.Join(b.Dir, "info") }

func (b *Bin) ready() bool {
	return os.MkdirAll(b.filesDir(), 0o700) == nil && os.MkdirAll(b.infoDir(), 0o700) == nil
}

// move follows the freedesktop.org trash layout: the file goes to files/,
// and info/<name>.trashinfo records where it came from. Creating the info
// file with O_EXCL reserves the name.
func (b *Bin) move(absPath string) (string, error) {
	baseName := filepath.Base(absPath)
	ext := filepath.Ext(baseName)
	stem := strings.TrimSuffix(baseName, ext)
	destName := baseName
	var infoFile string
	for counter := 1; ; counter++ {
		infoFile = filepath.Join(b.infoDir(), destName+".trashinfo")
		f, err := os.OpenFile(infoFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			_, err = fmt.Fprintf(f, "[Trash Info]\nPath=%s\nDeletionDate=%s\n",
				escapePath(absPath), b.now().Format(infoDateLayout))
			f.Close()
			if err != nil {
				os.Remove(infoFile)
				return "", fmt.Errorf("cannot write trashinfo file: %w", err)
			}
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("cannot create trashinfo file: %w", err)
		}
		destName = fmt.Sprintf("%s.%d%s", stem, counter, ext)
	}

	destPath := filepath.Join(b.filesDir(), destName)
	if err := os.Rename(absPath, destPath); err != nil {
		os.Remove(infoFile)
		return "", fmt.Errorf("cannot move %s to trash: %w", absPath, err)
	}
	return destPath, nil
}

// escapePath percent-encodes path but keeps the slashes.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
