// Package trash moves files to the desktop trash instead of deleting them.
// Linux uses the freedesktop.org layout, macOS ~/.Trash and Windows the
// Recycle Bin.
package trash

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/justyntemme/dirstat/internal/debug"
)

// ErrUnavailable is returned when there is no usable trash directory.
var ErrUnavailable = errors.New("trash is not available on this system")

// Bin is one trash directory.
type Bin struct {
	Dir string
	Now func() time.Time
}

// Default returns the user's trash, or nil when the platform has none.
func Default() *Bin {
	dir := defaultDir()
	if dir == "" {
		return nil
	}
	return &Bin{Dir: dir, Now: time.Now}
}

func (b *Bin) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Available reports whether files can be moved into the bin.
func (b *Bin) Available() bool {
	return b != nil && b.Dir != "" && b.ready()
}

// Move moves path into the bin and returns its new location.
func (b *Bin) Move(path string) (string, error) {
	if !b.Available() {
		return "", ErrUnavailable
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(absPath); err != nil {
		return "", err
	}
	dest, err := b.move(absPath)
	if err != nil {
		return "", err
	}
	debug.Log(debug.TRASH, "trashed %s as %s", absPath, dest)
	return dest, nil
}

// Outcome is the result of trashing one path.
type Outcome struct {
	Path      string
	TrashPath string
	Err       error
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("FAILED  %s: %v", o.Path, o.Err)
	}
	return fmt.Sprintf("Moved   %s", o.Path)
}

// MoveAll trashes every path and reports one Outcome per path. It keeps
// going after a failure.
func (b *Bin) MoveAll(paths []string) []Outcome {
	out := make([]Outcome, 0, len(paths))
	for _, p := range paths {
		dest, err := b.Move(p)
		out = append(out, Outcome{Path: p, TrashPath: dest, Err: err})
	}
	return out
}

// DisplayName is the user visible name of the trash.
func DisplayName() string {
	return displayName()
}

// VerbPhrase is the label of the move-to-trash command.
func VerbPhrase() string {
	return "Move to " + DisplayName()
}

// renameInto moves src into dir without metadata. A name that is taken gets
// the deletion time appended, then a counter. Moves across filesystems fall
// back to copy and remove.
func renameInto(dir, src string, at time.Time) (string, error) {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	dest := filepath.Join(dir, base)
	for i := 0; ; i++ {
		if _, err := os.Lstat(dest); errors.Is(err, os.ErrNotExist) {
			break
		}
		name := fmt.Sprintf("%s %s%s", stem, at.Format("2006-01-02-150405"), ext)
		if i > 0 {
			name = fmt.Sprintf("%s %s-%d%s", stem, at.Format("2006-01-02-150405"), i, ext)
		}
		dest = filepath.Join(dir, name)
	}

	err := os.Rename(src, dest)
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyTree(src, dest); err != nil {
			os.RemoveAll(dest)
			return "", fmt.Errorf("cannot copy %s to trash: %w", src, err)
		}
		err = os.RemoveAll(src)
	}
	if err != nil {
		return "", fmt.Errorf("cannot move %s to trash: %w", src, err)
	}
	return dest, nil
}

// copyTree copies a file, symlink or directory tree, keeping modes.
func copyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
