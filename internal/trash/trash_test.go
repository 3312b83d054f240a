package trash

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestUnavailable(t *testing.T) {
	var b *Bin
	if b.Available() {
		t.Error("nil bin is not available")
	}
	if _, err := b.Move("/tmp/x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v", err)
	}
	if (&Bin{}).Available() {
		t.Error("bin without a directory is not available")
	}
}

func TestVerbPhrase(t *testing.T) {
	if got := VerbPhrase(); got != "Move to "+DisplayName() {
		t.Errorf("VerbPhrase = %q", got)
	}
}

func TestRenameIntoConflicts(t *testing.T) {
	trashDir := t.TempDir()
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.Local)

	var dests []string
	for i := 0; i < 3; i++ {
		src := filepath.Join(t.TempDir(), "a.log")
		if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		dest, err := renameInto(trashDir, src, at)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("source still exists: %v", err)
		}
		dests = append(dests, filepath.Base(dest))
	}
	want := []string{"a.log", "a 2024-02-03-040506.log", "a 2024-02-03-040506-1.log"}
	for i := range want {
		if dests[i] != want[i] {
			t.Errorf("move %d: got %s, want %s", i, dests[i], want[i])
		}
	}
}

func TestCopyTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "dir")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "f.txt"), []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("sub/f.txt", filepath.Join(src, "link")); err != nil {
		t.Skipf("symlinks: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "copy")
	if err := copyTree(src, dst); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "sub", "f.txt"))
	if err != nil || string(data) != "hello" {
		t.Fatalf("copied file = %q, %v", data, err)
	}
	info, err := os.Stat(filepath.Join(dst, "sub", "f.txt"))
	if err != nil || info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, %v", info.Mode(), err)
	}
	if target, err := os.Readlink(filepath.Join(dst, "link")); err != nil || target != "sub/f.txt" {
		t.Errorf("link = %q, %v", target, err)
	}
}
