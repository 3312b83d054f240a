package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dirstat/internal/tree"
)

func sample() *tree.Tree {
	t := tree.New()
	t.Reset("/data", tree.KindFilesystem)
	top := &tree.Node{Name: "data", Path: "/data", IsDir: true, ModTime: time.Unix(1700000000, 0)}
	t.Attach(nil, top)
	t.SetState(top, tree.ReadFinished)

	mnt := &tree.Node{Name: "mnt", Path: "/data/mnt", IsDir: true, MountPoint: true}
	t.Attach(top, mnt)
	t.SetState(mnt, tree.ReadOnDemand)

	locked := &tree.Node{Name: "locked", Path: "/data/locked", IsDir: true}
	t.Attach(top, locked)
	t.SetState(locked, tree.ReadPermissionDenied)

	dot := t.DotEntry(top)
	t.Attach(dot, &tree.Node{Name: "big.iso", Path: "/data/big.iso", Size: 4096, Blocks: 8, Links: 2})
	t.Attach(dot, &tree.Node{Name: "link", Path: "/data/link", IsSymlink: true, BrokenLink: true})
	return t
}

func TestRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.cache")
	orig := sample()
	require.NoError(t, Write(orig, file))

	url, err := Check(file)
	require.NoError(t, err)
	assert.Equal(t, "/data", url)

	got := tree.New()
	require.NoError(t, Read(context.Background(), file, got))

	assert.Equal(t, "/data", got.URL())
	assert.Equal(t, tree.KindCache, got.Kind())
	top := got.FirstToplevel()
	require.NotNil(t, top)
	assert.Equal(t, int64(4096), top.TotalSize())
	assert.Equal(t, orig.FirstToplevel().TotalItems(), top.TotalItems())
	assert.Equal(t, tree.ReadCached, top.State())
	assert.Equal(t, 1, top.ErrSubDirCount())
	assert.True(t, top.ModTime.Equal(time.Unix(1700000000, 0)))

	mnt := got.Locate("/data/mnt", false)
	require.NotNil(t, mnt)
	assert.True(t, mnt.MountPoint)
	assert.Equal(t, tree.ReadOnDemand, mnt.State())

	iso := got.Locate("/data/big.iso", false)
	require.NotNil(t, iso)
	assert.Equal(t, int64(8), iso.Blocks)
	assert.Equal(t, uint64(2), iso.Links)
	assert.True(t, iso.Parent().Pseudo)

	link := got.Locate("/data/link", false)
	require.NotNil(t, link)
	assert.True(t, link.IsSymlink)
	assert.True(t, link.BrokenLink)
}

func TestWriteReplacesExistingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.cache")
	require.NoError(t, os.WriteFile(file, []byte("junk"), 0o644))
	require.NoError(t, Write(sample(), file))
	_, err := Check(file)
	assert.NoError(t, err)
}

func TestCheckRejectsForeignFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello, not a database"), 0o644))
	_, err := Check(file)
	assert.True(t, errors.Is(err, ErrBadFormat), "got %v", err)
}

func TestWriteEmptyTree(t *testing.T) {
	assert.Error(t, Write(tree.New(), filepath.Join(t.TempDir(), "x.cache")))
}

func TestReadCancelled(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.cache")
	require.NoError(t, Write(sample(), file))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Read(ctx, file, tree.New())
	assert.Error(t, err)
}
