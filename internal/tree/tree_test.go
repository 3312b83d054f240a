package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build creates /top with a sub-directory and two files.
func build(t *testing.T) (*Tree, *Node, *Node) {
	t.Helper()
	tr := New()
	tr.Reset("/top", KindFilesystem)
	top := &Node{Name: "top", Path: "/top", IsDir: true}
	tr.Attach(nil, top)
	sub := &Node{Name: "sub", Path: "/top/sub", IsDir: true}
	tr.Attach(top, sub)
	tr.Attach(sub, &Node{Name: "a.txt", Path: "/top/sub/a.txt", Size: 100})
	dot := tr.DotEntry(top)
	tr.Attach(dot, &Node{Name: "b.txt", Path: "/top/b.txt", Size: 50})
	return tr, top, sub
}

func TestAttachPropagatesTotals(t *testing.T) {
	tr, top, sub := build(t)

	assert.Equal(t, int64(150), top.TotalSize())
	assert.Equal(t, int64(100), sub.TotalSize())
	assert.Equal(t, int64(150), tr.Root().TotalSize())
	// sub, a.txt, <Files>, b.txt
	assert.Equal(t, int64(4), top.TotalItems())
	assert.Same(t, top, tr.FirstToplevel())
	assert.Equal(t, "/top", tr.URL())
	assert.Equal(t, KindFilesystem, tr.Kind())
}

func TestTreeLevel(t *testing.T) {
	tr, top, sub := build(t)
	assert.Equal(t, 0, tr.Root().TreeLevel())
	assert.Equal(t, 1, top.TreeLevel())
	assert.Equal(t, 2, sub.TreeLevel())
	assert.True(t, top.IsAncestorOf(sub))
	assert.False(t, sub.IsAncestorOf(top))
}

func TestLocate(t *testing.T) {
	tr, top, sub := build(t)

	tests := []struct {
		name       string
		path       string
		findPseudo bool
		want       string
	}{
		{"toplevel", "/top", false, "/top"},
		{"sub dir", "/top/sub", false, "/top/sub"},
		{"file in sub", "/top/sub/a.txt", false, "/top/sub/a.txt"},
		{"file in dot entry", "/top/b.txt", false, "/top/b.txt"},
		{"pseudo dir found", "/top/<Files>", true, "/top/<Files>"},
		{"pseudo dir hidden", "/top/<Files>", false, ""},
		{"missing", "/top/nope", false, ""},
		{"prefix is not parent", "/topx", false, ""},
		{"empty", "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Locate(tt.path, tt.findPseudo)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}
	_ = top
	_ = sub
}

func TestSetStateCountsUnreadable(t *testing.T) {
	tr, top, sub := build(t)

	tr.SetState(sub, ReadPermissionDenied)
	assert.Equal(t, 1, top.ErrSubDirCount())
	assert.Equal(t, 1, tr.Root().ErrSubDirCount())

	tr.SetState(sub, ReadFinished)
	assert.Equal(t, 0, top.ErrSubDirCount())
}

func TestAttachUnreadableDir(t *testing.T) {
	tr, top, _ := build(t)
	locked := &Node{Name: "locked", Path: "/top/locked", IsDir: true, state: ReadError}
	tr.Attach(top, locked)
	assert.Equal(t, 1, top.ErrSubDirCount())
}

func TestReplaceKeepsPosition(t *testing.T) {
	tr, top, sub := build(t)
	tr.SetState(sub, ReadError)

	fresh := &Node{Name: "sub", Path: "/top/sub", IsDir: true}
	tr.Replace(sub, fresh)

	children := top.Children()
	require.NotEmpty(t, children)
	assert.Same(t, fresh, children[0])
	assert.Nil(t, sub.Parent())
	assert.Equal(t, int64(50), top.TotalSize())
	assert.Equal(t, 0, top.ErrSubDirCount())
	assert.Same(t, fresh, tr.Locate("/top/sub", false))
}

func TestRemove(t *testing.T) {
	tr, top, sub := build(t)
	tr.Remove(sub)
	assert.Equal(t, int64(50), top.TotalSize())
	assert.Nil(t, tr.Locate("/top/sub/a.txt", false))
}

func TestFinalizeFoldsLonelyDotEntry(t *testing.T) {
	tr := New()
	tr.Reset("/only", KindFilesystem)
	top := &Node{Name: "only", Path: "/only", IsDir: true}
	tr.Attach(nil, top)
	dot := tr.DotEntry(top)
	tr.Attach(dot, &Node{Name: "f", Path: "/only/f", Size: 7})

	tr.Finalize(top)

	children := top.Children()
	require.Len(t, children, 1)
	assert.Equal(t, "f", children[0].Name)
	assert.Same(t, top, children[0].Parent())
	assert.Equal(t, int64(1), top.TotalItems())
	assert.Equal(t, int64(7), top.TotalSize())
}

func TestFinalizeKeepsMixedDotEntry(t *testing.T) {
	tr, top, _ := build(t)
	tr.Finalize(top)
	assert.NotNil(t, tr.Locate("/top/<Files>", true))
}

func TestWalkSkipsChildren(t *testing.T) {
	tr, top, _ := build(t)
	var seen []string
	tr.Walk(top, func(n *Node) bool {
		seen = append(seen, n.Name)
		return !n.Pseudo
	})
	assert.Equal(t, []string{"top", "sub", "a.txt", DotEntryName}, seen)
}

func TestIsPkgURL(t *testing.T) {
	assert.True(t, IsPkgURL("pkg:/"))
	assert.True(t, IsPkgURL("PKG:/lib*"))
	assert.False(t, IsPkgURL("/home/pkg:/x"))
	assert.Equal(t, "pkg:/libc6", JoinPath("pkg:/", "libc6"))
	assert.Equal(t, "pkg:/libc6/usr", JoinPath("pkg:/libc6", "usr"))
	assert.Equal(t, "/a/b", JoinPath("/a", "b"))
}
