package fs

import (
	"time"

	"github.com/justyntemme/dirstat/internal/tree"
)

// fileStat is the part of lstat(2) the tree needs.
type fileStat struct {
	size    int64
	blocks  int64
	links   uint64
	dev     uint64
	mtime   time.Time
	dir     bool
	symlink bool
}

func (st fileStat) node(name, path, realPath string) *tree.Node {
	return &tree.Node{
		Name:    name,
		Path:    path,
		Real:    realPath,
		Size:    st.size,
		Blocks:  st.blocks,
		Links:   st.links,
		ModTime: st.mtime,
	}
}
