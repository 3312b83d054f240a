// Package tree holds the in-memory result of a scan: a tree of Nodes below an
// invisible super-root, shared between the scan engine (writer) and the UI
// (readers). All structural mutations go through Tree methods which hold the
// tree's mutex; identity fields of a Node never change once it is attached.
package tree

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RootKind identifies what kind of root a tree was built from.
type RootKind int

const (
	KindFilesystem RootKind = iota
	KindPackageSet
	KindCache
)

func (k RootKind) String() string {
	switch k {
	case KindPackageSet:
		return "packages"
	case KindCache:
		return "cache"
	default:
		return "filesystem"
	}
}

// ReadState is the read status of a directory node.
type ReadState int

const (
	ReadQueued ReadState = iota
	ReadReading
	ReadFinished
	ReadOnDemand // excluded, or a mount point that was not crossed
	ReadCached
	ReadPermissionDenied
	ReadError
	ReadAborted
)

func (s ReadState) String() string {
	switch s {
	case ReadQueued:
		return "queued"
	case ReadReading:
		return "reading"
	case ReadFinished:
		return "finished"
	case ReadOnDemand:
		return "on demand"
	case ReadCached:
		return "cached"
	case ReadPermissionDenied:
		return "permission denied"
	case ReadError:
		return "read error"
	case ReadAborted:
		return "aborted"
	}
	return "unknown"
}

// IsError reports whether the state counts as an unreadable directory.
func (s ReadState) IsError() bool {
	return s == ReadPermissionDenied || s == ReadError
}

// DotEntryName is the name of the pseudo directory that groups the files of
// a directory that also has sub-directories.
const DotEntryName = "<Files>"

// PkgURLPrefix marks a package view URL, e.g. "pkg:/" or "pkg:/lib*".
const PkgURLPrefix = "pkg:/"

// IsPkgURL reports whether url selects a package view.
func IsPkgURL(url string) bool {
	return strings.HasPrefix(strings.ToLower(url), PkgURLPrefix)
}

// Node is one file, directory, pseudo directory or package in a Tree.
type Node struct {
	Name    string
	Path    string // stable identity, used by Locate
	Real    string // filesystem path when it differs from Path (package view)
	IsDir   bool
	Size    int64 // own apparent size
	Blocks  int64 // allocated 512-byte blocks
	Links   uint64
	ModTime time.Time

	IsSymlink  bool
	BrokenLink bool
	MountPoint bool
	Excluded   bool
	Pseudo     bool
	Pkg        bool

	tree       *Tree
	parent     *Node
	children   []*Node
	totalSize  int64
	totalItems int64
	state      ReadState
	errSubDirs int
}

// FSPath returns the path of the node on disk.
func (n *Node) FSPath() string {
	if n.Real != "" {
		return n.Real
	}
	return n.Path
}

// Parent returns the parent node, or nil for the super-root and for nodes
// that were detached by Replace, Remove or Finalize.
func (n *Node) Parent() *Node {
	if n.tree == nil {
		return n.parent
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.parent
}

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	if n.tree == nil {
		return nil
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	if n.tree == nil {
		return false
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return len(n.children) > 0
}

// TotalSize is the own size plus the total size of all descendants.
func (n *Node) TotalSize() int64 {
	if n.tree == nil {
		return n.Size
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.totalSize
}

// TotalItems is the number of descendants.
func (n *Node) TotalItems() int64 {
	if n.tree == nil {
		return 0
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.totalItems
}

// State returns the read state of the node.
func (n *Node) State() ReadState {
	if n.tree == nil {
		return n.state
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.state
}

// ErrSubDirCount is the number of unreadable directories below this node.
func (n *Node) ErrSubDirCount() int {
	if n.tree == nil {
		return 0
	}
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.errSubDirs
}

// TreeLevel is the distance from the super-root: 0 for the super-root, 1 for
// the toplevel item.
func (n *Node) TreeLevel() int {
	if n.tree != nil {
		n.tree.mu.RLock()
		defer n.tree.mu.RUnlock()
	}
	level := 0
	for p := n.parent; p != nil; p = p.parent {
		level++
	}
	return level
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	if other.tree != nil {
		other.tree.mu.RLock()
		defer other.tree.mu.RUnlock()
	}
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Path
}

// Tree is a scanned directory hierarchy.
type Tree struct {
	mu   sync.RWMutex
	root *Node
	url  string
	kind RootKind
}

// New creates an empty tree.
func New() *Tree {
	t := &Tree{}
	t.root = &Node{tree: t, IsDir: true, state: ReadFinished}
	return t
}

// Reset discards all nodes and prepares the tree for a new root.
func (t *Tree) Reset(url string, kind RootKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = &Node{tree: t, IsDir: true, state: ReadFinished}
	t.url = url
	t.kind = kind
}

// Root returns the invisible super-root.
func (t *Tree) Root() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// FirstToplevel returns the visible root item, or nil for an empty tree.
func (t *Tree) FirstToplevel() *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.root.children) == 0 {
		return nil
	}
	return t.root.children[0]
}

// URL returns the URL the tree was opened with.
func (t *Tree) URL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.url
}

// Kind returns what the tree was built from.
func (t *Tree) Kind() RootKind {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.kind
}

// Attach appends a fresh node below parent and propagates its size up the
// chain. A nil parent attaches to the super-root.
func (t *Tree) Attach(parent, child *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if parent == nil {
		parent = t.root
	}
	t.attachLocked(parent, child)
}

func (t *Tree) attachLocked(parent, child *Node) {
	child.tree = t
	child.parent = parent
	child.children = nil
	child.totalSize = child.Size
	child.totalItems = 0
	if child.state == ReadQueued && !child.IsDir {
		child.state = ReadFinished
	}
	parent.children = append(parent.children, child)

	errDelta := 0
	if child.state.IsError() {
		errDelta = 1
	}
	for p := parent; p != nil; p = p.parent {
		p.totalSize += child.Size
		p.totalItems++
		p.errSubDirs += errDelta
	}
}

// SetState updates the read state of a node, keeping the ancestors'
// unreadable directory counts in sync.
func (t *Tree) SetState(n *Node, state ReadState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n.state == state {
		return
	}
	delta := 0
	if n.state.IsError() {
		delta--
	}
	if state.IsError() {
		delta++
	}
	n.state = state
	if delta == 0 {
		return
	}
	for p := n.parent; p != nil; p = p.parent {
		p.errSubDirs += delta
	}
}

// Replace swaps old for a fresh, childless node at the same position. It is
// used when a subtree is read again; all pointers into the old subtree become
// stale.
func (t *Tree) Replace(old, fresh *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent := old.parent
	if parent == nil {
		return
	}
	idx := -1
	for i, c := range parent.children {
		if c == old {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	removedErr := old.errSubDirs
	if old.state.IsError() {
		removedErr++
	}
	for p := parent; p != nil; p = p.parent {
		p.totalSize -= old.totalSize
		p.totalItems -= old.totalItems + 1
		p.errSubDirs -= removedErr
	}
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)
	old.parent = nil

	t.attachLocked(parent, fresh)
	// keep the original position
	last := len(parent.children) - 1
	copy(parent.children[idx+1:], parent.children[idx:last])
	parent.children[idx] = fresh
}

// Remove detaches n and its subtree.
func (t *Tree) Remove(n *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	parent := n.parent
	if parent == nil {
		return
	}
	for i, c := range parent.children {
		if c != n {
			continue
		}
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
		removedErr := n.errSubDirs
		if n.state.IsError() {
			removedErr++
		}
		for p := parent; p != nil; p = p.parent {
			p.totalSize -= n.totalSize
			p.totalItems -= n.totalItems + 1
			p.errSubDirs -= removedErr
		}
		n.parent = nil
		return
	}
}

// DotEntry returns the <Files> pseudo directory of dir, creating it on demand.
func (t *Tree) DotEntry(dir *Node) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range dir.children {
		if c.Pseudo {
			return c
		}
	}
	dot := &Node{
		Name:   DotEntryName,
		Path:   joinPath(dir.Path, DotEntryName),
		IsDir:  true,
		Pseudo: true,
		state:  ReadFinished,
	}
	t.attachLocked(dir, dot)
	return dot
}

// Finalize folds the <Files> pseudo directory back into its parent for every
// directory below n that ended up without real sub-directories.
func (t *Tree) Finalize(n *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finalizeLocked(n)
}

func (t *Tree) finalizeLocked(n *Node) {
	if !n.IsDir {
		return
	}
	var dot *Node
	subDirs := 0
	for _, c := range n.children {
		switch {
		case c.Pseudo:
			dot = c
		case c.IsDir:
			subDirs++
			t.finalizeLocked(c)
		}
	}
	if dot == nil {
		return
	}
	if subDirs > 0 && len(dot.children) > 0 {
		return
	}

	// fold: the files become direct children, totals of n are unchanged
	// except for the pseudo node itself
	kept := n.children[:0]
	for _, c := range n.children {
		if c != dot {
			kept = append(kept, c)
		}
	}
	n.children = kept
	for _, f := range dot.children {
		f.parent = n
		n.children = append(n.children, f)
	}
	for p := n; p != nil; p = p.parent {
		p.totalItems--
	}
	dot.children = nil
	dot.parent = nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node. The tree is only locked while the
// children of a node are collected, so fn may call accessors.
func (t *Tree) Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	t.mu.RLock()
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	t.mu.RUnlock()
	for _, c := range children {
		t.Walk(c, fn)
	}
}

// Locate finds a node by its path. Pseudo directories themselves are only
// returned when findPseudo is set; their children are always searched.
func (t *Tree) Locate(path string, findPseudo bool) *Node {
	if path == "" {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return locateLocked(t.root, path, findPseudo)
}

func locateLocked(n *Node, path string, findPseudo bool) *Node {
	for _, c := range n.children {
		if c.Pseudo {
			if c.Path == path {
				if findPseudo {
					return c
				}
				return nil
			}
			if found := locateLocked(c, path, findPseudo); found != nil {
				return found
			}
			continue
		}
		if c.Path == path {
			return c
		}
		if c.IsDir && isUnder(path, c.Path) {
			return locateLocked(c, path, findPseudo)
		}
	}
	return nil
}

// isUnder reports whether path lies below dir.
func isUnder(path, dir string) bool {
	if dir == "" || len(path) <= len(dir) || !strings.HasPrefix(path, dir) {
		return false
	}
	last := dir[len(dir)-1]
	if last == '/' || last == filepath.Separator {
		return true
	}
	next := path[len(dir)]
	return next == '/' || next == filepath.Separator
}

func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}
	if IsPkgURL(dir) {
		return dir + "/" + name
	}
	return filepath.Join(dir, name)
}

// JoinPath builds the path of a child named name below dir.
func JoinPath(dir, name string) string {
	return joinPath(dir, name)
}
