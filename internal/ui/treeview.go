package ui

import (
	"sort"
	"strings"

	"github.com/justyntemme/dirstat/internal/tree"
)

// TreeView remembers which directories are expanded. Nodes nobody toggled
// follow the automatic level: they are open when their tree level is at most
// AutoLevel.
type TreeView struct {
	AutoLevel int
	explicit  map[*tree.Node]bool
}

func NewTreeView() *TreeView {
	return &TreeView{explicit: make(map[*tree.Node]bool)}
}

// ExpandToLevel opens everything down to level and closes the rest.
// Level 0 collapses the whole tree.
func (v *TreeView) ExpandToLevel(level int) {
	v.AutoLevel = level
	v.explicit = make(map[*tree.Node]bool)
}

// SetExpanded opens or closes n. Opening n also opens its ancestors.
func (v *TreeView) SetExpanded(n *tree.Node, expanded bool) {
	if n == nil {
		return
	}
	v.explicit[n] = expanded
	if expanded {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if !v.IsExpanded(p) {
				v.explicit[p] = true
			}
		}
	}
}

// Toggle flips the expansion of n.
func (v *TreeView) Toggle(n *tree.Node) {
	v.SetExpanded(n, !v.IsExpanded(n))
}

func (v *TreeView) IsExpanded(n *tree.Node) bool {
	if n == nil || !n.IsDir {
		return false
	}
	if e, ok := v.explicit[n]; ok {
		return e
	}
	if n.Parent() == nil {
		return true // the super-root is never shown
	}
	return n.TreeLevel() <= v.AutoLevel
}

// CollapseWhere closes every directory below root for which match is true.
func (v *TreeView) CollapseWhere(t *tree.Tree, match func(*tree.Node) bool) {
	t.Walk(t.Root(), func(n *tree.Node) bool {
		if n.IsDir && match(n) {
			v.explicit[n] = false
		}
		return true
	})
}

// Row is a visible line of the tree list.
type Row struct {
	Node     *tree.Node
	Depth    int
	Expanded bool
}

// Rows flattens the visible part of t. Children are sorted by total size,
// biggest first, then by name.
func (v *TreeView) Rows(t *tree.Tree) []Row {
	var rows []Row
	var visit func(n *tree.Node, depth int)
	visit = func(n *tree.Node, depth int) {
		children := n.Children()
		sortBySize(children)
		for _, c := range children {
			exp := v.IsExpanded(c)
			rows = append(rows, Row{Node: c, Depth: depth, Expanded: exp})
			if exp {
				visit(c, depth+1)
			}
		}
	}
	visit(t.Root(), 0)
	return rows
}

func sortBySize(nodes []*tree.Node) {
	sizes := make(map[*tree.Node]int64, len(nodes))
	for _, n := range nodes {
		sizes[n] = n.TotalSize()
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if sizes[a] != sizes[b] {
			return sizes[a] > sizes[b]
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// IndexOf returns the row showing n, or -1.
func IndexOf(rows []Row, n *tree.Node) int {
	for i, r := range rows {
		if r.Node == n {
			return i
		}
	}
	return -1
}
