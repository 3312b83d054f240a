// Package selection tracks the current item, the current branch and the
// multi-selection of the tree view, and the future selection that survives a
// tree rebuild.
package selection

import (
	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
)

// Model holds the selection state of the tree view. It is owned by the
// control loop and is not safe for concurrent use.
type Model struct {
	current  *tree.Node
	branch   *tree.Node
	selected []*tree.Node

	onCurrent   []func(newCurrent, oldCurrent *tree.Node)
	onSelection []func()

	Verbose bool
}

// New creates an empty selection model.
func New() *Model {
	return &Model{}
}

// OnCurrentItemChanged registers a callback for current item changes.
func (m *Model) OnCurrentItemChanged(fn func(newCurrent, oldCurrent *tree.Node)) {
	m.onCurrent = append(m.onCurrent, fn)
}

// OnSelectionChanged registers a callback for multi-selection changes.
func (m *Model) OnSelectionChanged(fn func()) {
	m.onSelection = append(m.onSelection, fn)
}

// CurrentItem returns the item with keyboard focus, or nil.
func (m *Model) CurrentItem() *tree.Node { return m.current }

// CurrentBranch returns the branch last made current programmatically, or nil.
func (m *Model) CurrentBranch() *tree.Node { return m.branch }

// SelectedItems returns a copy of the multi-selection.
func (m *Model) SelectedItems() []*tree.Node {
	out := make([]*tree.Node, len(m.selected))
	copy(out, m.selected)
	return out
}

// IsSelected reports whether n is part of the multi-selection.
func (m *Model) IsSelected(n *tree.Node) bool {
	for _, s := range m.selected {
		if s == n {
			return true
		}
	}
	return false
}

// SetCurrentItem makes n current. With selectIt the multi-selection is
// replaced by n alone.
func (m *Model) SetCurrentItem(n *tree.Node, selectIt bool) {
	if selectIt {
		m.setSelected([]*tree.Node{n})
	}
	m.setCurrent(n)
}

// SetCurrentBranch makes n current and selected and remembers it as the
// current branch.
func (m *Model) SetCurrentBranch(n *tree.Node) {
	m.branch = n
	m.SetCurrentItem(n, true)
}

// SetSelectedItems replaces the multi-selection.
func (m *Model) SetSelectedItems(nodes []*tree.Node) {
	m.setSelected(nodes)
}

// ToggleSelected adds n to or removes n from the multi-selection.
func (m *Model) ToggleSelected(n *tree.Node) {
	if n == nil {
		return
	}
	next := make([]*tree.Node, 0, len(m.selected)+1)
	found := false
	for _, s := range m.selected {
		if s == n {
			found = true
			continue
		}
		next = append(next, s)
	}
	if !found {
		next = append(next, n)
	}
	m.setSelected(next)
}

// Clear drops current item, current branch and selection.
func (m *Model) Clear() {
	m.branch = nil
	m.setSelected(nil)
	m.setCurrent(nil)
}

func (m *Model) setCurrent(n *tree.Node) {
	if n == m.current {
		return
	}
	old := m.current
	m.current = n
	if m.Verbose {
		debug.Log(debug.SESSION, "current item %v -> %v", old, n)
	}
	for _, fn := range m.onCurrent {
		fn(n, old)
	}
}

func (m *Model) setSelected(nodes []*tree.Node) {
	clean := make([]*tree.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			clean = append(clean, n)
		}
	}
	if sameNodes(clean, m.selected) {
		return
	}
	m.selected = clean
	if m.Verbose {
		debug.Log(debug.SESSION, "selection now %d items", len(clean))
	}
	for _, fn := range m.onSelection {
		fn()
	}
}

func sameNodes(a, b []*tree.Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Normalized drops every node whose ancestor is also in nodes, and
// duplicates.
func Normalized(nodes []*tree.Node) []*tree.Node {
	out := make([]*tree.Node, 0, len(nodes))
	seen := make(map[*tree.Node]bool, len(nodes))
	for _, n := range nodes {
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true
		covered := false
		for _, other := range nodes {
			if other != nil && other != n && other.IsAncestorOf(n) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, n)
		}
	}
	return out
}

// TotalSize sums the total sizes of the normalized set.
func TotalSize(nodes []*tree.Node) int64 {
	var sum int64
	for _, n := range Normalized(nodes) {
		sum += n.TotalSize()
	}
	return sum
}
