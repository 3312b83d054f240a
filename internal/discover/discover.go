// Package discover finds interesting files in a scanned tree: the largest,
// newest and oldest files, hard links, broken symlinks, sparse files, files
// from a given year, and the results of a locate query.
package discover

import (
	"fmt"
	"sort"
	"time"

	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
)

// DefaultLimit caps the ranked lists.
const DefaultLimit = 200

// Result is the content of a discover report.
type Result struct {
	Title string
	Items []*tree.Node
}

// Walker is the part of a tree the discover functions need.
type Walker interface {
	Walk(n *tree.Node, fn func(*tree.Node) bool)
}

// files calls fn for every file below root. Directories whose contents were
// not read are skipped entirely.
func files(w Walker, root *tree.Node, fn func(*tree.Node)) {
	w.Walk(root, func(n *tree.Node) bool {
		if n.IsDir {
			return true
		}
		fn(n)
		return true
	})
}

func collect(w Walker, root *tree.Node, keep func(*tree.Node) bool) []*tree.Node {
	var out []*tree.Node
	files(w, root, func(n *tree.Node) {
		if keep(n) {
			out = append(out, n)
		}
	})
	return out
}

func top(items []*tree.Node, limit int, less func(a, b *tree.Node) bool) []*tree.Node {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Largest returns the biggest files below root.
func Largest(w Walker, root *tree.Node, limit int) Result {
	items := collect(w, root, func(*tree.Node) bool { return true })
	items = top(items, limit, func(a, b *tree.Node) bool { return a.Size > b.Size })
	return Result{Title: fmt.Sprintf("Largest files in %s", root.Path), Items: items}
}

// Newest returns the most recently modified files below root.
func Newest(w Walker, root *tree.Node, limit int) Result {
	items := collect(w, root, func(n *tree.Node) bool { return !n.ModTime.IsZero() })
	items = top(items, limit, func(a, b *tree.Node) bool { return a.ModTime.After(b.ModTime) })
	return Result{Title: fmt.Sprintf("Newest files in %s", root.Path), Items: items}
}

// Oldest returns the files below root that were modified longest ago.
func Oldest(w Walker, root *tree.Node, limit int) Result {
	items := collect(w, root, func(n *tree.Node) bool { return !n.ModTime.IsZero() })
	items = top(items, limit, func(a, b *tree.Node) bool { return a.ModTime.Before(b.ModTime) })
	return Result{Title: fmt.Sprintf("Oldest files in %s", root.Path), Items: items}
}

// HardLinked returns files with more than one link, biggest first.
func HardLinked(w Walker, root *tree.Node) Result {
	items := collect(w, root, func(n *tree.Node) bool { return n.Links > 1 && !n.IsSymlink })
	items = top(items, 0, func(a, b *tree.Node) bool { return a.Size > b.Size })
	return Result{Title: fmt.Sprintf("Files with multiple hard links in %s", root.Path), Items: items}
}

// BrokenSymlinks returns symlinks whose target does not exist.
func BrokenSymlinks(w Walker, root *tree.Node) Result {
	items := collect(w, root, func(n *tree.Node) bool { return n.IsSymlink && n.BrokenLink })
	return Result{Title: fmt.Sprintf("Broken symbolic links in %s", root.Path), Items: items}
}

// IsSparse reports whether less disk space is allocated for n than its size
// suggests.
func IsSparse(n *tree.Node) bool {
	if n.IsDir || n.IsSymlink || n.Size == 0 {
		return false
	}
	// allocation happens in filesystem blocks; ignore the last partial one
	const slack = 4096
	return n.Blocks*512+slack < n.Size
}

// Sparse returns sparse files, biggest first.
func Sparse(w Walker, root *tree.Node) Result {
	items := collect(w, root, IsSparse)
	items = top(items, 0, func(a, b *tree.Node) bool { return a.Size > b.Size })
	return Result{Title: fmt.Sprintf("Sparse files in %s", root.Path), Items: items}
}

// ByYear returns files last modified in year, or in one month of it when
// month is between 1 and 12.
func ByYear(w Walker, root *tree.Node, year, month int) Result {
	items := collect(w, root, func(n *tree.Node) bool {
		if n.ModTime.IsZero() {
			return false
		}
		y, m, _ := n.ModTime.Date()
		return y == year && (month < 1 || month > 12 || int(m) == month)
	})
	items = top(items, 0, func(a, b *tree.Node) bool { return a.ModTime.After(b.ModTime) })
	title := fmt.Sprintf("Files from %d in %s", year, root.Path)
	if month >= 1 && month <= 12 {
		title = fmt.Sprintf("Files from %s %d in %s", time.Month(month), year, root.Path)
	}
	return Result{Title: title, Items: items}
}

// Locate returns the nodes below root matching the query string. Unlike the
// other reports it includes directories.
func Locate(w Walker, root *tree.Node, query string, limit int) Result {
	q := Parse(query)
	var items []*tree.Node
	if !q.IsEmpty() {
		w.Walk(root, func(n *tree.Node) bool {
			if limit > 0 && len(items) >= limit {
				return false
			}
			if n != root && q.Match(n) {
				items = append(items, n)
			}
			return true
		})
	}
	debug.Log(debug.UI, "locate %q below %s: %d matches", query, root.Path, len(items))
	return Result{Title: fmt.Sprintf("Locate %q in %s", query, root.Path), Items: items}
}
