package selection

import (
	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
)

// Future remembers which item to select once the next scan has rebuilt the
// tree. It stores the path only; node pointers do not survive a rebuild.
type Future struct {
	target string

	// UseRootFallback selects the toplevel item when the target is gone.
	UseRootFallback bool
}

// Set records n as the item to select. A nil node clears the request.
func (f *Future) Set(n *tree.Node) {
	if n == nil {
		f.Clear()
		return
	}
	f.SetPath(n.Path)
}

// SetPath records path as the item to select.
func (f *Future) SetPath(path string) {
	f.target = path
	debug.Log(debug.SESSION, "future selection set to %q", path)
}

// Clear drops a pending request.
func (f *Future) Clear() {
	f.target = ""
}

// IsEmpty reports whether no request is pending.
func (f *Future) IsEmpty() bool {
	return f.target == ""
}

// Target returns the pending path.
func (f *Future) Target() string {
	return f.target
}

// Resolve consumes the pending request and looks the target up in t. The
// request is cleared whether or not the target still exists.
func (f *Future) Resolve(t *tree.Tree) *tree.Node {
	if f.IsEmpty() {
		return nil
	}
	target := f.target
	f.Clear()

	var n *tree.Node
	if t != nil {
		n = t.Locate(target, true)
		if n == nil && f.UseRootFallback {
			n = t.FirstToplevel()
		}
	}
	debug.Log(debug.SESSION, "future selection %q resolved to %v", target, n)
	return n
}
