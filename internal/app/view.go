package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dirstat/internal/actions"
	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/selection"
	"github.com/justyntemme/dirstat/internal/tree"
	"github.com/justyntemme/dirstat/internal/ui"
)

// maxListedSelection caps the names listed in the selection details.
const maxListedSelection = 20

// windowView applies what the session controller asks for to the shared
// ui.State. Every method takes the state lock and asks for a redraw.
type windowView struct {
	mu         *sync.Mutex
	state      *ui.State
	invalidate func()
	now        func() time.Time

	// closeUnreadable drops the unreadable directories report
	closeUnreadable func()
}

func (v *windowView) update(fn func(s *ui.State)) {
	v.mu.Lock()
	fn(v.state)
	v.mu.Unlock()
	if v.invalidate != nil {
		v.invalidate()
	}
}

func (v *windowView) ShowStatus(msg string, timeout time.Duration) {
	v.update(func(s *ui.State) {
		s.Status = ui.Status{Text: msg}
		if timeout > 0 {
			s.Status.Until = v.now().Add(timeout)
		}
	})
}

func (v *windowView) ExpandToLevel(level int) {
	v.update(func(s *ui.State) { s.View.ExpandToLevel(level) })
}

func (v *windowView) SetExpanded(n *tree.Node, expanded bool) {
	v.update(func(s *ui.State) {
		s.View.SetExpanded(n, expanded)
		s.ScrollTo = n
	})
}

func (v *windowView) SetEnabled(e actions.Enablement) {
	v.update(func(s *ui.State) {
		if s.Enabled != e {
			debug.Log(debug.APP, "enabled commands: %v", e.EnabledList())
		}
		s.Enabled = e
	})
}

func (v *windowView) DetailsVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Flags.ShowDetailsPanel
}

func (v *windowView) ShowDetails(n *tree.Node) {
	title, lines := nodeDetails(n)
	v.update(func(s *ui.State) {
		s.DetailsTitle, s.Details = title, lines
	})
}

func (v *windowView) ShowSelectionDetails(items []*tree.Node) {
	title, lines := selectionDetails(items)
	v.update(func(s *ui.State) {
		s.DetailsTitle, s.Details = title, lines
	})
}

func (v *windowView) ShowPermissionWarning() {
	v.update(func(s *ui.State) { s.Warning = true })
}

func (v *windowView) CloseUnreadableDirs() {
	if v.closeUnreadable != nil {
		v.closeUnreadable()
	}
}

func nodeDetails(n *tree.Node) (string, []string) {
	if n == nil {
		return "", nil
	}
	lines := []string{"Path: " + n.Path}
	if n.Real != "" && n.Real != n.Path {
		lines = append(lines, "On disk: "+n.Real)
	}
	kind := "File"
	switch {
	case n.Pseudo:
		kind = "Files of the parent directory"
	case n.Pkg:
		kind = "Package"
	case n.IsSymlink:
		kind = "Symbolic link"
		if n.BrokenLink {
			kind += " (broken)"
		}
	case n.IsDir:
		kind = "Directory"
	}
	lines = append(lines, "Type: "+kind)

	total := n.TotalSize()
	lines = append(lines, fmt.Sprintf("Size: %s (%s bytes)", humanize.IBytes(uint64(max(total, 0))), humanize.Comma(total)))
	if n.IsDir {
		lines = append(lines,
			"Own size: "+humanize.IBytes(uint64(max(n.Size, 0))),
			"Items: "+humanize.Comma(n.TotalItems()),
			"State: "+n.State().String(),
		)
		if c := n.ErrSubDirCount(); c > 0 {
			lines = append(lines, fmt.Sprintf("Unreadable subdirectories: %d", c))
		}
		if n.MountPoint {
			lines = append(lines, "Mount point")
		}
		if n.Excluded {
			lines = append(lines, "Excluded by a rule")
		}
	} else {
		lines = append(lines, fmt.Sprintf("Allocated: %s", humanize.IBytes(uint64(max(n.Blocks, 0))*512)))
		if n.Links > 1 {
			lines = append(lines, fmt.Sprintf("Hard links: %d", n.Links))
		}
	}
	if !n.ModTime.IsZero() {
		lines = append(lines, "Last modified: "+n.ModTime.Format("2006-01-02 15:04:05")+" ("+humanize.Time(n.ModTime)+")")
	}
	return n.Name, lines
}

func selectionDetails(items []*tree.Node) (string, []string) {
	norm := selection.Normalized(items)
	total := selection.TotalSize(norm)
	var files, dirs int
	for _, n := range norm {
		if n.IsDir {
			dirs++
		} else {
			files++
		}
	}
	lines := []string{
		fmt.Sprintf("Total size: %s", humanize.IBytes(uint64(max(total, 0)))),
		fmt.Sprintf("Directories: %d", dirs),
		fmt.Sprintf("Files: %d", files),
		"",
	}
	for i, n := range norm {
		if i == maxListedSelection {
			lines = append(lines, fmt.Sprintf("… and %d more", len(norm)-i))
			break
		}
		lines = append(lines, n.Path)
	}
	return fmt.Sprintf("%d items selected", len(items)), lines
}
