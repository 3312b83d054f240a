// Package actions derives which user commands are enabled from the scan
// state, the current selection and the kind of root that is loaded.
//
// Compute is a pure function: it has no side effects and the same inputs
// always produce the same Enablement.
package actions

import (
	"github.com/justyntemme/dirstat/internal/tree"
)

// State is the lifecycle state of the scan session.
type State int

const (
	Idle State = iota
	Busy
	Aborting
)

func (s State) String() string {
	switch s {
	case Busy:
		return "busy"
	case Aborting:
		return "aborting"
	default:
		return "idle"
	}
}

// Command is a user-facing command whose availability depends on the scan
// and the selection.
type Command int

const (
	StopReading Command = iota
	RefreshAll
	RefreshSelected
	ContinueAtMountPoint
	ReadExcluded
	ReadCache
	WriteCache
	MoveToTrash
	FileSizeStats
	FileTypeStats
	FileAgeStats
	CopyPath
	GoUp
	GoToToplevel
	GoBack
	GoForward
	DiscoverLargest
	DiscoverNewest
	DiscoverOldest
	DiscoverHardLinked
	DiscoverBrokenSymlinks
	DiscoverSparse
	DiscoverByYear
	Locate

	numCommands
)

var commandNames = [numCommands]string{
	StopReading:            "stop-reading",
	RefreshAll:             "refresh-all",
	RefreshSelected:        "refresh-selected",
	ContinueAtMountPoint:   "continue-at-mount-point",
	ReadExcluded:           "read-excluded",
	ReadCache:              "read-cache",
	WriteCache:             "write-cache",
	MoveToTrash:            "move-to-trash",
	FileSizeStats:          "file-size-stats",
	FileTypeStats:          "file-type-stats",
	FileAgeStats:           "file-age-stats",
	CopyPath:               "copy-path",
	GoUp:                   "go-up",
	GoToToplevel:           "go-to-toplevel",
	GoBack:                 "go-back",
	GoForward:              "go-forward",
	DiscoverLargest:        "discover-largest",
	DiscoverNewest:         "discover-newest",
	DiscoverOldest:         "discover-oldest",
	DiscoverHardLinked:     "discover-hard-linked",
	DiscoverBrokenSymlinks: "discover-broken-symlinks",
	DiscoverSparse:         "discover-sparse",
	DiscoverByYear:         "discover-by-year",
	Locate:                 "locate",
}

func (c Command) String() string {
	if c < 0 || c >= numCommands {
		return "unknown"
	}
	return commandNames[c]
}

// All returns every command in declaration order.
func All() []Command {
	out := make([]Command, numCommands)
	for i := range out {
		out[i] = Command(i)
	}
	return out
}

// Item describes one selected tree item by the predicates the rules need.
type Item struct {
	Path       string
	Dir        bool
	Pseudo     bool
	Pkg        bool
	MountPoint bool
	Excluded   bool
	Level      int
}

// ItemOf builds an Item from a tree node.
func ItemOf(n *tree.Node) Item {
	return Item{
		Path:       n.Path,
		Dir:        n.IsDir,
		Pseudo:     n.Pseudo,
		Pkg:        n.Pkg,
		MountPoint: n.MountPoint,
		Excluded:   n.Excluded,
		Level:      n.TreeLevel(),
	}
}

// realDir reports whether the item is a directory that exists on disk.
func (it Item) realDir() bool {
	return it.Dir && !it.Pseudo && !it.Pkg
}

// Selection is the part of the selection model the rules look at.
type Selection struct {
	Items   []Item
	Current *Item
	HasRoot bool
}

// Enablement maps every command to its enabled state.
type Enablement [numCommands]bool

// Enabled reports whether c is enabled.
func (e Enablement) Enabled(c Command) bool {
	if c < 0 || c >= numCommands {
		return false
	}
	return e[c]
}

// Set overrides the state of c. It is used for commands whose state comes
// from outside the rules, like history navigation.
func (e *Enablement) Set(c Command, enabled bool) {
	if c < 0 || c >= numCommands {
		return
	}
	e[c] = enabled
}

// EnabledList returns the enabled commands in declaration order.
func (e Enablement) EnabledList() []Command {
	var out []Command
	for i, on := range e {
		if on {
			out = append(out, Command(i))
		}
	}
	return out
}

// Compute derives the enablement of every command. GoBack and GoForward are
// left disabled; they depend on the history stack.
func Compute(state State, sel Selection, kind tree.RootKind) Enablement {
	var e Enablement

	idle := state == Idle
	busy := !idle
	single := len(sel.Items) == 1
	var one Item
	if single {
		one = sel.Items[0]
	}
	oneDir := single && one.realDir()

	e[StopReading] = state == Busy
	e[RefreshAll] = idle
	e[ReadCache] = idle
	e[WriteCache] = idle && sel.HasRoot

	e[RefreshSelected] = idle && single && !one.Excluded && !one.MountPoint && kind != tree.KindPackageSet
	e[ContinueAtMountPoint] = idle && oneDir && one.MountPoint
	e[ReadExcluded] = idle && oneDir && one.Excluded

	trashable := len(sel.Items) > 0 && !busy
	for _, it := range sel.Items {
		if it.Pseudo || it.Pkg {
			trashable = false
			break
		}
	}
	e[MoveToTrash] = trashable

	stats := !busy && (len(sel.Items) == 0 || oneDir)
	e[FileSizeStats] = stats
	e[FileTypeStats] = stats
	e[FileAgeStats] = stats

	cur := sel.Current
	e[CopyPath] = cur != nil
	e[GoUp] = cur != nil && cur.Level > 1
	e[GoToToplevel] = sel.HasRoot && (cur == nil || cur.Level > 1)

	discover := !busy && sel.HasRoot
	for _, c := range []Command{
		DiscoverLargest, DiscoverNewest, DiscoverOldest, DiscoverHardLinked,
		DiscoverBrokenSymlinks, DiscoverSparse, DiscoverByYear, Locate,
	} {
		e[c] = discover
	}

	return e
}
