package ui

import (
	"time"

	"gioui.org/io/key"

	"github.com/justyntemme/dirstat/internal/actions"
	profiles "github.com/justyntemme/dirstat/internal/layout"
	"github.com/justyntemme/dirstat/internal/tree"
)

type UIAction int

const (
	ActionNone UIAction = iota
	ActionCommand        // run Command
	ActionPrompt         // show the prompt in Prompt mode
	ActionPromptSubmit   // Text was entered in the Prompt mode prompt
	ActionPromptCancel   // prompt dismissed
	ActionSelect         // make Path the current item
	ActionToggleSelect   // add or remove Path from the selection
	ActionToggleExpand   // open or close the directory Path
	ActionNavigate       // go to Path, expanding the way there
	ActionLayout         // switch to layout Profile
	ActionToggleDetails  // show or hide the details panel
	ActionToggleCurrentPath
	ActionExpandLevel    // expand the tree down to Level
	ActionCloseWarning   // permission warning dismissed
	ActionShowUnreadable // details link of the permission warning
	ActionCloseReport    // report Report closed
	ActionForgetRecent   // drop Path from the recent roots
)

// PromptMode says what a line of text entered in the prompt is used for.
type PromptMode int

const (
	PromptNone PromptMode = iota
	PromptOpen
	PromptReadCache
	PromptWriteCache
	PromptLocate
	PromptConfirmTrash
)

func (m PromptMode) Label() string {
	switch m {
	case PromptOpen:
		return "Directory or pkg:/ URL to open"
	case PromptReadCache:
		return "Cache file to read"
	case PromptWriteCache:
		return "Write cache to file"
	case PromptLocate:
		return "Locate (name, ext:, size:>1MB, modified:<2020, kind:dir)"
	case PromptConfirmTrash:
		return "Move the selected items to the trash? Press Enter to confirm."
	}
	return ""
}

type UIEvent struct {
	Action    UIAction
	Command   actions.Command
	Prompt    PromptMode
	Path      string
	Text      string
	Report    int
	Level     int
	Profile   profiles.ProfileID
	Modifiers key.Modifiers
}

// ReportKind identifies a report panel. There is at most one panel of each
// kind; opening a kind again replaces its content.
type ReportKind int

const (
	ReportUnreadable ReportKind = iota
	ReportSizeStats
	ReportTypeStats
	ReportAgeStats
	ReportDiscover
	ReportTrash
)

// Report is an auxiliary panel. Items, when present, are shown as clickable
// rows that navigate to the node; Lines are plain text.
type Report struct {
	ID    int
	Kind  ReportKind
	Title string
	Lines []string
	Items []*tree.Node
}

// QuickRoot is a start location offered when nothing is loaded.
type QuickRoot struct {
	Name string
	Path string
}

// Status is the status bar message. A zero Until keeps it until replaced.
type Status struct {
	Text  string
	Until time.Time
}

// State is everything the renderer shows. It is written by the control
// goroutine and read by the frame loop, both under the owner's lock.
type State struct {
	Tree     *tree.Tree
	View     *TreeView
	Current  *tree.Node
	Selected map[*tree.Node]bool
	Enabled  actions.Enablement
	Busy     bool

	Profile profiles.ProfileID
	Flags   profiles.Flags

	Status       Status
	DetailsTitle string
	Details      []string
	Warning      bool

	Prompt      PromptMode
	PromptHint  string // replaces the prompt's default label when set
	PromptError string

	Reports    []*Report
	QuickRoots []QuickRoot
	Recent     []string

	// ActiveReport brings the report with this ID to the front once.
	ActiveReport int
	// ScrollTo asks the list to bring this node into view once.
	ScrollTo *tree.Node
	// Clipboard is written to the system clipboard on the next frame.
	Clipboard string
}
