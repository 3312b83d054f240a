package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dirstat/internal/actions"
	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/discover"
	profiles "github.com/justyntemme/dirstat/internal/layout"
	"github.com/justyntemme/dirstat/internal/selection"
	"github.com/justyntemme/dirstat/internal/session"
	"github.com/justyntemme/dirstat/internal/stats"
	"github.com/justyntemme/dirstat/internal/trash"
	"github.com/justyntemme/dirstat/internal/tree"
	"github.com/justyntemme/dirstat/internal/ui"
)

var nowFunc = time.Now

var errEmptyInput = errors.New("nothing entered")

func (o *Orchestrator) handleUIEvent(e ui.UIEvent) {
	switch e.Action {
	case ui.ActionCommand:
		o.runCommand(e.Command)
	case ui.ActionPrompt:
		o.showPrompt(e.Prompt)
	case ui.ActionPromptCancel:
		o.hidePrompt()
	case ui.ActionPromptSubmit:
		o.submitPrompt(e.Prompt, e.Text)
	case ui.ActionSelect:
		if n := o.fs.Tree().Locate(e.Path, true); n != nil {
			o.sel.SetCurrentItem(n, true)
		}
	case ui.ActionToggleSelect:
		if n := o.fs.Tree().Locate(e.Path, true); n != nil {
			o.sel.ToggleSelected(n)
		}
	case ui.ActionToggleExpand:
		if n := o.fs.Tree().Locate(e.Path, true); n != nil {
			o.mu.Lock()
			o.state.View.Toggle(n)
			o.mu.Unlock()
		}
	case ui.ActionNavigate:
		if !o.ctrl.NavigateToURL(e.Path) {
			o.view.ShowStatus("Not found: "+e.Path, o.conf.UI.StatusBarTimeout())
		}
	case ui.ActionExpandLevel:
		o.ctrl.ExpandToLevel(e.Level)
	case ui.ActionLayout:
		o.mu.Lock()
		current := o.state.Flags
		o.mu.Unlock()
		o.applyFlags(o.profiles.Switch(e.Profile, current))
		o.saveProfiles()
	case ui.ActionToggleDetails:
		o.toggleFlag(func(f *profiles.Flags) { f.ShowDetailsPanel = !f.ShowDetailsPanel })
	case ui.ActionToggleCurrentPath:
		o.toggleFlag(func(f *profiles.Flags) { f.ShowCurrentPath = !f.ShowCurrentPath })
	case ui.ActionCloseWarning:
		o.mu.Lock()
		o.state.Warning = false
		o.mu.Unlock()
		o.ctrl.PermissionWarningClosed()
	case ui.ActionShowUnreadable:
		o.showUnreadableDirs()
	case ui.ActionCloseReport:
		o.closeReport(e.Report)
	case ui.ActionForgetRecent:
		o.forgetRecent(e.Path)
	}
}

func (o *Orchestrator) runCommand(c actions.Command) {
	if !o.ctrl.EnabledCommands().Enabled(c) {
		debug.Log(debug.APP, "command %s not enabled", c)
		return
	}
	debug.Log(debug.APP, "command %s", c)

	var err error
	switch c {
	case actions.StopReading:
		o.ctrl.RequestStop()
	case actions.RefreshAll:
		err = o.ctrl.RequestRefreshAll()
	case actions.RefreshSelected:
		err = o.ctrl.RequestRefreshSelected()
	case actions.ContinueAtMountPoint:
		err = o.ctrl.RequestContinueAtMountPoint()
	case actions.ReadExcluded:
		err = o.ctrl.RequestReadExcluded()
	case actions.ReadCache:
		o.showPrompt(ui.PromptReadCache)
	case actions.WriteCache:
		o.showPrompt(ui.PromptWriteCache)
	case actions.Locate:
		o.showPrompt(ui.PromptLocate)
	case actions.MoveToTrash:
		o.confirmTrash()
	case actions.FileSizeStats:
		o.collectStats(stats.KindSize, ui.ReportSizeStats, "File Size Statistics")
	case actions.FileTypeStats:
		o.collectStats(stats.KindType, ui.ReportTypeStats, "File Type Statistics")
	case actions.FileAgeStats:
		o.collectStats(stats.KindAge, ui.ReportAgeStats, "File Age Statistics")
	case actions.CopyPath:
		o.copyPath()
	case actions.GoUp:
		o.ctrl.NavigateUp()
	case actions.GoToToplevel:
		o.ctrl.NavigateToToplevel()
	case actions.GoBack:
		o.ctrl.HistoryBack()
	case actions.GoForward:
		o.ctrl.HistoryForward()
	default:
		o.discover(c)
	}
	if err != nil {
		o.commandFailed(c, err)
	}
}

// commandFailed reports a rejected request. A refresh of everything that
// finds no usable root asks for a directory to open instead.
func (o *Orchestrator) commandFailed(c actions.Command, err error) {
	debug.Log(debug.APP, "command %s: %v", c, err)
	var oe *session.OpenError
	if c == actions.RefreshAll && (errors.Is(err, session.ErrNoRoot) || errors.As(err, &oe)) {
		o.showPrompt(ui.PromptOpen)
		o.setPromptError(err)
		return
	}
	o.view.ShowStatus(err.Error(), o.conf.UI.StatusBarTimeout())
}

func (o *Orchestrator) showPrompt(mode ui.PromptMode) {
	o.showPromptHint(mode, "")
}

func (o *Orchestrator) showPromptHint(mode ui.PromptMode, hint string) {
	o.mu.Lock()
	o.state.Prompt, o.state.PromptHint, o.state.PromptError = mode, hint, ""
	o.mu.Unlock()
}

func (o *Orchestrator) hidePrompt() {
	o.showPromptHint(ui.PromptNone, "")
}

func (o *Orchestrator) setPromptError(err error) {
	o.mu.Lock()
	o.state.PromptError = err.Error()
	o.mu.Unlock()
}

// submitPrompt runs what a prompt was opened for. A failure keeps the
// prompt open with the error below it.
func (o *Orchestrator) submitPrompt(mode ui.PromptMode, text string) {
	var err error
	switch mode {
	case ui.PromptOpen:
		err = o.open(text)
	case ui.PromptReadCache:
		err = o.withInput(text, o.ctrl.RequestReadCache)
	case ui.PromptWriteCache:
		err = o.withInput(text, o.ctrl.RequestWriteCache)
	case ui.PromptLocate:
		err = o.locate(text)
	case ui.PromptConfirmTrash:
		o.moveToTrash()
	}
	if err != nil {
		debug.Log(debug.APP, "prompt %d: %v", mode, err)
		o.setPromptError(err)
		return
	}
	o.hidePrompt()
}

func (o *Orchestrator) withInput(text string, fn func(string) error) error {
	if text == "" {
		return errEmptyInput
	}
	return fn(expandHome(text))
}

// open starts reading a directory or a pkg:/ URL as the new root.
func (o *Orchestrator) open(location string) error {
	if location == "" {
		return errEmptyInput
	}
	kind := tree.KindFilesystem
	if tree.IsPkgURL(location) {
		kind = tree.KindPackageSet
	} else {
		location = expandHome(location)
	}
	if err := o.ctrl.RequestOpen(kind, location); err != nil {
		return err
	}
	o.closeAllReports()
	o.mu.Lock()
	o.state.Warning = false
	o.mu.Unlock()
	o.ctrl.PermissionWarningClosed()
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func (o *Orchestrator) applyFlags(f profiles.Flags) {
	o.mu.Lock()
	o.state.Flags = f
	o.state.Profile = o.profiles.Active()
	o.mu.Unlock()
	o.ctrl.SelectionChanged()
}

func (o *Orchestrator) toggleFlag(change func(f *profiles.Flags)) {
	o.mu.Lock()
	f := o.state.Flags
	o.mu.Unlock()
	change(&f)
	o.profiles.Capture(f)
	o.applyFlags(f)
	o.saveProfiles()
}

func (o *Orchestrator) copyPath() {
	cur := o.sel.CurrentItem()
	if cur == nil {
		return
	}
	o.mu.Lock()
	o.state.Clipboard = cur.Path
	o.mu.Unlock()
	o.view.ShowStatus("Copied to system clipboard: "+cur.Path, o.conf.UI.StatusBarTimeout())
}

// reportRoot is the directory the statistics and discover commands work
// on: the current directory, the parent of the current file, or the
// toplevel.
func (o *Orchestrator) reportRoot() *tree.Node {
	t := o.fs.Tree()
	n := o.sel.CurrentItem()
	if items := o.sel.SelectedItems(); len(items) == 1 {
		n = items[0]
	}
	if n != nil && !n.IsDir {
		n = n.Parent()
	}
	if n == nil || n == t.Root() {
		n = t.FirstToplevel()
	}
	return n
}

// runReport computes a report off the control loop and opens it when done.
func (o *Orchestrator) runReport(kind ui.ReportKind, compute func() (string, []string, []*tree.Node)) {
	o.view.ShowStatus("Collecting…", 0)
	go func() {
		title, lines, items := compute()
		o.post(func() {
			o.openReport(kind, title, lines, items)
			o.ctrl.SelectionChanged()
		})
	}()
}

func (o *Orchestrator) collectStats(kind stats.Kind, rk ui.ReportKind, title string) {
	root := o.reportRoot()
	if root == nil {
		return
	}
	o.runReport(rk, func() (string, []string, []*tree.Node) {
		rep := o.stats.Collect(kind, root)
		return title + " for " + root.Path, rep.Lines(), nil
	})
}

func (o *Orchestrator) discover(c actions.Command) {
	root := o.reportRoot()
	if root == nil {
		return
	}
	w := o.fs.Tree()
	var compute func() discover.Result
	switch c {
	case actions.DiscoverLargest:
		compute = func() discover.Result { return discover.Largest(w, root, discover.DefaultLimit) }
	case actions.DiscoverNewest:
		compute = func() discover.Result { return discover.Newest(w, root, discover.DefaultLimit) }
	case actions.DiscoverOldest:
		compute = func() discover.Result { return discover.Oldest(w, root, discover.DefaultLimit) }
	case actions.DiscoverHardLinked:
		compute = func() discover.Result { return discover.HardLinked(w, root) }
	case actions.DiscoverBrokenSymlinks:
		compute = func() discover.Result { return discover.BrokenSymlinks(w, root) }
	case actions.DiscoverSparse:
		compute = func() discover.Result { return discover.Sparse(w, root) }
	case actions.DiscoverByYear:
		year := nowFunc().Year()
		if cur := o.sel.CurrentItem(); cur != nil && !cur.ModTime.IsZero() {
			year = cur.ModTime.Year()
		}
		compute = func() discover.Result { return discover.ByYear(w, root, year, 0) }
	default:
		debug.Log(debug.APP, "no handler for command %s", c)
		return
	}
	o.runReport(ui.ReportDiscover, func() (string, []string, []*tree.Node) {
		res := compute()
		return res.Title, nil, res.Items
	})
}

func (o *Orchestrator) locate(query string) error {
	if query == "" {
		return errEmptyInput
	}
	root := o.reportRoot()
	if root == nil {
		return session.ErrNoRoot
	}
	w := o.fs.Tree()
	o.runReport(ui.ReportDiscover, func() (string, []string, []*tree.Node) {
		res := discover.Locate(w, root, query, discover.DefaultLimit)
		return res.Title, nil, res.Items
	})
	return nil
}

func (o *Orchestrator) showUnreadableDirs() {
	t := o.fs.Tree()
	top := t.FirstToplevel()
	if top == nil {
		return
	}
	var dirs []*tree.Node
	t.Walk(top, func(n *tree.Node) bool {
		if n.IsDir && n.State().IsError() {
			dirs = append(dirs, n)
		}
		return true
	})
	o.openReport(ui.ReportUnreadable, fmt.Sprintf("Unreadable Directories (%d)", len(dirs)), nil, dirs)
}

// trashTargets is the normalized selection minus everything that cannot
// be trashed: pseudo directories, package items and the toplevel.
func (o *Orchestrator) trashTargets() []*tree.Node {
	items := o.sel.SelectedItems()
	if len(items) == 0 {
		if cur := o.sel.CurrentItem(); cur != nil {
			items = []*tree.Node{cur}
		}
	}
	return trashable(selection.Normalized(items))
}

func trashable(items []*tree.Node) []*tree.Node {
	var out []*tree.Node
	for _, n := range items {
		p := n.Parent()
		if n.Pseudo || n.Pkg || p == nil || p.Parent() == nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (o *Orchestrator) confirmTrash() {
	targets := o.trashTargets()
	if len(targets) == 0 {
		return
	}
	if !o.conf.Behavior.ConfirmTrash {
		o.moveToTrash()
		return
	}
	hint := fmt.Sprintf("%s: %d item(s), %s in total? Press Enter to confirm.",
		trash.VerbPhrase(), len(targets), humanize.IBytes(uint64(max(selection.TotalSize(targets), 0))))
	o.showPromptHint(ui.PromptConfirmTrash, hint)
}

// moveToTrash trashes the targets, lists the outcome in a report and reads
// the parents of the trashed items again.
func (o *Orchestrator) moveToTrash() {
	targets := o.trashTargets()
	if len(targets) == 0 {
		return
	}
	if !o.bin.Available() {
		o.view.ShowStatus(trash.ErrUnavailable.Error(), o.conf.UI.StatusBarTimeout())
		return
	}

	paths := make([]string, len(targets))
	for i, n := range targets {
		paths[i] = n.FSPath()
	}
	outcomes := o.bin.MoveAll(paths)
	lines := make([]string, len(outcomes))
	failed := 0
	for i, out := range outcomes {
		lines[i] = out.String()
		if out.Err != nil {
			failed++
		}
	}
	o.openReport(ui.ReportTrash, trash.VerbPhrase(), lines, nil)
	debug.Log(debug.TRASH, "trashed %d of %d items", len(outcomes)-failed, len(outcomes))

	if err := o.ctrl.RefreshPaths(parentPaths(targets)); err != nil {
		o.view.ShowStatus(err.Error(), o.conf.UI.StatusBarTimeout())
	}
}

// parentPaths lists the distinct parents of items in order.
func parentPaths(items []*tree.Node) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range items {
		p := n.Parent()
		if p == nil {
			continue
		}
		for p.Pseudo && p.Parent() != nil {
			p = p.Parent()
		}
		if !seen[p.Path] {
			seen[p.Path] = true
			out = append(out, p.Path)
		}
	}
	return out
}
