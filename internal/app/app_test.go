package app

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dirstat/internal/actions"
	"github.com/justyntemme/dirstat/internal/session"
	"github.com/justyntemme/dirstat/internal/tree"
	"github.com/justyntemme/dirstat/internal/ui"
)

// sample builds /top with a sub-directory, a file in it and a file in the
// <Files> entry of /top.
func sample() (top, sub, inSub, inDot *tree.Node) {
	tr := tree.New()
	tr.Reset("/top", tree.KindFilesystem)
	top = &tree.Node{Name: "top", Path: "/top", IsDir: true}
	tr.Attach(nil, top)
	sub = &tree.Node{Name: "sub", Path: "/top/sub", IsDir: true}
	tr.Attach(top, sub)
	inSub = &tree.Node{Name: "a.txt", Path: "/top/sub/a.txt", Size: 100}
	tr.Attach(sub, inSub)
	inDot = &tree.Node{Name: "b.txt", Path: "/top/b.txt", Size: 50}
	tr.Attach(tr.DotEntry(top), inDot)
	return top, sub, inSub, inDot
}

func newTestView() (*windowView, *ui.State, time.Time) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	state := &ui.State{View: ui.NewTreeView()}
	v := &windowView{
		mu:    &sync.Mutex{},
		state: state,
		now:   func() time.Time { return now },
	}
	return v, state, now
}

func TestWindowTitle(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		root    bool
		showURL bool
		want    string
	}{
		{"plain", "/home", false, false, "dirstat"},
		{"with url", "/home", false, true, "dirstat /home"},
		{"root", "/home", true, false, "dirstat [root]"},
		{"root with url", "/", true, true, "dirstat [root] /"},
		{"nothing loaded", "", false, true, "dirstat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, windowTitle(tt.url, tt.root, tt.showURL))
		})
	}
}

func TestShowStatusTimeout(t *testing.T) {
	v, state, now := newTestView()

	v.ShowStatus("Finished.", 3*time.Second)
	assert.Equal(t, "Finished.", state.Status.Text)
	assert.Equal(t, now.Add(3*time.Second), state.Status.Until)

	v.ShowStatus("Reading…", 0)
	assert.Equal(t, "Reading…", state.Status.Text)
	assert.True(t, state.Status.Until.IsZero())
}

func TestViewSetExpandedScrolls(t *testing.T) {
	v, state, _ := newTestView()
	_, sub, _, _ := sample()

	v.SetExpanded(sub, true)
	assert.True(t, state.View.IsExpanded(sub))
	assert.Same(t, sub, state.ScrollTo)
}

func TestViewDetails(t *testing.T) {
	v, state, _ := newTestView()
	top, sub, inSub, _ := sample()

	v.ShowDetails(sub)
	assert.Equal(t, "sub", state.DetailsTitle)
	assert.Contains(t, state.Details, "Path: /top/sub")
	assert.Contains(t, state.Details, "Type: Directory")

	v.ShowSelectionDetails([]*tree.Node{top, inSub})
	assert.Equal(t, "2 items selected", state.DetailsTitle)
	// inSub is inside top and is not counted twice
	assert.Contains(t, state.Details, "Total size: 150 B")
	assert.Contains(t, state.Details, "Files: 0")

	state.Flags.ShowDetailsPanel = true
	assert.True(t, v.DetailsVisible())
}

func TestSelectionDetailsListIsCapped(t *testing.T) {
	tr := tree.New()
	tr.Reset("/many", tree.KindFilesystem)
	top := &tree.Node{Name: "many", Path: "/many", IsDir: true}
	tr.Attach(nil, top)
	var items []*tree.Node
	for i := 0; i < maxListedSelection+5; i++ {
		n := &tree.Node{Name: "f", Path: "/many/f" + string(rune('a'+i)), Size: 1}
		tr.Attach(tr.DotEntry(top), n)
		items = append(items, n)
	}

	_, lines := selectionDetails(items)
	assert.Equal(t, "… and 5 more", lines[len(lines)-1])
}

func TestTrashable(t *testing.T) {
	top, sub, inSub, inDot := sample()
	dot := inDot.Parent()
	pkg := &tree.Node{Name: "pkg", Path: "pkg:/x", Pkg: true}

	got := trashable([]*tree.Node{top, sub, inSub, dot, pkg, inDot})
	assert.Equal(t, []*tree.Node{sub, inSub, inDot}, got)
}

func TestParentPaths(t *testing.T) {
	_, sub, inSub, inDot := sample()

	// the <Files> entry resolves to its directory
	got := parentPaths([]*tree.Node{inSub, inDot, sub})
	assert.Equal(t, []string{"/top/sub", "/top"}, got)
}

func TestWatchDir(t *testing.T) {
	top, sub, inSub, inDot := sample()

	assert.Equal(t, "/top/sub", watchDir(sub))
	assert.Equal(t, "/top/sub", watchDir(inSub))
	assert.Equal(t, "/top", watchDir(inDot))
	assert.Equal(t, "/top", watchDir(top))
	assert.Equal(t, "", watchDir(top.Parent()))
	assert.Equal(t, "", watchDir(nil))
}

func TestReportsOnePerKind(t *testing.T) {
	o := newTestOrchestrator()

	o.openReport(ui.ReportTrash, "Trash", []string{"ok"}, nil)
	o.openReport(ui.ReportSizeStats, "Sizes", nil, nil)
	o.openReport(ui.ReportSizeStats, "Sizes again", nil, nil)

	list := o.reportList()
	require.Len(t, list, 2)
	assert.Equal(t, ui.ReportSizeStats, list[0].Kind)
	assert.Equal(t, "Sizes again", list[0].Title)
	assert.Equal(t, 3, list[0].ID)
	assert.Equal(t, ui.ReportTrash, list[1].Kind)
	assert.Equal(t, 3, o.state.ActiveReport)

	o.closeReport(list[1].ID)
	require.Len(t, o.reportList(), 1)

	o.closeReportKind(ui.ReportSizeStats)
	assert.Empty(t, o.reportList())
}

func TestSchedulerAfterFunc(t *testing.T) {
	calls := make(chan func(), 4)
	done := make(chan struct{})
	defer close(done)
	s := &loopScheduler{calls: calls, done: done}

	ran := false
	s.AfterFunc(time.Millisecond, func() { ran = true })

	select {
	case fn := <-calls:
		fn()
	case <-time.After(time.Second):
		t.Fatal("callback was not posted")
	}
	assert.True(t, ran)
}

func TestSchedulerStopDropsQueuedCallback(t *testing.T) {
	calls := make(chan func(), 4)
	done := make(chan struct{})
	defer close(done)
	s := &loopScheduler{calls: calls, done: done}

	ran := false
	tm := s.AfterFunc(time.Millisecond, func() { ran = true })

	var fn func()
	select {
	case fn = <-calls:
	case <-time.After(time.Second):
		t.Fatal("callback was not posted")
	}
	tm.Stop()
	fn()
	assert.False(t, ran)
}

func TestSchedulerEvery(t *testing.T) {
	calls := make(chan func(), 8)
	done := make(chan struct{})
	defer close(done)
	s := &loopScheduler{calls: calls, done: done}

	count := 0
	tm := s.Every(time.Millisecond, func() { count++ })
	for i := 0; i < 3; i++ {
		select {
		case fn := <-calls:
			fn()
		case <-time.After(time.Second):
			t.Fatal("tick was not posted")
		}
	}
	tm.Stop()
	assert.Equal(t, 3, count)
	tm.Stop()
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester", expandHome("~"))
	assert.Equal(t, "/home/tester/src", expandHome("~/src"))
	assert.Equal(t, "/etc", expandHome("/etc"))
	assert.Equal(t, "~other/x", expandHome("~other/x"))
}

func newTestOrchestrator() *Orchestrator {
	o := &Orchestrator{reports: make(map[ui.ReportKind]*ui.Report)}
	o.view = &windowView{mu: &o.mu, state: &o.state, now: time.Now}
	return o
}

func TestRefreshAllWithoutRootAsksForDirectory(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"nothing loaded", session.ErrNoRoot},
		{"root gone", &session.OpenError{Reason: session.PathNotFound, Location: "/gone"}},
		{"wrapped", fmt.Errorf("refresh: %w", session.ErrNoRoot)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator()
			o.commandFailed(actions.RefreshAll, tt.err)

			assert.Equal(t, ui.PromptOpen, o.state.Prompt)
			assert.Equal(t, tt.err.Error(), o.state.PromptError)
			assert.Empty(t, o.state.Status.Text)
		})
	}
}

func TestOtherCommandFailuresGoToStatus(t *testing.T) {
	o := newTestOrchestrator()
	o.commandFailed(actions.RefreshSelected, session.ErrBusy)
	assert.Equal(t, ui.PromptNone, o.state.Prompt)
	assert.Equal(t, session.ErrBusy.Error(), o.state.Status.Text)

	o = newTestOrchestrator()
	o.commandFailed(actions.RefreshAll, session.ErrBusy)
	assert.Equal(t, ui.PromptNone, o.state.Prompt)
	assert.Equal(t, session.ErrBusy.Error(), o.state.Status.Text)
}

func TestForgetRecent(t *testing.T) {
	o := newTestOrchestrator()
	o.state.Recent = []string{"/a", "/b", "/c"}
	shared := o.state.Recent

	o.handleUIEvent(ui.UIEvent{Action: ui.ActionForgetRecent, Path: "/b"})
	assert.Equal(t, []string{"/a", "/c"}, o.state.Recent)
	assert.Equal(t, []string{"/a", "/b", "/c"}, shared)

	o.handleUIEvent(ui.UIEvent{Action: ui.ActionForgetRecent, Path: "/missing"})
	assert.Equal(t, []string{"/a", "/c"}, o.state.Recent)
}

func TestSetEnabledStoresEnablement(t *testing.T) {
	v, state, _ := newTestView()
	var e actions.Enablement
	e.Set(actions.GoBack, true)
	v.SetEnabled(e)
	assert.True(t, state.Enabled.Enabled(actions.GoBack))
	assert.False(t, state.Enabled.Enabled(actions.GoForward))
}
