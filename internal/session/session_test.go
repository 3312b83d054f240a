package session

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dirstat/internal/actions"
	"github.com/justyntemme/dirstat/internal/selection"
	"github.com/justyntemme/dirstat/internal/tree"
)

type harness struct {
	engine *fakeEngine
	view   *fakeView
	sched  *fakeScheduler
	clock  *fakeClock
	sel    *selection.Model
	recent *fakeRecent
	c      *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		engine: newFakeEngine(),
		view:   &fakeView{},
		sched:  &fakeScheduler{},
		clock:  &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		sel:    selection.New(),
		recent: &fakeRecent{},
	}
	h.c = New(h.engine, h.view, h.sched, h.sel, Options{Now: h.clock.Now, Recent: h.recent})
	return h
}

// populate fills the fake engine's tree like a scan of /data would.
func (h *harness) populate() (top, logs *tree.Node) {
	tr := h.engine.tree
	top = &tree.Node{Name: "data", Path: "/data", IsDir: true}
	tr.Attach(nil, top)
	logs = &tree.Node{Name: "logs", Path: "/data/logs", IsDir: true}
	tr.Attach(top, logs)
	tr.Attach(logs, &tree.Node{Name: "app.log", Path: "/data/logs/app.log", Size: 2048})
	return top, logs
}

// begin delivers the engine's start notification for the last request.
func (h *harness) begin(kind tree.RootKind) {
	h.engine.start()
	h.c.BeginSession(kind, h.engine.lastID)
}

// openData runs a complete open of /data.
func (h *harness) openData(t *testing.T) (top, logs *tree.Node) {
	t.Helper()
	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	h.begin(tree.KindFilesystem)
	top, logs = h.populate()
	h.clock.now = h.clock.now.Add(1500 * time.Millisecond)
	h.c.OnScanFinished(h.engine.lastID)
	return top, logs
}

func TestOpenDirectoryExpandsFirstLevel(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	assert.Equal(t, Idle, h.c.State())
	assert.False(t, h.c.IsBusy())

	h.begin(tree.KindFilesystem)
	assert.Equal(t, Busy, h.c.State())
	assert.True(t, h.c.SettlePending())
	assert.Equal(t, 1, h.view.closedUnrd)
	settle := h.sched.last(false)
	require.NotNil(t, settle)
	assert.Equal(t, DefaultSettleDelay, settle.d)

	h.populate()
	h.view.expands = nil
	h.clock.now = h.clock.now.Add(1500 * time.Millisecond)
	h.c.OnScanFinished(h.engine.lastID)

	assert.Equal(t, Idle, h.c.State())
	assert.False(t, h.c.SettlePending())
	assert.Zero(t, h.sched.active())
	assert.Equal(t, []int{1}, h.view.expands)
	assert.Empty(t, h.c.FutureSelection())
	assert.Contains(t, h.view.statuses, "Finished. Elapsed time: 1.5s")
	assert.Equal(t, []string{"/data"}, h.recent.paths)
}

func TestTickerShowsElapsedTime(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	h.begin(tree.KindFilesystem)

	ticker := h.sched.last(true)
	require.NotNil(t, ticker)
	h.clock.now = h.clock.now.Add(3 * time.Second)
	ticker.fire()
	assert.Equal(t, "Reading... 3s", h.view.lastStatus())

	h.c.OnScanFinished(h.engine.lastID)
	assert.True(t, ticker.stopped)
}

func TestSettleTimerExpandsOnce(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	h.begin(tree.KindFilesystem)
	h.view.expands = nil

	settle := h.sched.last(false)
	settle.fire()
	settle.fire()
	assert.Equal(t, []int{1}, h.view.expands)
	assert.False(t, h.c.SettlePending())
}

func TestExplicitExpandCancelsSettleTimer(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	h.begin(tree.KindFilesystem)
	h.view.expands = nil

	settle := h.sched.last(false)
	h.c.ExpandToLevel(3)
	assert.True(t, settle.stopped)

	// already queued callback must not act
	settle.fire()
	assert.Equal(t, []int{3}, h.view.expands)

	// cancelling again is harmless
	h.c.ExpandToLevel(2)
	assert.Equal(t, []int{3, 2}, h.view.expands)
}

func TestRefreshSelectedRestoresSelection(t *testing.T) {
	h := newHarness(t)
	_, logs := h.openData(t)
	h.sel.SetCurrentBranch(logs)

	require.NoError(t, h.c.RequestRefreshSelected())
	assert.Equal(t, "/data/logs", h.c.FutureSelection())
	assert.Equal(t, [][]string{{"/data/logs"}}, h.engine.refreshes)

	h.begin(tree.KindFilesystem)
	assert.False(t, h.c.SettlePending(), "a current branch suppresses the settle timer")

	fresh := &tree.Node{Name: "logs", Path: "/data/logs", IsDir: true}
	h.engine.tree.Replace(logs, fresh)
	h.c.OnScanFinished(h.engine.lastID)

	assert.Same(t, fresh, h.sel.CurrentItem())
	assert.Same(t, fresh, h.sel.CurrentBranch())
	assert.Empty(t, h.c.FutureSelection())
	assert.Empty(t, h.view.expanded, "not a mount point")
}

func TestRefreshSelectedVanishedTarget(t *testing.T) {
	h := newHarness(t)
	_, logs := h.openData(t)
	h.sel.SetCurrentBranch(logs)

	require.NoError(t, h.c.RequestRefreshSelected())
	h.begin(tree.KindFilesystem)
	h.engine.tree.Remove(logs)
	h.c.OnScanFinished(h.engine.lastID)

	assert.Nil(t, h.sel.CurrentItem())
	assert.Empty(t, h.sel.SelectedItems())
	assert.Empty(t, h.c.FutureSelection())
}

func TestAbortedScanStillRunsCompletion(t *testing.T) {
	h := newHarness(t)
	_, logs := h.openData(t)
	h.sel.SetCurrentBranch(logs)

	require.NoError(t, h.c.RequestRefreshSelected())
	h.begin(tree.KindFilesystem)
	h.c.RequestStop()
	h.c.OnScanAborted(h.engine.lastID)

	assert.Equal(t, Idle, h.c.State())
	assert.Same(t, logs, h.sel.CurrentItem())
	assert.Empty(t, h.c.FutureSelection())
	assert.Equal(t, "Aborted. Elapsed time: 0.0s", h.view.lastStatus())
}

func TestMountPointFutureSelectionIsExpanded(t *testing.T) {
	h := newHarness(t)
	top, _ := h.openData(t)
	mnt := &tree.Node{Name: "mnt", Path: "/data/mnt", IsDir: true, MountPoint: true}
	h.engine.tree.Attach(top, mnt)
	h.sel.SetCurrentBranch(mnt)

	require.NoError(t, h.c.RequestContinueAtMountPoint())
	assert.Equal(t, []ReadOptions{{CrossFilesystems: true}}, h.engine.refreshOp)
	h.begin(tree.KindFilesystem)

	fresh := &tree.Node{Name: "mnt", Path: "/data/mnt", IsDir: true, MountPoint: true}
	h.engine.tree.Replace(mnt, fresh)
	h.c.OnScanFinished(h.engine.lastID)

	assert.Same(t, fresh, h.sel.CurrentItem())
	assert.Equal(t, []*tree.Node{fresh}, h.view.expanded)
}

func TestRequestStop(t *testing.T) {
	h := newHarness(t)

	h.c.RequestStop()
	assert.Zero(t, h.engine.aborts)
	assert.Equal(t, Idle, h.c.State())

	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	h.begin(tree.KindFilesystem)
	h.c.RequestStop()
	h.c.RequestStop()

	assert.Equal(t, 1, h.engine.aborts)
	assert.Equal(t, Aborting, h.c.State())
	assert.True(t, h.c.IsBusy())
	assert.Equal(t, "Reading aborted.", h.view.lastStatus())
	assert.False(t, h.view.enabled.Enabled(actions.StopReading))
	assert.False(t, h.view.enabled.Enabled(actions.RefreshAll))

	h.c.OnScanAborted(h.engine.lastID)
	assert.Equal(t, Idle, h.c.State())
	assert.False(t, h.c.SettlePending())
	assert.Zero(t, h.sched.active())
}

func TestLifecycleAlwaysEndsIdle(t *testing.T) {
	for _, abort := range []bool{false, true} {
		h := newHarness(t)
		require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
		h.begin(tree.KindFilesystem)
		if abort {
			h.c.OnScanAborted(h.engine.lastID)
		} else {
			h.c.OnScanFinished(h.engine.lastID)
		}
		assert.Equal(t, Idle, h.c.State())
		assert.False(t, h.c.SettlePending())
	}
}

func TestRequestsRejectedWhileBusy(t *testing.T) {
	h := newHarness(t)
	_, logs := h.openData(t)
	h.sel.SetCurrentBranch(logs)

	require.NoError(t, h.c.RequestRefreshAll())
	// start accepted but not announced yet
	assert.ErrorIs(t, h.c.RequestOpen(tree.KindFilesystem, "/other"), ErrBusy)
	assert.False(t, h.view.enabled.Enabled(actions.StopReading))

	h.begin(tree.KindFilesystem)
	assert.ErrorIs(t, h.c.RequestRefreshAll(), ErrBusy)
	assert.ErrorIs(t, h.c.RequestReadCache("/tmp/x.cache"), ErrBusy)
	assert.ErrorIs(t, h.c.RequestWriteCache("/tmp/x.cache"), ErrBusy)
	assert.ErrorIs(t, h.c.RefreshPaths([]string{"/data"}), ErrBusy)
	assert.Equal(t, []string{"/data", "/data"}, h.engine.opens)
}

func TestOpenFailureNeverStartsSession(t *testing.T) {
	h := newHarness(t)
	h.engine.openErr = os.ErrNotExist

	err := h.c.RequestOpen(tree.KindFilesystem, "/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathNotFound)
	var oe *OpenError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "/missing", oe.Location)
	assert.Equal(t, Idle, h.c.State())
	assert.Empty(t, h.recent.paths)

	h.engine.openErr = nil
	assert.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
}

func TestStaleNotificationsAreDropped(t *testing.T) {
	h := newHarness(t)
	h.c.BeginSession(tree.KindFilesystem, uuid.New())
	assert.Equal(t, Idle, h.c.State())

	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	h.begin(tree.KindFilesystem)
	h.c.OnScanFinished(uuid.New())
	assert.Equal(t, Busy, h.c.State())

	h.c.OnScanFinished(h.engine.lastID)
	h.c.OnScanFinished(h.engine.lastID)
	assert.Equal(t, Idle, h.c.State())
}

func TestRefreshAllWithoutRoot(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.c.RequestRefreshAll(), ErrNoRoot)
	assert.ErrorIs(t, h.c.RequestWriteCache("/tmp/x"), ErrNoRoot)
	assert.ErrorIs(t, h.c.RequestRefreshSelected(), ErrNoSelection)
}

func TestPermissionWarningIsEdgeTriggered(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	h.begin(tree.KindFilesystem)
	top, logs := h.populate()
	locked := &tree.Node{Name: "locked", Path: "/data/locked", IsDir: true}
	h.engine.tree.Attach(top, locked)
	h.engine.tree.SetState(locked, tree.ReadPermissionDenied)
	h.c.OnScanFinished(h.engine.lastID)

	assert.Equal(t, 1, h.view.warnings)
	assert.False(t, h.c.WarningArmed())

	// a refresh of a single item does not re-arm
	h.c.PermissionWarningClosed()
	h.sel.SetCurrentBranch(logs)
	require.NoError(t, h.c.RequestRefreshSelected())
	h.begin(tree.KindFilesystem)
	h.c.OnScanFinished(h.engine.lastID)
	assert.Equal(t, 1, h.view.warnings)

	// refresh all does
	require.NoError(t, h.c.RequestRefreshAll())
	h.begin(tree.KindFilesystem)
	top, _ = h.populate()
	locked = &tree.Node{Name: "locked", Path: "/data/locked", IsDir: true}
	h.engine.tree.Attach(top, locked)
	h.engine.tree.SetState(locked, tree.ReadPermissionDenied)
	h.c.OnScanFinished(h.engine.lastID)
	assert.Equal(t, 2, h.view.warnings)
}

func TestPermissionWarningStaysWhileVisible(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 2; i++ {
		require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
		h.begin(tree.KindFilesystem)
		top, _ := h.populate()
		locked := &tree.Node{Name: "locked", Path: "/data/locked", IsDir: true}
		h.engine.tree.Attach(top, locked)
		h.engine.tree.SetState(locked, tree.ReadError)
		h.c.OnScanFinished(h.engine.lastID)
	}
	assert.Equal(t, 1, h.view.warnings)
}

func TestPackageURLSkipsSettleTimer(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "pkg:/lib*"))
	assert.Equal(t, []int{0}, h.view.expands, "package view stays collapsed")
	assert.Equal(t, []tree.RootKind{tree.KindPackageSet}, h.engine.kinds)

	h.begin(tree.KindPackageSet)
	assert.False(t, h.c.SettlePending())
	assert.Equal(t, tree.KindPackageSet, h.c.RootKind())
	assert.Equal(t, tree.KindPackageSet, h.engine.tree.Kind())
	assert.Empty(t, h.recent.paths)
}

func TestSettleDecisionIgnoresStaleTree(t *testing.T) {
	h := newHarness(t)
	h.openData(t)

	// the start notification arrives before the engine dropped /data
	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "pkg:/lib*"))
	h.c.BeginSession(tree.KindPackageSet, h.engine.lastID)
	assert.Equal(t, "/data", h.engine.tree.URL())
	assert.False(t, h.c.SettlePending())
	h.engine.start()
	h.c.OnScanFinished(h.engine.lastID)

	// and the other way round
	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	h.c.BeginSession(tree.KindFilesystem, h.engine.lastID)
	assert.True(t, tree.IsPkgURL(h.engine.tree.URL()))
	assert.True(t, h.c.SettlePending())
}

func TestHistoryFollowsCurrentItem(t *testing.T) {
	h := newHarness(t)
	top, logs := h.openData(t)
	app := h.engine.tree.Locate("/data/logs/app.log", false)
	require.NotNil(t, app)

	// A -> B -> A -> C
	h.sel.SetCurrentItem(top, true)
	h.sel.SetCurrentItem(logs, true)
	h.sel.SetCurrentItem(top, true)
	h.sel.SetCurrentItem(app, true)

	// selection changes alone are not recorded
	h.sel.SetSelectedItems([]*tree.Node{logs, app})

	assert.False(t, h.c.CanGoForward())
	require.True(t, h.c.HistoryBack())
	assert.Same(t, top, h.sel.CurrentItem())
	assert.True(t, h.c.CanGoForward())
	assert.True(t, h.view.enabled.Enabled(actions.GoForward))

	require.True(t, h.c.HistoryBack())
	assert.Same(t, logs, h.sel.CurrentItem())

	require.True(t, h.c.HistoryForward())
	assert.Same(t, top, h.sel.CurrentItem())

	// new location prunes the forward entry
	h.sel.SetCurrentItem(logs, true)
	assert.False(t, h.c.CanGoForward())
}

func TestHistoryStepsOverRemovedLocations(t *testing.T) {
	h := newHarness(t)
	top, logs := h.openData(t)
	app := h.engine.tree.Locate("/data/logs/app.log", false)
	require.NotNil(t, app)

	h.sel.SetCurrentItem(top, true)
	h.sel.SetCurrentItem(logs, true)
	h.sel.SetCurrentItem(app, true)
	h.engine.tree.Remove(logs)

	require.True(t, h.c.HistoryBack())
	assert.Same(t, top, h.sel.CurrentItem())
	assert.False(t, h.c.CanGoBack())
	assert.True(t, h.c.CanGoForward())

	// nothing ahead resolves, so the cursor stays on top
	assert.False(t, h.c.HistoryForward())
	assert.Same(t, top, h.sel.CurrentItem())
	assert.Equal(t, "/data/logs/app.log no longer exists", h.view.lastStatus())
	loc, ok := h.c.History().Current()
	require.True(t, ok)
	assert.Equal(t, "/data", loc)
	assert.True(t, h.c.CanGoForward())
}

func TestNewOpenClearsHistory(t *testing.T) {
	h := newHarness(t)
	top, logs := h.openData(t)
	h.sel.SetCurrentItem(top, true)
	h.sel.SetCurrentItem(logs, true)
	require.True(t, h.c.CanGoBack())

	require.NoError(t, h.c.RequestOpen(tree.KindFilesystem, "/data"))
	assert.False(t, h.c.CanGoBack())
	assert.Zero(t, h.c.History().Len())
	assert.Nil(t, h.sel.CurrentItem())
}

func TestNavigation(t *testing.T) {
	h := newHarness(t)
	top, logs := h.openData(t)

	h.c.NavigateToToplevel()
	assert.Same(t, top, h.sel.CurrentItem())
	h.c.NavigateUp()
	assert.Same(t, top, h.sel.CurrentItem(), "toplevel has no visible parent")

	require.True(t, h.c.NavigateToURL("/data/logs/app.log"))
	h.c.NavigateUp()
	assert.Same(t, logs, h.sel.CurrentItem())
	assert.False(t, h.c.NavigateToURL("/nowhere"))
	assert.False(t, h.c.NavigateToURL(""))
}

func TestReadAndWriteCache(t *testing.T) {
	h := newHarness(t)
	h.openData(t)
	require.NoError(t, h.c.RequestWriteCache("/tmp/data.cache"))
	assert.Equal(t, []string{"/tmp/data.cache"}, h.engine.written)
	assert.Equal(t, "Directory tree written to file /tmp/data.cache", h.view.lastStatus())

	require.NoError(t, h.c.RequestReadCache("/tmp/data.cache"))
	h.begin(tree.KindCache)
	assert.Equal(t, tree.KindCache, h.c.RootKind())
	h.c.OnScanFinished(h.engine.lastID)
	assert.Equal(t, Idle, h.c.State())
}

func TestRefreshPathsSelectsFirst(t *testing.T) {
	h := newHarness(t)
	_, logs := h.openData(t)
	h.sel.SetCurrentBranch(logs)

	require.NoError(t, h.c.RefreshPaths([]string{"/data", "/data/logs"}))
	assert.Equal(t, "/data", h.c.FutureSelection())
	h.begin(tree.KindFilesystem)
	h.c.OnScanFinished(h.engine.lastID)
	assert.Equal(t, "/data", h.sel.CurrentItem().Path)
}

func TestDetailsFollowSelection(t *testing.T) {
	h := newHarness(t)
	h.view.details = true
	top, logs := h.openData(t)

	h.view.shown = nil
	h.sel.SetCurrentItem(top, true)
	require.NotEmpty(t, h.view.shown)
	assert.Same(t, top, h.view.shown[len(h.view.shown)-1])

	h.sel.SetSelectedItems([]*tree.Node{top, logs})
	require.Len(t, h.view.multi, 1)
	assert.Equal(t, "2 items selected (2.0 KiB total)", h.view.lastStatus())
}
