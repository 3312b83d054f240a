// Package session implements the scan session lifecycle: what may run while
// a scan is in flight, the settle timer that expands the first tree level,
// the completion step that restores a selection after a refresh, and the
// browsing history fed from current item changes.
//
// A Controller is not safe for concurrent use. All methods, including timer
// callbacks, must run on the same control goroutine.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/justyntemme/dirstat/internal/actions"
	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/history"
	"github.com/justyntemme/dirstat/internal/selection"
	"github.com/justyntemme/dirstat/internal/tree"
)

// State is the lifecycle state of the scan session.
type State = actions.State

const (
	Idle     = actions.Idle
	Busy     = actions.Busy
	Aborting = actions.Aborting
)

// ReadOptions modify a subtree read.
type ReadOptions struct {
	CrossFilesystems bool // continue below mount points
	IgnoreExcludes   bool // read directories matched by exclude rules
}

// Engine is the scanning engine. Methods starting a scan validate their
// input synchronously; on success the engine later emits exactly one start
// notification followed by one finished or aborted notification, all
// carrying the returned session ID.
type Engine interface {
	Open(kind tree.RootKind, location string) (uuid.UUID, error)
	Refresh(paths []string, opts ReadOptions) (uuid.UUID, error)
	ReadCache(file string) (uuid.UUID, error)
	WriteCache(file string) error
	Abort()
	Tree() *tree.Tree
}

// View is the part of the window the controller drives.
type View interface {
	ShowStatus(msg string, timeout time.Duration)
	ExpandToLevel(level int)
	SetExpanded(n *tree.Node, expanded bool)
	SetEnabled(e actions.Enablement)
	DetailsVisible() bool
	ShowDetails(n *tree.Node)
	ShowSelectionDetails(items []*tree.Node)
	ShowPermissionWarning()
	CloseUnreadableDirs()
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop()
}

// Scheduler runs callbacks later on the control goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// RecentRecorder remembers successfully opened roots.
type RecentRecorder interface {
	AddRecent(path string)
}

// Options tune a Controller. Zero values take the defaults.
type Options struct {
	SettleDelay    time.Duration
	UpdateInterval time.Duration
	StatusTimeout  time.Duration
	Now            func() time.Time
	Recent         RecentRecorder
}

const (
	DefaultSettleDelay    = 200 * time.Millisecond
	DefaultUpdateInterval = 200 * time.Millisecond
	DefaultStatusTimeout  = 3 * time.Second
)

// Controller owns the scan session, the future selection and the history.
type Controller struct {
	engine Engine
	view   View
	sched  Scheduler
	sel    *selection.Model
	hist   *history.Stack
	future selection.Future
	opts   Options

	state     State
	kind      tree.RootKind
	sessionID uuid.UUID
	pending   uuid.UUID // accepted start that has not been announced yet
	started   time.Time

	ticker    Timer
	settle    Timer
	settleGen uint64

	warningArmed   bool
	warningVisible bool
}

// New creates a controller and subscribes it to the selection model.
func New(engine Engine, view View, sched Scheduler, sel *selection.Model, opts Options) *Controller {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = DefaultUpdateInterval
	}
	if opts.StatusTimeout <= 0 {
		opts.StatusTimeout = DefaultStatusTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{
		engine: engine,
		view:   view,
		sched:  sched,
		sel:    sel,
		hist:   history.New(),
		opts:   opts,
	}
	c.future.UseRootFallback = false
	sel.OnCurrentItemChanged(c.CurrentItemChanged)
	sel.OnSelectionChanged(c.SelectionChanged)
	return c
}

// State returns the session state.
func (c *Controller) State() State { return c.state }

// RootKind returns the kind of the loaded root.
func (c *Controller) RootKind() tree.RootKind { return c.kind }

// SessionID returns the ID of the live or last session.
func (c *Controller) SessionID() uuid.UUID { return c.sessionID }

// IsBusy reports whether a scan is in flight.
func (c *Controller) IsBusy() bool { return c.state != Idle }

// startPending reports whether the engine accepted a start that has not
// been announced yet.
func (c *Controller) startPending() bool { return c.pending != uuid.Nil }

// SettlePending reports whether the settle timer is armed.
func (c *Controller) SettlePending() bool { return c.settle != nil }

// FutureSelection exposes the pending future selection target.
func (c *Controller) FutureSelection() string { return c.future.Target() }

// History returns the browsing history.
func (c *Controller) History() *history.Stack { return c.hist }

// WarningArmed reports whether the next finished scan with unreadable
// directories shows the permission warning.
func (c *Controller) WarningArmed() bool { return c.warningArmed }

// BeginSession handles the engine's start notification.
func (c *Controller) BeginSession(kind tree.RootKind, id uuid.UUID) {
	if c.state != Idle {
		debug.Log(debug.SESSION, "start of %s ignored: session %s still %s", id, c.sessionID, c.state)
		return
	}
	if id != c.pending {
		debug.Log(debug.SESSION, "start of stale session %s ignored", id)
		return
	}
	c.pending = uuid.Nil
	c.state = Busy
	c.kind = kind
	c.sessionID = id
	c.started = c.opts.Now()
	debug.Log(debug.SESSION, "session %s started (%s)", id, kind)

	c.ticker = c.sched.Every(c.opts.UpdateInterval, c.showElapsed)
	c.publish()
	c.view.CloseUnreadableDirs()

	// the engine may not have reset the tree yet, so only kind is trusted here
	if kind != tree.KindPackageSet && c.sel.CurrentBranch() == nil {
		c.armSettle()
	}
}

// OnScanFinished handles the engine's finished notification.
func (c *Controller) OnScanFinished(id uuid.UUID) {
	if !c.accept(id, "finish") {
		return
	}
	elapsed := c.end()
	c.complete()
	c.view.ShowStatus("Finished. Elapsed time: "+FormatElapsed(elapsed, true), LongMessage)
	debug.Log(debug.SESSION, "session %s finished after %s", id, elapsed)

	if top := c.engine.Tree().FirstToplevel(); top != nil && top.ErrSubDirCount() > 0 {
		c.showPermissionWarning()
	}
}

// OnScanAborted handles the engine's aborted notification.
func (c *Controller) OnScanAborted(id uuid.UUID) {
	if !c.accept(id, "abort") {
		return
	}
	elapsed := c.end()
	c.complete()
	c.view.ShowStatus("Aborted. Elapsed time: "+FormatElapsed(elapsed, true), LongMessage)
	debug.Log(debug.SESSION, "session %s aborted after %s", id, elapsed)
}

func (c *Controller) accept(id uuid.UUID, what string) bool {
	if c.state == Idle {
		debug.Log(debug.SESSION, "%s of %s ignored: no session running", what, id)
		return false
	}
	if id != c.sessionID {
		debug.Log(debug.SESSION, "%s of stale session %s ignored", what, id)
		return false
	}
	return true
}

// end returns to Idle and stops both timers.
func (c *Controller) end() time.Duration {
	c.state = Idle
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.cancelSettle()
	return c.opts.Now().Sub(c.started)
}

// complete restores the selection after a scan.
func (c *Controller) complete() {
	switch {
	case !c.future.IsEmpty():
		c.cancelSettle()
		target := c.future.Target()
		n := c.future.Resolve(c.engine.Tree())
		if n != nil {
			c.sel.SetCurrentBranch(n)
			if n.MountPoint {
				c.view.SetExpanded(n, true)
			}
		} else {
			// the old items are gone with the rebuilt subtree
			debug.Log(debug.SESSION, "future selection %q vanished", target)
			c.sel.Clear()
		}
	case c.sel.CurrentBranch() == nil:
		debug.Log(debug.SESSION, "no current branch, expanding to level 1")
		c.view.ExpandToLevel(1)
	}
	c.publish()
	c.updateDetails()
}

func (c *Controller) armSettle() {
	c.cancelSettle()
	gen := c.settleGen
	c.settle = c.sched.AfterFunc(c.opts.SettleDelay, func() {
		if gen != c.settleGen || c.settle == nil {
			return
		}
		c.settle = nil
		debug.Log(debug.SESSION, "settle timer fired")
		c.view.ExpandToLevel(1)
	})
}

// cancelSettle is safe to call any number of times.
func (c *Controller) cancelSettle() {
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	c.settleGen++
}

func (c *Controller) showElapsed() {
	if c.state == Idle {
		return
	}
	c.view.ShowStatus("Reading... "+FormatElapsed(c.opts.Now().Sub(c.started), false), c.opts.StatusTimeout)
}

func (c *Controller) showPermissionWarning() {
	if !c.warningArmed || c.warningVisible {
		return
	}
	c.warningArmed = false
	c.warningVisible = true
	c.view.ShowPermissionWarning()
}

// PermissionWarningClosed tells the controller the warning was dismissed.
func (c *Controller) PermissionWarningClosed() {
	c.warningVisible = false
}

// EnabledCommands computes the current enablement.
func (c *Controller) EnabledCommands() actions.Enablement {
	t := c.engine.Tree()
	sel := actions.Selection{HasRoot: t.FirstToplevel() != nil}
	for _, n := range c.sel.SelectedItems() {
		sel.Items = append(sel.Items, actions.ItemOf(n))
	}
	if cur := c.sel.CurrentItem(); cur != nil {
		it := actions.ItemOf(cur)
		sel.Current = &it
	}
	state := c.state
	if c.startPending() {
		state = Busy
	}
	e := actions.Compute(state, sel, c.kind)
	// a pending start cannot be stopped yet
	if c.startPending() && c.state == Idle {
		e.Set(actions.StopReading, false)
	}
	e.Set(actions.GoBack, c.hist.CanGoBack())
	e.Set(actions.GoForward, c.hist.CanGoForward())
	return e
}

func (c *Controller) publish() {
	c.view.SetEnabled(c.EnabledCommands())
}

func (c *Controller) updateDetails() {
	if !c.view.DetailsVisible() {
		return
	}
	items := c.sel.SelectedItems()
	switch len(items) {
	case 0:
		c.view.ShowDetails(c.sel.CurrentItem())
	case 1:
		c.view.ShowDetails(items[0])
	default:
		c.view.ShowSelectionDetails(items)
	}
}

// CurrentItemChanged records the new current item in the history.
func (c *Controller) CurrentItemChanged(newCurrent, oldCurrent *tree.Node) {
	if newCurrent != nil {
		c.hist.Record(newCurrent.Path)
	}
	c.showSummary()
	if oldCurrent == nil {
		c.updateDetails()
	}
	c.publish()
}

// SelectionChanged updates summary, details and enablement. It never
// touches the history.
func (c *Controller) SelectionChanged() {
	c.showSummary()
	c.updateDetails()
	c.publish()
}

func (c *Controller) showSummary() {
	msg := SummaryMessage(c.sel.CurrentItem(), c.sel.SelectedItems())
	c.view.ShowStatus(msg, 0)
}
