package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
)

func (c *Controller) checkIdle() error {
	if c.state != Idle || c.startPending() {
		return ErrBusy
	}
	return nil
}

// expect records a start the engine accepted.
func (c *Controller) expect(id uuid.UUID, kind tree.RootKind) {
	c.pending = id
	debug.Log(debug.SESSION, "waiting for session %s (%s)", id, kind)
}

// startFresh drops everything tied to the previous tree.
func (c *Controller) startFresh() {
	c.cancelSettle()
	c.future.Clear()
	c.sel.Clear()
}

// RequestOpen opens a new top-level root. Package URLs select the package
// view whatever kind says and stay collapsed to level 0; KindCache reads
// location as a cache file.
func (c *Controller) RequestOpen(kind tree.RootKind, location string) error {
	if err := c.checkIdle(); err != nil {
		return err
	}
	if kind == tree.KindCache {
		return c.RequestReadCache(location)
	}
	c.warningArmed = true
	c.hist.Clear()
	c.startFresh()

	if tree.IsPkgURL(location) {
		kind = tree.KindPackageSet
		c.view.ExpandToLevel(0)
	}
	id, err := c.engine.Open(kind, location)
	if err != nil {
		c.publish()
		return NewOpenError(location, err)
	}
	c.expect(id, kind)
	c.publish()
	if kind != tree.KindPackageSet {
		c.view.ExpandToLevel(1)
	}

	if kind == tree.KindFilesystem && c.opts.Recent != nil {
		c.opts.Recent.AddRecent(location)
	}
	return nil
}

// RequestRefreshAll reads the loaded root again.
func (c *Controller) RequestRefreshAll() error {
	if err := c.checkIdle(); err != nil {
		return err
	}
	url := c.engine.Tree().URL()
	if url == "" {
		return ErrNoRoot
	}
	c.warningArmed = true
	c.startFresh()

	kind := tree.KindFilesystem
	if tree.IsPkgURL(url) {
		kind = tree.KindPackageSet
	}
	debug.Log(debug.SESSION, "refreshing %s", url)
	id, err := c.engine.Open(kind, url)
	if err != nil {
		c.publish()
		return NewOpenError(url, err)
	}
	c.expect(id, kind)
	c.publish()
	return nil
}

// RequestRefreshSelected reads the single selected item again and selects it
// once the scan is done.
func (c *Controller) RequestRefreshSelected() error {
	return c.refreshSelected("refresh", ReadOptions{})
}

// RequestContinueAtMountPoint reads below the selected mount point.
func (c *Controller) RequestContinueAtMountPoint() error {
	return c.refreshSelected("continue at mount point", ReadOptions{CrossFilesystems: true})
}

// RequestReadExcluded reads the selected excluded directory.
func (c *Controller) RequestReadExcluded() error {
	return c.refreshSelected("read excluded", ReadOptions{IgnoreExcludes: true})
}

func (c *Controller) refreshSelected(what string, opts ReadOptions) error {
	if err := c.checkIdle(); err != nil {
		return err
	}
	items := c.sel.SelectedItems()
	if len(items) != 1 {
		return ErrNoSelection
	}
	n := items[0]
	c.future.Set(n)
	debug.Log(debug.SESSION, "%s %s", what, n.Path)

	id, err := c.engine.Refresh([]string{n.Path}, opts)
	if err != nil {
		c.future.Clear()
		return fmt.Errorf("%s %s: %w", what, n.Path, err)
	}
	c.expect(id, c.kind)
	c.publish()
	return nil
}

// RefreshPaths reads several subtrees again in one session and selects the
// first one afterwards. It is used after moving items to the trash.
func (c *Controller) RefreshPaths(paths []string) error {
	if err := c.checkIdle(); err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}
	c.future.SetPath(paths[0])
	id, err := c.engine.Refresh(paths, ReadOptions{})
	if err != nil {
		c.future.Clear()
		return fmt.Errorf("refresh: %w", err)
	}
	c.expect(id, c.kind)
	c.publish()
	return nil
}

// RequestReadCache replaces the tree with the contents of a cache file.
func (c *Controller) RequestReadCache(file string) error {
	if err := c.checkIdle(); err != nil {
		return err
	}
	c.hist.Clear()
	c.startFresh()

	id, err := c.engine.ReadCache(file)
	if err != nil {
		c.publish()
		return NewOpenError(file, err)
	}
	c.expect(id, tree.KindCache)
	c.publish()
	return nil
}

// RequestWriteCache writes the loaded tree to a cache file.
func (c *Controller) RequestWriteCache(file string) error {
	if err := c.checkIdle(); err != nil {
		return err
	}
	if c.engine.Tree().FirstToplevel() == nil {
		return ErrNoRoot
	}
	if err := c.engine.WriteCache(file); err != nil {
		return fmt.Errorf("writing cache file %s: %w", file, err)
	}
	c.view.ShowStatus("Directory tree written to file "+file, c.opts.StatusTimeout)
	return nil
}

// RequestStop asks the engine to abort. It only has an effect while Busy.
func (c *Controller) RequestStop() {
	if c.state != Busy {
		return
	}
	c.engine.Abort()
	c.state = Aborting
	c.view.ShowStatus("Reading aborted.", LongMessage)
	debug.Log(debug.SESSION, "session %s aborting", c.sessionID)
	c.publish()
}

// ExpandToLevel expands the tree. An explicit expand supersedes the settle
// timer.
func (c *Controller) ExpandToLevel(level int) {
	c.cancelSettle()
	c.view.ExpandToLevel(level)
}

// NavigateUp makes the parent of the current item current.
func (c *Controller) NavigateUp() {
	cur := c.sel.CurrentItem()
	if cur == nil {
		return
	}
	parent := cur.Parent()
	if parent == nil || parent == c.engine.Tree().Root() {
		return
	}
	c.sel.SetCurrentItem(parent, true)
}

// NavigateToToplevel makes the toplevel item current.
func (c *Controller) NavigateToToplevel() {
	top := c.engine.Tree().FirstToplevel()
	if top == nil {
		return
	}
	c.ExpandToLevel(1)
	c.sel.SetCurrentItem(top, true)
}

// NavigateToURL locates url, pseudo directories included, and makes it
// current. It reports whether the item was found.
func (c *Controller) NavigateToURL(url string) bool {
	if url == "" {
		return false
	}
	n := c.engine.Tree().Locate(url, true)
	if n == nil {
		debug.Log(debug.SESSION, "navigate: %q not found", url)
		return false
	}
	c.sel.SetCurrentItem(n, true)
	c.view.SetExpanded(n, true)
	return true
}

// CanGoBack reports whether history navigation backwards is possible.
func (c *Controller) CanGoBack() bool { return c.hist.CanGoBack() }

// CanGoForward reports whether history navigation forwards is possible.
func (c *Controller) CanGoForward() bool { return c.hist.CanGoForward() }

// HistoryBack moves back to the nearest earlier location that still exists.
// Locations removed by a refresh are stepped over.
func (c *Controller) HistoryBack() bool {
	return c.historyStep(c.hist.GoBack, c.hist.GoForward)
}

// HistoryForward moves forward to the nearest later location that still
// exists.
func (c *Controller) HistoryForward() bool {
	return c.historyStep(c.hist.GoForward, c.hist.GoBack)
}

// historyStep moves the cursor with step until a location resolves. If none
// does, the cursor goes back to where it was and the status bar says so.
func (c *Controller) historyStep(step, undo func() (string, bool)) bool {
	moved := 0
	var missing string
	for {
		loc, ok := step()
		if !ok {
			break
		}
		moved++
		if c.NavigateToURL(loc) {
			c.publish()
			return true
		}
		missing = loc
	}
	for ; moved > 0; moved-- {
		undo()
	}
	if missing != "" {
		c.view.ShowStatus(missing+" no longer exists", c.opts.StatusTimeout)
	}
	c.publish()
	return false
}
