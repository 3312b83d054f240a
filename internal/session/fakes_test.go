package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/justyntemme/dirstat/internal/actions"
	"github.com/justyntemme/dirstat/internal/tree"
)

type fakeEngine struct {
	tree      *tree.Tree
	openErr   error
	opens     []string
	refreshes [][]string
	refreshOp []ReadOptions
	caches    []string
	written   []string
	aborts    int
	lastID    uuid.UUID
	kinds     []tree.RootKind

	// reset is applied by start, the way the real engine resets the tree
	// on its worker after announcing the session
	reset func()
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{tree: tree.New()}
}

func (e *fakeEngine) next() uuid.UUID {
	e.lastID = uuid.New()
	return e.lastID
}

func (e *fakeEngine) Open(kind tree.RootKind, location string) (uuid.UUID, error) {
	if e.openErr != nil {
		return uuid.Nil, e.openErr
	}
	e.opens = append(e.opens, location)
	e.kinds = append(e.kinds, kind)
	e.reset = func() { e.tree.Reset(location, kind) }
	return e.next(), nil
}

func (e *fakeEngine) Refresh(paths []string, opts ReadOptions) (uuid.UUID, error) {
	e.refreshes = append(e.refreshes, paths)
	e.refreshOp = append(e.refreshOp, opts)
	return e.next(), nil
}

func (e *fakeEngine) ReadCache(file string) (uuid.UUID, error) {
	if e.openErr != nil {
		return uuid.Nil, e.openErr
	}
	e.caches = append(e.caches, file)
	e.reset = func() { e.tree.Reset("/cached", tree.KindCache) }
	return e.next(), nil
}

func (e *fakeEngine) WriteCache(file string) error {
	if e.tree.FirstToplevel() == nil {
		return errors.New("empty tree")
	}
	e.written = append(e.written, file)
	return nil
}

// start runs the pending tree reset of the last accepted request.
func (e *fakeEngine) start() {
	if e.reset != nil {
		e.reset()
		e.reset = nil
	}
}

func (e *fakeEngine) Abort()           { e.aborts++ }
func (e *fakeEngine) Tree() *tree.Tree { return e.tree }

type fakeView struct {
	statuses   []string
	expands    []int
	expanded   []*tree.Node
	enabled    actions.Enablement
	publishes  int
	details    bool
	shown      []*tree.Node
	multi      [][]*tree.Node
	warnings   int
	closedUnrd int
}

func (v *fakeView) ShowStatus(msg string, _ time.Duration) { v.statuses = append(v.statuses, msg) }
func (v *fakeView) ExpandToLevel(level int)                 { v.expands = append(v.expands, level) }

func (v *fakeView) SetExpanded(n *tree.Node, expanded bool) {
	if expanded {
		v.expanded = append(v.expanded, n)
	}
}

func (v *fakeView) SetEnabled(e actions.Enablement) {
	v.enabled = e
	v.publishes++
}

func (v *fakeView) DetailsVisible() bool                    { return v.details }
func (v *fakeView) ShowDetails(n *tree.Node)                { v.shown = append(v.shown, n) }
func (v *fakeView) ShowSelectionDetails(items []*tree.Node) { v.multi = append(v.multi, items) }
func (v *fakeView) ShowPermissionWarning()                  { v.warnings++ }
func (v *fakeView) CloseUnreadableDirs()                    { v.closedUnrd++ }

func (v *fakeView) lastStatus() string {
	if len(v.statuses) == 0 {
		return ""
	}
	return v.statuses[len(v.statuses)-1]
}

type fakeTimer struct {
	d        time.Duration
	fn       func()
	periodic bool
	stopped  bool
}

func (t *fakeTimer) Stop() { t.stopped = true }

// fire runs the callback the way a queued callback would run, even after
// Stop, to exercise the stale-callback guard.
func (t *fakeTimer) fire() { t.fn() }

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Every(d time.Duration, fn func()) Timer {
	t := &fakeTimer{d: d, fn: fn, periodic: true}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) last(periodic bool) *fakeTimer {
	for i := len(s.timers) - 1; i >= 0; i-- {
		if s.timers[i].periodic == periodic {
			return s.timers[i]
		}
	}
	return nil
}

func (s *fakeScheduler) active() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeRecent struct{ paths []string }

func (r *fakeRecent) AddRecent(path string) { r.paths = append(r.paths, path) }
