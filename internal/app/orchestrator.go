package app

import (
	"log"
	"os"
	"slices"
	"sync"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"

	"github.com/justyntemme/dirstat/internal/config"
	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/fs"
	profiles "github.com/justyntemme/dirstat/internal/layout"
	"github.com/justyntemme/dirstat/internal/selection"
	"github.com/justyntemme/dirstat/internal/session"
	"github.com/justyntemme/dirstat/internal/stats"
	"github.com/justyntemme/dirstat/internal/store"
	"github.com/justyntemme/dirstat/internal/trash"
	"github.com/justyntemme/dirstat/internal/tree"
	"github.com/justyntemme/dirstat/internal/ui"
)

// Orchestrator wires the window to the scan session. The Gio frame loop
// runs on the Run goroutine; everything else (controller, selection,
// history, reports) is owned by the control loop goroutine. Both touch the
// shared ui.State only under mu.
type Orchestrator struct {
	window  *app.Window
	fs      *fs.System
	store   *store.DB
	ui      *ui.Renderer
	cfg     *config.Manager
	conf    config.Config
	stats   *stats.Collector
	bin     *trash.Bin
	watcher *DirectoryWatcher
	debug   bool

	mu    sync.Mutex
	state ui.State

	sel      *selection.Model
	ctrl     *session.Controller
	view     *windowView
	profiles *profiles.Profiles

	calls    chan func()
	uiEvents chan []ui.UIEvent
	done     chan struct{}

	reports     map[ui.ReportKind]*ui.Report
	nextReport  int
	title       string
	lastCurrent *tree.Node
	watched     string
	storeOK     bool
}

func NewOrchestrator(debugMode bool) *Orchestrator {
	cfg := config.NewManager()
	if err := cfg.Load(); err != nil {
		log.Printf("Config: %v", err)
	}
	conf := cfg.Get()
	if conf.Behavior.VerboseSelection {
		debug.Enable(debug.SESSION)
	}

	r := ui.NewRenderer()
	r.Debug = debugMode
	r.SetDarkMode(cfg.IsDarkMode())
	r.SetHotkeys(conf.Hotkeys)
	if err := cfg.ParseError(); err != nil {
		r.SetConfigError(err.Error())
	}

	system := fs.NewSystem(fs.Options{
		Follow:           conf.Scan.FollowSymlinks,
		CrossFilesystems: conf.Scan.CrossFilesystems,
		Excludes:         conf.Scan.ExcludeRules,
		Packages:         fs.NewDpkgSource(),
	})

	o := &Orchestrator{
		window:   new(app.Window),
		fs:       system,
		store:    store.NewDB(),
		ui:       r,
		cfg:      cfg,
		conf:     conf,
		stats:    stats.NewCollector(system.Tree()),
		bin:      trash.Default(),
		debug:    debugMode,
		sel:      selection.New(),
		profiles: profiles.NewProfiles(),
		calls:    make(chan func(), 16),
		uiEvents: make(chan []ui.UIEvent, 32),
		done:     make(chan struct{}),
		reports:  make(map[ui.ReportKind]*ui.Report),
	}
	if id, ok := profiles.ParseProfileID(conf.UI.DefaultLayout); ok {
		o.profiles.Switch(id, o.profiles.ActiveFlags())
	}
	o.state = ui.State{
		Tree:     system.Tree(),
		View:     ui.NewTreeView(),
		Selected: make(map[*tree.Node]bool),
		Profile:  o.profiles.Active(),
		Flags:    o.profiles.ActiveFlags(),
	}
	for _, m := range fs.ListMounts() {
		o.state.QuickRoots = append(o.state.QuickRoots, ui.QuickRoot{Name: m.Name, Path: m.Path})
	}

	o.view = &windowView{
		mu:              &o.mu,
		state:           &o.state,
		invalidate:      o.window.Invalidate,
		now:             nowFunc,
		closeUnreadable: func() { o.closeReportKind(ui.ReportUnreadable) },
	}
	sched := &loopScheduler{calls: o.calls, done: o.done}
	o.ctrl = session.New(system, o.view, sched, o.sel, session.Options{
		SettleDelay:    conf.Scan.SettleDelay(),
		UpdateInterval: conf.Scan.UpdateInterval(),
		StatusTimeout:  conf.UI.StatusBarTimeout(),
		Recent:         o,
	})
	return o
}

func (o *Orchestrator) Run(startPath string) error {
	if o.debug {
		log.Println("Starting dirstat in DEBUG mode")
	}

	if err := o.store.Open(store.DefaultPath()); err != nil {
		log.Printf("Failed to open DB: %v", err)
	} else {
		defer o.store.Close()
		o.storeOK = true
		go o.store.Start()
		o.store.RequestChan <- store.Request{Op: store.FetchSettings}
		o.store.RequestChan <- store.Request{Op: store.FetchRecent}
	}

	if o.conf.Behavior.WatchChanges {
		w, err := NewDirectoryWatcher(500)
		if err != nil {
			log.Printf("File watcher unavailable: %v", err)
		} else {
			o.watcher = w
			defer w.Close()
		}
	}

	go o.fs.Start()
	go o.loop()

	o.post(func() { o.view.SetEnabled(o.ctrl.EnabledCommands()) })
	if startPath != "" {
		o.post(func() {
			if err := o.open(startPath); err != nil {
				o.showPrompt(ui.PromptOpen)
				o.setPromptError(err)
			}
		})
	}

	o.title = windowTitle("", isRoot(), o.conf.UI.URLInWindowTitle)
	o.window.Option(app.Title(o.title), app.Size(unit.Dp(1100), unit.Dp(760)))

	var ops op.Ops
	for {
		switch e := o.window.Event().(type) {
		case app.DestroyEvent:
			close(o.done)
			debug.Sync()
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			o.mu.Lock()
			events := o.ui.Layout(gtx, &o.state)
			o.mu.Unlock()
			e.Frame(gtx.Ops)

			if len(events) > 0 {
				if o.debug {
					for _, ev := range events {
						log.Printf("[DEBUG] Action: %d, Command: %s, Path: %s", ev.Action, ev.Command, ev.Path)
					}
				}
				select {
				case o.uiEvents <- events:
				case <-o.done:
				}
			}
		}
	}
}

// post runs fn on the control loop.
func (o *Orchestrator) post(fn func()) {
	select {
	case o.calls <- fn:
	case <-o.done:
	}
}

func (o *Orchestrator) watchNotify() <-chan string {
	if o.watcher == nil {
		return nil
	}
	return o.watcher.Notify()
}

// loop is the control goroutine. It is the only place the controller,
// the selection model and the reports are used.
func (o *Orchestrator) loop() {
	for {
		select {
		case <-o.done:
			return
		case events := <-o.uiEvents:
			for _, e := range events {
				o.handleUIEvent(e)
			}
		case n := <-o.fs.NotifyChan:
			o.handleNotification(n)
		case fn := <-o.calls:
			fn()
		case resp := <-o.store.ResponseChan:
			o.handleStoreResponse(resp)
		case dir := <-o.watchNotify():
			o.handleDirChanged(dir)
		}
		o.sync()
	}
}

func (o *Orchestrator) handleNotification(n fs.Notification) {
	debug.Log(debug.APP, "engine: %s session %s (%s)", n.Kind, n.Session, n.RootKind)
	switch n.Kind {
	case fs.Started:
		o.ctrl.BeginSession(n.RootKind, n.Session)
	case fs.Finished:
		o.ctrl.OnScanFinished(n.Session)
	case fs.Aborted:
		o.ctrl.OnScanAborted(n.Session)
		if n.Err != nil {
			o.view.ShowStatus("Reading failed: "+n.Err.Error(), session.LongMessage)
		}
	}
}

func (o *Orchestrator) handleStoreResponse(resp store.Response) {
	if resp.Err != nil {
		log.Printf("Store Error: %v", resp.Err)
		return
	}
	switch resp.Op {
	case store.FetchSettings:
		o.profiles.Load(resp.Settings)
		o.applyFlags(o.profiles.ActiveFlags())
	case store.FetchRecent:
		o.mu.Lock()
		o.state.Recent = resp.Recent
		o.mu.Unlock()
	}
}

// AddRecent remembers a successfully opened root and reloads the list.
func (o *Orchestrator) AddRecent(path string) {
	if !o.storeOK {
		return
	}
	o.store.AddRecent(path)
	o.store.RequestChan <- store.Request{Op: store.FetchRecent}
}

// forgetRecent drops path from the recent roots list.
func (o *Orchestrator) forgetRecent(path string) {
	o.mu.Lock()
	o.state.Recent = slices.DeleteFunc(slices.Clone(o.state.Recent), func(p string) bool { return p == path })
	o.mu.Unlock()
	if !o.storeOK {
		return
	}
	o.store.RequestChan <- store.Request{Op: store.RemoveRecent, Path: path}
}

func (o *Orchestrator) saveProfiles() {
	if !o.storeOK {
		return
	}
	s := store.Settings{}
	o.profiles.Save(s)
	o.store.RequestChan <- store.Request{Op: store.SaveSettings, Settings: s}
}

// sync copies the selection and session state into the shared ui.State
// after every control loop step.
func (o *Orchestrator) sync() {
	cur := o.sel.CurrentItem()
	items := o.sel.SelectedItems()
	selected := make(map[*tree.Node]bool, len(items))
	for _, n := range items {
		selected[n] = true
	}
	if o.conf.Behavior.VerboseSelection && cur != o.lastCurrent {
		debug.Log(debug.SESSION, "current item %v, %d selected", cur, len(items))
	}

	o.mu.Lock()
	o.state.Tree = o.fs.Tree()
	o.state.Current = cur
	o.state.Selected = selected
	o.state.Busy = o.ctrl.IsBusy()
	o.state.Reports = o.reportList()
	if cur != o.lastCurrent && cur != nil {
		o.state.ScrollTo = cur
	}
	o.mu.Unlock()
	o.lastCurrent = cur

	if t := windowTitle(o.fs.Tree().URL(), isRoot(), o.conf.UI.URLInWindowTitle); t != o.title {
		o.title = t
		o.window.Option(app.Title(t))
	}
	o.followBranch(cur)
	o.window.Invalidate()
}

func windowTitle(url string, root, showURL bool) string {
	title := "dirstat"
	if root {
		title += " [root]"
	}
	if showURL && url != "" {
		title += " " + url
	}
	return title
}

func isRoot() bool {
	return os.Geteuid() == 0
}

func Main(debug bool, startPath string) {
	go func() {
		o := NewOrchestrator(debug)
		if err := o.Run(startPath); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
