package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
)

// DirectoryWatcher follows one directory on disk, normally the one holding
// the current item, and reports when its contents changed. Bursts of events
// are folded into one notification after the settle time.
type DirectoryWatcher struct {
	watcher *fsnotify.Watcher
	settle  time.Duration

	mu  sync.Mutex
	dir string

	notify chan string
	done   chan struct{}
}

func NewDirectoryWatcher(settleMs int) (*DirectoryWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if settleMs <= 0 {
		settleMs = 200
	}
	dw := &DirectoryWatcher{
		watcher: w,
		settle:  time.Duration(settleMs) * time.Millisecond,
		notify:  make(chan string, 1),
		done:    make(chan struct{}),
	}
	go dw.run()
	return dw, nil
}

func (dw *DirectoryWatcher) run() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	var changed string

	for {
		select {
		case <-dw.done:
			timer.Stop()
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			dir := dw.Following()
			if dir == "" || (event.Name != dir && filepath.Dir(event.Name) != dir) {
				continue
			}
			debug.Log(debug.APP, "fsnotify: %s %s", event.Op, event.Name)
			changed = dir
			timer.Reset(dw.settle)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.APP, "fsnotify error: %v", err)

		case <-timer.C:
			if changed == "" || changed != dw.Following() {
				changed = ""
				continue
			}
			select {
			case dw.notify <- changed:
			default:
				// a notification for this directory is already waiting
			}
			changed = ""
		}
	}
}

// Follow makes dir the watched directory. An empty dir stops watching.
func (dw *DirectoryWatcher) Follow(dir string) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dir == dw.dir {
		return nil
	}
	if dw.dir != "" {
		if err := dw.watcher.Remove(dw.dir); err != nil {
			debug.Log(debug.APP, "unwatch %s: %v", dw.dir, err)
		}
		dw.dir = ""
	}
	if dir == "" {
		return nil
	}
	if err := dw.watcher.Add(dir); err != nil {
		return err
	}
	dw.dir = dir
	debug.Log(debug.APP, "watching %s", dir)
	return nil
}

// Following returns the watched directory, or "" when there is none.
func (dw *DirectoryWatcher) Following() string {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.dir
}

func (dw *DirectoryWatcher) Notify() <-chan string {
	return dw.notify
}

func (dw *DirectoryWatcher) Close() error {
	close(dw.done)
	return dw.watcher.Close()
}

// watchDir is the on-disk directory to follow for the current item:
// the item itself when it is a directory, otherwise its parent. Package
// and pseudo nodes resolve to the real directory behind them.
func watchDir(cur *tree.Node) string {
	for cur != nil && (!cur.IsDir || cur.Pseudo) {
		cur = cur.Parent()
	}
	if cur == nil || cur.Parent() == nil {
		return ""
	}
	return cur.FSPath()
}

func (o *Orchestrator) followBranch(cur *tree.Node) {
	if o.watcher == nil {
		return
	}
	dir := watchDir(cur)
	if o.ctrl.IsBusy() {
		dir = ""
	}
	if dir == o.watched {
		return
	}
	o.watched = dir
	if err := o.watcher.Follow(dir); err != nil {
		debug.Log(debug.APP, "watch %s: %v", dir, err)
	}
}

// handleDirChanged tells the user that the followed directory changed on
// disk since it was read.
func (o *Orchestrator) handleDirChanged(dir string) {
	if o.ctrl.IsBusy() || dir != o.watched {
		return
	}
	o.view.ShowStatus("Contents of "+dir+" changed on disk. Refresh to update.", o.conf.UI.StatusBarTimeout())
}
