// Package fs is the scanning engine. A System owns the scanned tree and a
// worker goroutine that fills it from the filesystem, from a package
// manager's file lists, or from a cache file.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/google/uuid"

	"github.com/justyntemme/dirstat/internal/cache"
	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/session"
	"github.com/justyntemme/dirstat/internal/tree"
)

type OpType int

const (
	OpOpen OpType = iota
	OpRefresh
	OpReadCache
)

func (op OpType) String() string {
	switch op {
	case OpRefresh:
		return "refresh"
	case OpReadCache:
		return "read-cache"
	}
	return "open"
}

// Request is a queued read. Requests are created by the System methods,
// which validate them first.
type Request struct {
	Op       OpType
	Session  uuid.UUID
	Kind     tree.RootKind
	Location string
	Paths    []string
	Read     session.ReadOptions

	ctx context.Context
}

type NotifyKind int

const (
	Started NotifyKind = iota
	Finished
	Aborted
)

func (k NotifyKind) String() string {
	switch k {
	case Started:
		return "started"
	case Finished:
		return "finished"
	}
	return "aborted"
}

// Notification reports a lifecycle step of a read session.
type Notification struct {
	Kind     NotifyKind
	Session  uuid.UUID
	RootKind tree.RootKind
	Err      error // set when a read ended early for a reason other than abort
}

// Options configure how the filesystem is read.
type Options struct {
	Follow           bool     // follow symlinks to directories
	CrossFilesystems bool     // read below mount points during a full scan
	Excludes         []string // name globs, or path globs when they contain a slash
	Packages         PackageSource
}

type System struct {
	RequestChan chan Request
	NotifyChan  chan Notification

	tree *tree.Tree
	opts Options

	mu     sync.Mutex
	cancel context.CancelFunc
	active uuid.UUID
}

func NewSystem(opts Options) *System {
	return &System{
		RequestChan: make(chan Request, 4),
		NotifyChan:  make(chan Notification, 16),
		tree:        tree.New(),
		opts:        opts,
	}
}

// Tree returns the tree the System writes into.
func (s *System) Tree() *tree.Tree { return s.tree }

// SetExcludes replaces the exclude rules used by later reads.
func (s *System) SetExcludes(rules []string) {
	s.mu.Lock()
	s.opts.Excludes = append([]string(nil), rules...)
	s.mu.Unlock()
}

// Open validates location and queues a full read of it.
func (s *System) Open(kind tree.RootKind, location string) (uuid.UUID, error) {
	switch {
	case kind == tree.KindCache:
		return s.ReadCache(location)
	case kind == tree.KindPackageSet || tree.IsPkgURL(location):
		if s.opts.Packages == nil || !s.opts.Packages.Available() {
			return uuid.Nil, &session.OpenError{Reason: session.NoPackageManager, Location: location}
		}
		return s.queue(Request{Op: OpOpen, Kind: tree.KindPackageSet, Location: location})
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return uuid.Nil, session.NewOpenError(location, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return uuid.Nil, session.NewOpenError(location, err)
	}
	if !fi.IsDir() {
		return uuid.Nil, &session.OpenError{Reason: session.NotADirectory, Location: location}
	}
	return s.queue(Request{Op: OpOpen, Kind: tree.KindFilesystem, Location: abs})
}

// Refresh queues a re-read of the directories holding paths.
func (s *System) Refresh(paths []string, opts session.ReadOptions) (uuid.UUID, error) {
	if s.tree.FirstToplevel() == nil {
		return uuid.Nil, session.ErrNoRoot
	}
	found := 0
	for _, p := range paths {
		if s.tree.Locate(p, true) != nil {
			found++
		}
	}
	if found == 0 {
		loc := ""
		if len(paths) > 0 {
			loc = paths[0]
		}
		return uuid.Nil, &session.OpenError{Reason: session.PathNotFound, Location: loc}
	}
	return s.queue(Request{
		Op:    OpRefresh,
		Kind:  s.tree.Kind(),
		Paths: append([]string(nil), paths...),
		Read:  opts,
	})
}

// ReadCache validates file and queues loading it.
func (s *System) ReadCache(file string) (uuid.UUID, error) {
	fi, err := os.Stat(file)
	if err != nil {
		return uuid.Nil, session.NewOpenError(file, err)
	}
	if !fi.Mode().IsRegular() {
		return uuid.Nil, &session.OpenError{Reason: session.NotARegularFile, Location: file}
	}
	if _, err := cache.Check(file); err != nil {
		return uuid.Nil, &session.OpenError{Reason: session.BadCacheFile, Location: file, Err: err}
	}
	return s.queue(Request{Op: OpReadCache, Kind: tree.KindCache, Location: file})
}

// WriteCache writes the current tree to file. It runs synchronously.
func (s *System) WriteCache(file string) error {
	if err := cache.Write(s.tree, file); err != nil {
		return fmt.Errorf("write cache %s: %w", file, err)
	}
	return nil
}

// Abort cancels the running read, if any. The session still ends with an
// Aborted notification.
func (s *System) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		debug.Log(debug.SCAN, "abort session %s", s.active)
		s.cancel()
	}
}

func (s *System) queue(req Request) (uuid.UUID, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return uuid.Nil, session.ErrBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	req.Session = uuid.New()
	req.ctx = ctx
	s.cancel = cancel
	s.active = req.Session
	s.mu.Unlock()

	debug.Log(debug.SCAN, "queue %s session=%s kind=%s location=%q paths=%v",
		req.Op, req.Session, req.Kind, req.Location, req.Paths)
	s.RequestChan <- req
	return req.Session, nil
}

// Start runs the worker loop until RequestChan is closed.
func (s *System) Start() {
	for req := range s.RequestChan {
		s.run(req)
	}
}

func (s *System) run(req Request) {
	s.NotifyChan <- Notification{Kind: Started, Session: req.Session, RootKind: req.Kind}

	var err error
	switch req.Op {
	case OpOpen:
		if req.Kind == tree.KindPackageSet {
			err = s.readPackages(req.ctx, req.Location)
		} else {
			err = s.readToplevel(req.ctx, req.Location)
		}
	case OpRefresh:
		err = s.refresh(req.ctx, req.Paths, req.Read)
	case OpReadCache:
		err = cache.Read(req.ctx, req.Location, s.tree)
	}

	cancelled := req.ctx.Err() != nil
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
	s.active = uuid.Nil
	s.mu.Unlock()

	n := Notification{Kind: Finished, Session: req.Session, RootKind: req.Kind}
	switch {
	case cancelled:
		n.Kind = Aborted
	case err != nil:
		log.Printf("Error reading %s: %v", describe(req), err)
		n.Kind = Aborted
		n.Err = err
	}
	debug.Log(debug.SCAN, "%s session=%s err=%v", n.Kind, req.Session, err)
	s.NotifyChan <- n
}

func describe(req Request) string {
	if req.Op == OpRefresh {
		return strings.Join(req.Paths, ", ")
	}
	return req.Location
}

func (s *System) readToplevel(ctx context.Context, location string) error {
	s.tree.Reset(location, tree.KindFilesystem)
	st, err := statEntry(location)
	if err != nil {
		return err
	}
	top := st.node(location, location, "")
	top.IsDir = true
	s.tree.Attach(nil, top)
	s.mu.Lock()
	ro := session.ReadOptions{CrossFilesystems: s.opts.CrossFilesystems}
	s.mu.Unlock()
	return s.scan(ctx, top, location, st.dev, ro)
}

// refresh replaces the directory of every path with a fresh read. Paths
// naming a file or a <Files> pseudo directory refresh the directory that
// holds them.
func (s *System) refresh(ctx context.Context, paths []string, ro session.ReadOptions) error {
	if s.tree.Kind() == tree.KindPackageSet {
		return s.readPackages(ctx, s.tree.URL())
	}
	for _, p := range paths {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n := s.tree.Locate(p, true)
		for n != nil && (n.Pseudo || !n.IsDir) {
			n = n.Parent()
		}
		if n == nil || n.Parent() == nil {
			continue
		}

		fsPath := n.FSPath()
		st, err := statEntry(fsPath)
		if err != nil {
			debug.Log(debug.SCAN, "refresh: %s vanished: %v", fsPath, err)
			s.tree.Remove(n)
			continue
		}
		fresh := st.node(n.Name, n.Path, n.Real)
		fresh.IsDir = true
		fresh.MountPoint = n.MountPoint
		fresh.Excluded = n.Excluded
		fresh.IsSymlink = n.IsSymlink
		s.tree.Replace(n, fresh)
		if err := s.scan(ctx, fresh, fsPath, st.dev, ro); err != nil {
			return err
		}
	}
	return nil
}

type walkState struct {
	mu   sync.Mutex
	dirs map[string]*tree.Node
	devs map[string]uint64
}

func (w *walkState) dir(p string) (*tree.Node, uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirs[p], w.devs[p]
}

func (w *walkState) add(p string, n *tree.Node, dev uint64) {
	w.mu.Lock()
	w.dirs[p] = n
	w.devs[p] = dev
	w.mu.Unlock()
}

// scan reads the directory at fsPath into root, which is already attached.
// The root itself is always read, even when it is a mount point or excluded.
func (s *System) scan(ctx context.Context, root *tree.Node, fsPath string, rootDev uint64, ro session.ReadOptions) error {
	s.mu.Lock()
	excludes := s.opts.Excludes
	follow := s.opts.Follow
	s.mu.Unlock()

	s.tree.SetState(root, tree.ReadReading)
	ws := &walkState{dirs: map[string]*tree.Node{}, devs: map[string]uint64{}}
	ws.add(fsPath, root, rootDev)

	conf := &fastwalk.Config{Follow: follow}
	err := fastwalk.Walk(conf, fsPath, func(p string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if n, _ := ws.dir(p); n != nil {
				s.markUnreadable(n, err)
			} else {
				debug.Log(debug.SCAN_ENTRY, "scan: %s: %v", p, err)
			}
			return nil
		}
		if p == fsPath {
			return nil
		}

		parent, parentDev := ws.dir(filepath.Dir(p))
		if parent == nil {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		st, err := statEntry(p)
		if err != nil {
			debug.Log(debug.SCAN_ENTRY, "scan: skipping %s: %v", p, err)
			return nil
		}

		realPath := ""
		if parent.Real != "" {
			realPath = p
		}
		n := st.node(d.Name(), tree.JoinPath(parent.Path, d.Name()), realPath)

		isDir := d.IsDir()
		if st.symlink {
			n.IsSymlink = true
			target, terr := os.Stat(p)
			n.BrokenLink = terr != nil
			isDir = follow && terr == nil && target.IsDir()
		}
		if !isDir {
			s.tree.Attach(s.tree.DotEntry(parent), n)
			debug.Log(debug.SCAN_ENTRY, "scan: file %s size=%d", p, n.Size)
			return nil
		}

		n.IsDir = true
		n.MountPoint = st.dev != parentDev
		n.Excluded = matchExclude(excludes, d.Name(), n.Path)
		s.tree.Attach(parent, n)
		if (n.MountPoint && !ro.CrossFilesystems) || (n.Excluded && !ro.IgnoreExcludes) {
			debug.Log(debug.SCAN, "scan: not reading %s (mount=%v excluded=%v)", p, n.MountPoint, n.Excluded)
			s.tree.SetState(n, tree.ReadOnDemand)
			return fastwalk.SkipDir
		}
		s.tree.SetState(n, tree.ReadReading)
		ws.add(p, n, st.dev)
		return nil
	})

	final := tree.ReadFinished
	if ctx.Err() != nil {
		final = tree.ReadAborted
	}
	ws.mu.Lock()
	for _, n := range ws.dirs {
		if n.State() == tree.ReadReading {
			s.tree.SetState(n, final)
		}
	}
	ws.mu.Unlock()
	s.tree.Finalize(root)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scan %s: %w", fsPath, err)
	}
	return nil
}

func (s *System) markUnreadable(n *tree.Node, err error) {
	state := tree.ReadError
	if errors.Is(err, fs.ErrPermission) {
		state = tree.ReadPermissionDenied
	}
	debug.Log(debug.SCAN, "scan: %s unreadable: %v", n.Path, err)
	s.tree.SetState(n, state)
}

// matchExclude reports whether a directory is covered by an exclude rule.
// Rules without a slash match the directory name, others the full path or
// one of its parents.
func matchExclude(rules []string, name, path string) bool {
	for _, r := range rules {
		if r == "" {
			continue
		}
		if !strings.Contains(r, "/") {
			if ok, _ := filepath.Match(r, name); ok {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(r, path); ok {
			return true
		}
		if strings.HasPrefix(path, strings.TrimSuffix(r, "/")+"/") {
			return true
		}
	}
	return false
}
