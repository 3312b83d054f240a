package fs

import (
	"bufio"
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
)

// Package is an installed package and the files it owns.
type Package struct {
	Name  string
	Files []string
}

// PackageSource lists installed packages.
type PackageSource interface {
	Available() bool
	Packages(pattern string) ([]Package, error)
}

// DpkgSource reads the file lists dpkg keeps in its info directory.
type DpkgSource struct {
	InfoDir string
}

func NewDpkgSource() *DpkgSource {
	return &DpkgSource{InfoDir: "/var/lib/dpkg/info"}
}

func (d *DpkgSource) Available() bool {
	fi, err := os.Stat(d.InfoDir)
	return err == nil && fi.IsDir()
}

// Packages returns the packages whose name matches the glob pattern, sorted
// by name. An empty pattern matches all packages.
func (d *DpkgSource) Packages(pattern string) ([]Package, error) {
	if pattern == "" {
		pattern = "*"
	}
	lists, err := filepath.Glob(filepath.Join(d.InfoDir, "*.list"))
	if err != nil {
		return nil, err
	}
	var pkgs []Package
	for _, list := range lists {
		name := strings.TrimSuffix(filepath.Base(list), ".list")
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name = name[:i] // drop the architecture qualifier
		}
		if ok, _ := path.Match(pattern, name); !ok {
			continue
		}
		files, err := readFileList(list)
		if err != nil {
			debug.Log(debug.SCAN, "dpkg: skipping %s: %v", list, err)
			continue
		}
		pkgs = append(pkgs, Package{Name: name, Files: files})
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}

func readFileList(list string) ([]string, error) {
	f, err := os.Open(list)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var files []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line == "/." {
			continue
		}
		files = append(files, line)
	}
	return files, sc.Err()
}

// pkgPattern extracts the package glob from a package URL like "pkg:/lib*".
func pkgPattern(url string) string {
	p := strings.Trim(url[len(tree.PkgURLPrefix):], "/")
	if p == "" {
		return "*"
	}
	return p
}

// readPackages rebuilds the tree as a package view: one directory per
// package holding the files it owns, located on disk through Node.Real.
func (s *System) readPackages(ctx context.Context, url string) error {
	s.tree.Reset(url, tree.KindPackageSet)
	top := &tree.Node{Name: url, Path: tree.PkgURLPrefix, IsDir: true}
	s.tree.Attach(nil, top)
	s.tree.SetState(top, tree.ReadReading)

	pkgs, err := s.opts.Packages.Packages(pkgPattern(url))
	if err != nil {
		s.tree.SetState(top, tree.ReadError)
		return err
	}
	for _, p := range pkgs {
		if ctx.Err() != nil {
			s.tree.SetState(top, tree.ReadAborted)
			return ctx.Err()
		}
		s.readPackage(top, p)
	}
	s.tree.SetState(top, tree.ReadFinished)
	s.tree.Finalize(top)
	debug.Log(debug.SCAN, "package view %s: %d packages", url, len(pkgs))
	return nil
}

func (s *System) readPackage(top *tree.Node, p Package) {
	pn := &tree.Node{Name: p.Name, Path: tree.JoinPath(top.Path, p.Name), IsDir: true, Pkg: true}
	s.tree.Attach(top, pn)

	dirs := map[string]*tree.Node{}
	for _, f := range p.Files {
		st, err := statEntry(f)
		if err != nil {
			continue
		}
		parent := dirs[filepath.Dir(f)]
		if parent == nil {
			parent = pn
		}
		n := st.node(filepath.Base(f), tree.JoinPath(parent.Path, filepath.Base(f)), f)
		if st.dir {
			n.IsDir = true
			s.tree.Attach(parent, n)
			s.tree.SetState(n, tree.ReadFinished)
			dirs[f] = n
			continue
		}
		n.IsSymlink = st.symlink
		s.tree.Attach(s.tree.DotEntry(parent), n)
	}
	s.tree.SetState(pn, tree.ReadFinished)
}
