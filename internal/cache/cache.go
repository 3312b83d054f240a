// Package cache writes a scanned tree to a cache file and reads it back.
// A cache file is a SQLite database with one row per node.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// FormatVersion is stored in every cache file.
const FormatVersion = 1

// ErrBadFormat is returned for files that are not dirstat cache files.
var ErrBadFormat = errors.New("not a dirstat cache file")

const schema = `
CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE nodes (
	id INTEGER PRIMARY KEY,
	parent INTEGER NOT NULL,
	name TEXT NOT NULL,
	path TEXT NOT NULL,
	real TEXT NOT NULL,
	is_dir INTEGER NOT NULL,
	size INTEGER NOT NULL,
	blocks INTEGER NOT NULL,
	links INTEGER NOT NULL,
	mtime INTEGER NOT NULL,
	flags INTEGER NOT NULL,
	state INTEGER NOT NULL
);
`

const (
	flagSymlink = 1 << iota
	flagBrokenLink
	flagMountPoint
	flagExcluded
	flagPseudo
	flagPkg
)

func flagsOf(n *tree.Node) int {
	f := 0
	set := func(b bool, bit int) {
		if b {
			f |= bit
		}
	}
	set(n.IsSymlink, flagSymlink)
	set(n.BrokenLink, flagBrokenLink)
	set(n.MountPoint, flagMountPoint)
	set(n.Excluded, flagExcluded)
	set(n.Pseudo, flagPseudo)
	set(n.Pkg, flagPkg)
	return f
}

func applyFlags(n *tree.Node, f int) {
	n.IsSymlink = f&flagSymlink != 0
	n.BrokenLink = f&flagBrokenLink != 0
	n.MountPoint = f&flagMountPoint != 0
	n.Excluded = f&flagExcluded != 0
	n.Pseudo = f&flagPseudo != 0
	n.Pkg = f&flagPkg != 0
}

type row struct {
	id, parent int64
	node       *tree.Node
	state      tree.ReadState
}

// Write stores the tree below the super-root in file, replacing it.
func Write(t *tree.Tree, file string) error {
	top := t.FirstToplevel()
	if top == nil {
		return errors.New("cache: empty tree")
	}

	ids := make(map[*tree.Node]int64)
	var rows []row
	root := t.Root()
	t.Walk(root, func(n *tree.Node) bool {
		if n == root {
			return true
		}
		id := int64(len(rows) + 1)
		ids[n] = id
		rows = append(rows, row{id: id, parent: ids[n.Parent()], node: n, state: n.State()})
		return true
	})

	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cache: %w", err)
	}
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("cache: create schema: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer tx.Rollback()

	meta := map[string]string{
		"version": strconv.Itoa(FormatVersion),
		"url":     t.URL(),
		"written": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("cache: write meta: %w", err)
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO nodes
		(id, parent, name, path, real, is_dir, size, blocks, links, mtime, flags, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		n := r.node
		var mtime int64
		if !n.ModTime.IsZero() {
			mtime = n.ModTime.UnixNano()
		}
		if _, err := stmt.Exec(r.id, r.parent, n.Name, n.Path, n.Real, n.IsDir, n.Size,
			n.Blocks, int64(n.Links), mtime, flagsOf(n), int(r.state)); err != nil {
			return fmt.Errorf("cache: write %s: %w", n.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	debug.Log(debug.CACHE, "wrote %d nodes to %s", len(rows), file)
	return nil
}

func openReadOnly(file string) (*sql.DB, string, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, "", err
	}
	var version, url string
	err = db.QueryRow("SELECT value FROM meta WHERE key = 'version'").Scan(&version)
	if err == nil {
		err = db.QueryRow("SELECT value FROM meta WHERE key = 'url'").Scan(&url)
	}
	if err != nil {
		db.Close()
		return nil, "", fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if v, _ := strconv.Atoi(version); v != FormatVersion {
		db.Close()
		return nil, "", fmt.Errorf("%w: unsupported version %q", ErrBadFormat, version)
	}
	return db, url, nil
}

// Check validates file and returns the URL of the tree stored in it.
func Check(file string) (string, error) {
	db, url, err := openReadOnly(file)
	if err != nil {
		return "", err
	}
	db.Close()
	return url, nil
}

// Read resets t and fills it from file. Directories that were completely
// read when the cache was written are marked as cached.
func Read(ctx context.Context, file string, t *tree.Tree) error {
	db, url, err := openReadOnly(file)
	if err != nil {
		return err
	}
	defer db.Close()

	t.Reset(url, tree.KindCache)

	rows, err := db.QueryContext(ctx, `SELECT id, parent, name, path, real, is_dir, size,
		blocks, links, mtime, flags, state FROM nodes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	defer rows.Close()

	nodes := make(map[int64]*tree.Node)
	count := 0
	for rows.Next() {
		if count%1000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		var (
			id, parent, size, blocks, links, mtime int64
			flags, state                           int
			isDir                                  bool
			n                                      = &tree.Node{}
		)
		if err := rows.Scan(&id, &parent, &n.Name, &n.Path, &n.Real, &isDir, &size,
			&blocks, &links, &mtime, &flags, &state); err != nil {
			return fmt.Errorf("%w: %v", ErrBadFormat, err)
		}
		n.IsDir = isDir
		n.Size = size
		n.Blocks = blocks
		n.Links = uint64(links)
		if mtime != 0 {
			n.ModTime = time.Unix(0, mtime)
		}
		applyFlags(n, flags)

		var p *tree.Node
		if parent != 0 {
			p = nodes[parent]
			if p == nil {
				return fmt.Errorf("%w: node %d has unknown parent %d", ErrBadFormat, id, parent)
			}
		}
		t.Attach(p, n)
		if n.IsDir {
			rs := tree.ReadState(state)
			if rs == tree.ReadFinished && !n.Pseudo {
				rs = tree.ReadCached
			}
			t.SetState(n, rs)
		}
		nodes[id] = n
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	debug.Log(debug.CACHE, "read %d nodes from %s", count, file)
	return nil
}
