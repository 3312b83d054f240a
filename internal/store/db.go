package store

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"

	"github.com/justyntemme/dirstat/internal/debug"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// MaxRecent bounds the recent roots list.
const MaxRecent = 10

type EventType int

const (
	FetchRecent EventType = iota
	AddRecent
	RemoveRecent
	FetchSettings
	SaveSettings
)

type Request struct {
	Op       EventType
	Path     string
	Settings Settings
	Done     chan<- error // optional, signalled once the request is handled
}

type Response struct {
	Op       EventType
	Recent   []string // most recent first
	Settings Settings
	Err      error
}

// Settings is a snapshot of the key/value settings table.
type Settings map[string]string

// Lookup returns the value stored under key.
func (s Settings) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Set stores value under key.
func (s Settings) Set(key, value string) {
	s[key] = value
}

type DB struct {
	conn         *sql.DB
	RequestChan  chan Request
	ResponseChan chan Response
}

func NewDB() *DB {
	return &DB{
		RequestChan:  make(chan Request, 10),
		ResponseChan: make(chan Response, 10),
	}
}

// DefaultPath returns the database path below the user config directory.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	return filepath.Join(configDir, "dirstat", "dirstat.db")
}

// Open initializes the database connection and schema
func (d *DB) Open(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	// WAL mode allows simultaneous readers and writers
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return err
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return err
	}

	query := `
	CREATE TABLE IF NOT EXISTS recent_roots (
		path TEXT PRIMARY KEY,
		opened_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return err
	}

	d.conn = db
	return nil
}

func (d *DB) Start() {
	for req := range d.RequestChan {
		debug.Log(debug.STORE, "request op=%d path=%q", req.Op, req.Path)
		var err error
		switch req.Op {
		case FetchRecent:
			d.handleFetchRecent()
		case AddRecent:
			err = d.handleAddRecent(req.Path)
		case RemoveRecent:
			err = d.handleRemoveRecent(req.Path)
		case FetchSettings:
			d.handleFetchSettings()
		case SaveSettings:
			err = d.saveSettings(req.Settings)
		}
		if err != nil {
			log.Printf("Store Error: %v", err)
		}
		if req.Done != nil {
			req.Done <- err
		}
	}
}

// AddRecent queues path for the recent roots list.
func (d *DB) AddRecent(path string) {
	d.RequestChan <- Request{Op: AddRecent, Path: path}
}

func (d *DB) recent() ([]string, error) {
	rows, err := d.conn.Query("SELECT path FROM recent_roots ORDER BY opened_at DESC, rowid DESC LIMIT ?", MaxRecent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err == nil {
			paths = append(paths, path)
		}
	}
	return paths, rows.Err()
}

func (d *DB) handleFetchRecent() {
	paths, err := d.recent()
	d.ResponseChan <- Response{Op: FetchRecent, Recent: paths, Err: err}
}

func (d *DB) handleAddRecent(path string) error {
	// opened_at grows monotonically so equal timestamps cannot reorder entries
	_, err := d.conn.Exec(`
		INSERT INTO recent_roots (path, opened_at)
		VALUES (?, (SELECT COALESCE(MAX(opened_at), 0) + 1 FROM recent_roots))
		ON CONFLICT(path) DO UPDATE SET opened_at = excluded.opened_at`, path)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`
		DELETE FROM recent_roots WHERE path NOT IN
		(SELECT path FROM recent_roots ORDER BY opened_at DESC LIMIT ?)`, MaxRecent)
	// Always trigger a fetch after modification to sync UI
	d.handleFetchRecent()
	return err
}

func (d *DB) handleRemoveRecent(path string) error {
	_, err := d.conn.Exec("DELETE FROM recent_roots WHERE path = ?", path)
	d.handleFetchRecent()
	return err
}

func (d *DB) settings() (Settings, error) {
	rows, err := d.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(Settings)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err == nil {
			settings[key] = value
		}
	}
	return settings, rows.Err()
}

func (d *DB) handleFetchSettings() {
	settings, err := d.settings()
	d.ResponseChan <- Response{Op: FetchSettings, Settings: settings, Err: err}
}

func (d *DB) saveSettings(s Settings) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for k, v := range s {
		if _, err := stmt.Exec(k, v); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}
