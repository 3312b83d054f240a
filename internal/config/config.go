package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	Scan     ScanConfig     `json:"scan"`
	UI       UIConfig       `json:"ui"`
	Behavior BehaviorConfig `json:"behavior"`
	Hotkeys  HotkeysConfig  `json:"hotkeys"`
}

// ScanConfig holds directory reading settings
type ScanConfig struct {
	CrossFilesystems bool     `json:"crossFilesystems"` // read below mount points
	ExcludeRules     []string `json:"excludeRules"`     // glob on dir name, or absolute path prefix
	FollowSymlinks   bool     `json:"followSymlinks"`
	SettleDelayMs    int      `json:"settleDelayMs"`    // delay before auto-expanding a fresh tree
	UpdateIntervalMs int      `json:"updateIntervalMs"` // "Reading..." status refresh
}

// UIConfig holds UI-related settings
type UIConfig struct {
	Theme              string `json:"theme"` // "light" or "dark"
	StatusBarTimeoutMs int    `json:"statusBarTimeoutMs"`
	URLInWindowTitle   bool   `json:"urlInWindowTitle"`
	DefaultLayout      string `json:"defaultLayout"` // "L1" | "L2" | "L3"
}

// BehaviorConfig holds behavior settings
type BehaviorConfig struct {
	ConfirmTrash     bool `json:"confirmTrash"`
	VerboseSelection bool `json:"verboseSelection"`
	WatchChanges     bool `json:"watchChanges"` // suggest a refresh when the current branch changes on disk
}

// HotkeysConfig holds keyboard shortcut strings such as "Ctrl+O"
type HotkeysConfig struct {
	Open         string `json:"open"`
	RefreshAll   string `json:"refreshAll"`
	RefreshSel   string `json:"refreshSelected"`
	Stop         string `json:"stop"`
	Back         string `json:"back"`
	Forward      string `json:"forward"`
	Up           string `json:"up"`
	Toplevel     string `json:"toplevel"`
	CopyPath     string `json:"copyPath"`
	MoveToTrash  string `json:"moveToTrash"`
	Layout1      string `json:"layout1"`
	Layout2      string `json:"layout2"`
	Layout3      string `json:"layout3"`
	ToggleDetail string `json:"toggleDetails"`
}

// Manager handles loading, saving, and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Stores parsing error if config failed to load
}

// NewManager creates a configuration manager for the default path
func NewManager() *Manager {
	return NewManagerAt(ConfigPath())
}

// NewManagerAt creates a configuration manager for path
func NewManagerAt(path string) *Manager {
	return &Manager{
		config: DefaultConfig(),
		path:   path,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			CrossFilesystems: false,
			ExcludeRules:     []string{".snapshot"},
			FollowSymlinks:   false,
			SettleDelayMs:    200,
			UpdateIntervalMs: 200,
		},
		UI: UIConfig{
			Theme:              "light",
			StatusBarTimeoutMs: 3000,
			URLInWindowTitle:   false,
			DefaultLayout:      "L2",
		},
		Behavior: BehaviorConfig{
			ConfirmTrash:     true,
			VerboseSelection: false,
			WatchChanges:     true,
		},
		Hotkeys: DefaultHotkeys(),
	}
}

// ConfigPath returns the config file path: ~/.config/dirstat/config.json
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dirstat", "config.json")
}

// Path returns the file the manager reads and writes
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Load reads the config file. A missing file is created with the
// defaults. A file that does not parse leaves the defaults in place and
// is reported through ParseError, not as an error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parseErr = nil

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("Config: writing defaults to %s", m.path)
		m.config = DefaultConfig()
		return writeConfig(m.path, m.config)
	case err != nil:
		return fmt.Errorf("read config %s: %w", m.path, err)
	}

	cfg, err := decode(data)
	if err != nil {
		log.Printf("Config: %s: %v", m.path, err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}
	m.config = cfg
	return nil
}

// decode fills a default config from data, so sections and hotkeys the
// file leaves out keep their default values.
func decode(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	def := DefaultHotkeys()
	for _, pair := range []struct{ dst, v *string }{
		{&cfg.Hotkeys.Open, &def.Open},
		{&cfg.Hotkeys.RefreshAll, &def.RefreshAll},
		{&cfg.Hotkeys.RefreshSel, &def.RefreshSel},
		{&cfg.Hotkeys.Stop, &def.Stop},
		{&cfg.Hotkeys.Back, &def.Back},
		{&cfg.Hotkeys.Forward, &def.Forward},
		{&cfg.Hotkeys.Up, &def.Up},
		{&cfg.Hotkeys.Toplevel, &def.Toplevel},
		{&cfg.Hotkeys.CopyPath, &def.CopyPath},
		{&cfg.Hotkeys.MoveToTrash, &def.MoveToTrash},
		{&cfg.Hotkeys.Layout1, &def.Layout1},
		{&cfg.Hotkeys.Layout2, &def.Layout2},
		{&cfg.Hotkeys.Layout3, &def.Layout3},
		{&cfg.Hotkeys.ToggleDetail, &def.ToggleDetail},
	} {
		if *pair.dst == "" {
			*pair.dst = *pair.v
		}
	}
	return cfg, nil
}

func writeConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

func (m *Manager) IsDarkMode() bool {
	return m.Get().UI.Theme == "dark"
}

// SettleDelay returns the auto-expand delay
func (s ScanConfig) SettleDelay() time.Duration {
	return time.Duration(s.SettleDelayMs) * time.Millisecond
}

// UpdateInterval returns the progress status interval
func (s ScanConfig) UpdateInterval() time.Duration {
	return time.Duration(s.UpdateIntervalMs) * time.Millisecond
}

// StatusBarTimeout returns how long transient status messages stay
func (u UIConfig) StatusBarTimeout() time.Duration {
	return time.Duration(u.StatusBarTimeoutMs) * time.Millisecond
}

// GenerateConfig writes a fresh default config to path. An existing file
// is first copied next to it as config.backup.<time>.json; the backup
// path is returned, or "" when there was nothing to keep.
func GenerateConfig(path string) (string, error) {
	var backup string
	old, err := os.ReadFile(path)
	switch {
	case err == nil:
		backup = filepath.Join(filepath.Dir(path), "config.backup."+time.Now().Format("20060102-150405")+".json")
		if err := os.WriteFile(backup, old, 0o644); err != nil {
			return "", fmt.Errorf("write backup: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	return backup, writeConfig(path, DefaultConfig())
}
