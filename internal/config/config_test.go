package config

import (
	"os"
	"path/filepath"
	"testing"

	"gioui.org/io/key"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dirstat", "config.json")
	m := NewManagerAt(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	cfg := m.Get()
	if cfg.Scan.SettleDelayMs != 200 {
		t.Errorf("SettleDelayMs = %d, want 200", cfg.Scan.SettleDelayMs)
	}
	if cfg.UI.DefaultLayout != "L2" {
		t.Errorf("DefaultLayout = %q, want L2", cfg.UI.DefaultLayout)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"scan": {"crossFilesystems": true}, "hotkeys": {"stop": "Ctrl+Q"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	m := NewManagerAt(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := m.Get()
	if !cfg.Scan.CrossFilesystems {
		t.Error("crossFilesystems not read")
	}
	if cfg.Scan.UpdateIntervalMs != 200 {
		t.Errorf("UpdateIntervalMs = %d, want default 200", cfg.Scan.UpdateIntervalMs)
	}
	if cfg.Hotkeys.Stop != "Ctrl+Q" {
		t.Errorf("Stop = %q", cfg.Hotkeys.Stop)
	}
	if cfg.Hotkeys.Back == "" {
		t.Error("missing hotkey not filled from defaults")
	}
}

func TestLoadBrokenJSONUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := NewManagerAt(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.ParseError() == nil {
		t.Error("expected a parse error")
	}
	if m.Get().UI.Theme != "light" {
		t.Error("defaults not used")
	}
}

func TestGenerateConfigBacksUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"ui":{"theme":"dark"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	backup, err := GenerateConfig(path)
	if err != nil {
		t.Fatalf("GenerateConfig: %v", err)
	}
	if backup == "" {
		t.Fatal("no backup created")
	}
	old, err := os.ReadFile(backup)
	if err != nil || string(old) != `{"ui":{"theme":"dark"}}` {
		t.Errorf("backup content = %q, err %v", old, err)
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		in   string
		key  key.Name
		mods key.Modifiers
		str  string
	}{
		{"F5", key.NameF5, 0, "F5"},
		{"Ctrl+O", "O", key.ModCtrl, "Ctrl+O"},
		{"alt+left", key.NameLeftArrow, key.ModAlt, "Alt+" + string(key.NameLeftArrow)},
		{"Ctrl+Shift+1", "!", key.ModCtrl | key.ModShift, "Ctrl+Shift+1"},
		{"Escape", key.NameEscape, 0, string(key.NameEscape)},
		{"", "", 0, ""},
	}
	for _, tt := range tests {
		h := ParseHotkey(tt.in)
		if h.Key != tt.key || h.Modifiers != tt.mods {
			t.Errorf("ParseHotkey(%q) = %v/%v, want %v/%v", tt.in, h.Key, h.Modifiers, tt.key, tt.mods)
		}
		if h.String() != tt.str {
			t.Errorf("ParseHotkey(%q).String() = %q, want %q", tt.in, h.String(), tt.str)
		}
	}
}

func TestHotkeyMatcher(t *testing.T) {
	m := NewHotkeyMatcher(HotkeysConfig{
		RefreshAll: "F5",
		Stop:       "Escape",
		Back:       "Alt+Left",
		Layout3:    "Ctrl+3",
	})

	tests := []struct {
		ev   key.Event
		want HotkeyAction
	}{
		{key.Event{Name: key.NameF5, State: key.Press}, HotkeyRefreshAll},
		{key.Event{Name: key.NameF5, State: key.Release}, HotkeyNone},
		{key.Event{Name: key.NameEscape, State: key.Press}, HotkeyStop},
		{key.Event{Name: key.NameLeftArrow, Modifiers: key.ModAlt, State: key.Press}, HotkeyBack},
		{key.Event{Name: key.NameLeftArrow, State: key.Press}, HotkeyNone},
		{key.Event{Name: "3", Modifiers: key.ModCtrl, State: key.Press}, HotkeyLayout3},
	}
	for _, tt := range tests {
		if got := m.Match(tt.ev); got != tt.want {
			t.Errorf("Match(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
	if len(m.Filters(nil)) != 4 {
		t.Errorf("Filters = %d, want 4", len(m.Filters(nil)))
	}
	if m.Hotkey(HotkeyStop).String() != string(key.NameEscape) {
		t.Errorf("Hotkey(HotkeyStop) = %q", m.Hotkey(HotkeyStop).String())
	}
}
