package config

import (
	"strings"

	"gioui.org/io/event"
	"gioui.org/io/key"
)

// Hotkey is a parsed shortcut such as "Ctrl+Shift+R".
type Hotkey struct {
	Key       key.Name
	Modifiers key.Modifiers
}

var modifierNames = map[string]key.Modifiers{
	"ctrl": key.ModCtrl, "control": key.ModCtrl,
	"shift": key.ModShift,
	"alt":   key.ModAlt, "option": key.ModAlt,
	"cmd": key.ModCommand, "command": key.ModCommand,
	"super": key.ModSuper, "meta": key.ModSuper, "win": key.ModSuper,
}

var keyNames = map[string]key.Name{
	"up": key.NameUpArrow, "down": key.NameDownArrow,
	"left": key.NameLeftArrow, "right": key.NameRightArrow,
	"home": key.NameHome, "end": key.NameEnd,
	"pageup": key.NamePageUp, "pgup": key.NamePageUp,
	"pagedown": key.NamePageDown, "pgdn": key.NamePageDown,
	"enter": key.NameReturn, "return": key.NameReturn,
	"tab": key.NameTab, "space": key.NameSpace,
	"backspace": key.NameDeleteBackward,
	"delete":    key.NameDeleteForward, "del": key.NameDeleteForward,
	"escape": key.NameEscape, "esc": key.NameEscape,
	"f1": key.NameF1, "f2": key.NameF2, "f3": key.NameF3, "f4": key.NameF4,
	"f5": key.NameF5, "f6": key.NameF6, "f7": key.NameF7, "f8": key.NameF8,
	"f9": key.NameF9, "f10": key.NameF10, "f11": key.NameF11, "f12": key.NameF12,
}

// Gio reports Shift+digit as the shifted character (US layout).
const digits, shiftedDigits = "1234567890", "!@#$%^&*()"

// ParseHotkey parses "Mod+Mod+Key". Unknown key names are kept as they
// are, single characters are upper-cased.
func ParseHotkey(s string) Hotkey {
	var h Hotkey
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m, ok := modifierNames[strings.ToLower(part)]; ok {
			h.Modifiers |= m
			continue
		}
		h.Key = parseKeyName(part)
	}
	if h.Modifiers.Contain(key.ModShift) {
		if i := strings.Index(digits, string(h.Key)); i >= 0 && len(h.Key) == 1 {
			h.Key = key.Name(shiftedDigits[i : i+1])
		}
	}
	return h
}

func parseKeyName(s string) key.Name {
	if len(s) == 1 {
		return key.Name(strings.ToUpper(s))
	}
	if n, ok := keyNames[strings.ToLower(s)]; ok {
		return n
	}
	return key.Name(s)
}

// Matches reports whether k is this hotkey with exactly its modifiers.
func (h Hotkey) Matches(k key.Event) bool {
	return h.Key != "" && k.Name == h.Key && k.Modifiers == h.Modifiers
}

func (h Hotkey) IsEmpty() bool { return h.Key == "" }

// String formats the hotkey for labels, showing digits rather than their
// shifted characters.
func (h Hotkey) String() string {
	if h.Key == "" {
		return ""
	}
	var parts []string
	for _, m := range []struct {
		mod  key.Modifiers
		name string
	}{
		{key.ModCtrl, "Ctrl"},
		{key.ModCommand, "Cmd"},
		{key.ModShift, "Shift"},
		{key.ModAlt, "Alt"},
		{key.ModSuper, "Super"},
	} {
		if h.Modifiers.Contain(m.mod) {
			parts = append(parts, m.name)
		}
	}
	name := string(h.Key)
	if i := strings.Index(shiftedDigits, name); i >= 0 && len(name) == 1 && h.Modifiers.Contain(key.ModShift) {
		name = digits[i : i+1]
	}
	return strings.Join(append(parts, name), "+")
}

func (h Hotkey) Filter(focus event.Tag) key.Filter {
	return key.Filter{Focus: focus, Name: h.Key, Required: h.Modifiers}
}

// HotkeyAction is what a matched hotkey asks the application to do
type HotkeyAction int

const (
	HotkeyNone HotkeyAction = iota
	HotkeyOpen
	HotkeyRefreshAll
	HotkeyRefreshSelected
	HotkeyStop
	HotkeyBack
	HotkeyForward
	HotkeyUp
	HotkeyToplevel
	HotkeyCopyPath
	HotkeyMoveToTrash
	HotkeyLayout1
	HotkeyLayout2
	HotkeyLayout3
	HotkeyToggleDetails
)

type binding struct {
	action HotkeyAction
	hotkey Hotkey
}

// HotkeyMatcher provides efficient hotkey matching from config
type HotkeyMatcher struct {
	bindings []binding
}

// NewHotkeyMatcher creates a matcher from config
func NewHotkeyMatcher(cfg HotkeysConfig) *HotkeyMatcher {
	m := &HotkeyMatcher{}
	add := func(a HotkeyAction, s string) {
		if h := ParseHotkey(s); !h.IsEmpty() {
			m.bindings = append(m.bindings, binding{action: a, hotkey: h})
		}
	}
	add(HotkeyOpen, cfg.Open)
	add(HotkeyRefreshAll, cfg.RefreshAll)
	add(HotkeyRefreshSelected, cfg.RefreshSel)
	add(HotkeyStop, cfg.Stop)
	add(HotkeyBack, cfg.Back)
	add(HotkeyForward, cfg.Forward)
	add(HotkeyUp, cfg.Up)
	add(HotkeyToplevel, cfg.Toplevel)
	add(HotkeyCopyPath, cfg.CopyPath)
	add(HotkeyMoveToTrash, cfg.MoveToTrash)
	add(HotkeyLayout1, cfg.Layout1)
	add(HotkeyLayout2, cfg.Layout2)
	add(HotkeyLayout3, cfg.Layout3)
	add(HotkeyToggleDetails, cfg.ToggleDetail)
	return m
}

// Match returns the action bound to a key event
func (m *HotkeyMatcher) Match(k key.Event) HotkeyAction {
	if k.State != key.Press {
		return HotkeyNone
	}
	for _, b := range m.bindings {
		if b.hotkey.Matches(k) {
			return b.action
		}
	}
	return HotkeyNone
}

// Filters returns one key.Filter per binding, for registering with Gio
func (m *HotkeyMatcher) Filters(focus event.Tag) []event.Filter {
	out := make([]event.Filter, 0, len(m.bindings))
	for _, b := range m.bindings {
		out = append(out, b.hotkey.Filter(focus))
	}
	return out
}

// Hotkey returns the hotkey bound to an action, for menu and tooltip labels
func (m *HotkeyMatcher) Hotkey(a HotkeyAction) Hotkey {
	for _, b := range m.bindings {
		if b.action == a {
			return b.hotkey
		}
	}
	return Hotkey{}
}
