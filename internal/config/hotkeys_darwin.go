//go:build darwin

package config

// DefaultHotkeys returns the default keyboard shortcuts for macOS
// Uses Cmd instead of Ctrl/Alt (macOS convention)
func DefaultHotkeys() HotkeysConfig {
	return HotkeysConfig{
		Open:         "Cmd+O",
		RefreshAll:   "Cmd+R",
		RefreshSel:   "Cmd+Shift+R",
		Stop:         "Escape",
		Back:         "Cmd+Left",
		Forward:      "Cmd+Right",
		Up:           "Cmd+Up",
		Toplevel:     "Cmd+Home",
		CopyPath:     "Cmd+C",
		MoveToTrash:  "Cmd+Delete",
		Layout1:      "Cmd+1",
		Layout2:      "Cmd+2",
		Layout3:      "Cmd+3",
		ToggleDetail: "F9",
	}
}
