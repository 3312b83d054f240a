//go:build !darwin

package config

// DefaultHotkeys returns the default keyboard shortcuts for Windows/Linux
// Uses Alt for navigation shortcuts (standard convention)
func DefaultHotkeys() HotkeysConfig {
	return HotkeysConfig{
		Open:         "Ctrl+O",
		RefreshAll:   "F5",
		RefreshSel:   "Ctrl+R",
		Stop:         "Escape",
		Back:         "Alt+Left",
		Forward:      "Alt+Right",
		Up:           "Alt+Up",
		Toplevel:     "Alt+Home",
		CopyPath:     "Ctrl+C",
		MoveToTrash:  "Delete",
		Layout1:      "Ctrl+1",
		Layout2:      "Ctrl+2",
		Layout3:      "Ctrl+3",
		ToggleDetail: "F9",
	}
}
