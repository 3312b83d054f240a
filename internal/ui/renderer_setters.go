package ui

import (
	"github.com/justyntemme/dirstat/internal/config"
	"github.com/justyntemme/dirstat/internal/debug"
)

// Configuration setters - methods to update renderer state from orchestrator

func (r *Renderer) SetDarkMode(dark bool) {
	r.DarkMode = dark
	r.applyPalette()
}

// SetConfigError sets the config error message to display in the banner
func (r *Renderer) SetConfigError(err string) {
	r.ConfigError = err
}

// SetHotkeys configures the keyboard shortcuts from config
func (r *Renderer) SetHotkeys(cfg config.HotkeysConfig) {
	r.hotkeys = config.NewHotkeyMatcher(cfg)
	debug.Log(debug.UI, "Hotkeys configured: Open=%s, RefreshAll=%s, Stop=%s, Back=%s",
		r.hotkeys.Hotkey(config.HotkeyOpen), r.hotkeys.Hotkey(config.HotkeyRefreshAll),
		r.hotkeys.Hotkey(config.HotkeyStop), r.hotkeys.Hotkey(config.HotkeyBack))
}
