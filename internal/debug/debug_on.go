//go:build debug

// Package debug provides a centralized, categorized debug logging system.
// Build with -tags debug to enable logging.
package debug

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Enabled indicates whether debug logging is active
const Enabled = true

// Category represents a debug logging category
type Category string

const (
	APP     Category = "APP"     // Orchestrator, control loop, reports
	SCAN    Category = "SCAN"    // Scan engine requests, walks, aborts
	SESSION Category = "SESSION" // Session state machine, timers, future selection
	HISTORY Category = "HISTORY" // Back/forward stack
	STORE   Category = "STORE"   // Settings and recent roots database
	CACHE   Category = "CACHE"   // Cache file read/write
	TRASH   Category = "TRASH"   // Move to trash
	UI      Category = "UI"      // UI events, layout, rendering

	// Verbose
	SCAN_ENTRY Category = "SCAN_ENTRY" // Every visited entry
	UI_LAYOUT  Category = "UI_LAYOUT"  // Layout passes
)

var (
	enabledCategories = map[Category]bool{
		APP:     true,
		SCAN:    true,
		SESSION: true,
		HISTORY: true,
		STORE:   true,
		CACHE:   true,
		TRASH:   true,
		UI:      true,

		SCAN_ENTRY: false,
		UI_LAYOUT:  false,
	}
	categoryMu sync.RWMutex

	logger = newLogger()
)

func newLogger() *zap.SugaredLogger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), zapcore.DebugLevel)
	return zap.New(core).Sugar()
}

func init() {
	// DIRSTAT_DEBUG=SESSION,SCAN or DIRSTAT_DEBUG=all or DIRSTAT_DEBUG=none
	if env := os.Getenv("DIRSTAT_DEBUG"); env != "" {
		categoryMu.Lock()
		defer categoryMu.Unlock()

		env = strings.ToUpper(env)
		switch env {
		case "ALL":
			for cat := range enabledCategories {
				enabledCategories[cat] = true
			}
		case "NONE":
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
		default:
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
			for _, cat := range strings.Split(env, ",") {
				enabledCategories[Category(strings.TrimSpace(cat))] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}

	logger.Debugw(fmt.Sprintf(format, args...), "cat", string(cat))
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// Sync flushes buffered log output.
func Sync() {
	_ = logger.Sync()
}
