// Package history records visited locations with browser-style back/forward
// navigation.
package history

import "github.com/justyntemme/dirstat/internal/debug"

// MaxSize bounds the number of remembered locations.
const MaxSize = 64

// Stack is a linear list of locations with a cursor. Moving back or forward
// only moves the cursor; recording a new location while the cursor is not at
// the tip prunes everything after the cursor first.
type Stack struct {
	entries []string
	cursor  int
}

// New creates an empty history.
func New() *Stack {
	return &Stack{
		entries: make([]string, 0, MaxSize),
		cursor:  -1,
	}
}

// Record appends loc after the cursor. Recording the location that is
// already under the cursor does nothing, so the current-item notification
// that follows a back/forward jump does not disturb the stack.
func (s *Stack) Record(loc string) {
	if loc == "" {
		return
	}
	if s.cursor >= 0 && s.entries[s.cursor] == loc {
		return
	}

	if s.cursor < len(s.entries)-1 {
		s.entries = s.entries[:s.cursor+1]
	}
	s.entries = append(s.entries, loc)
	s.cursor = len(s.entries) - 1

	if len(s.entries) > MaxSize {
		excess := len(s.entries) - MaxSize
		s.entries = s.entries[excess:]
		s.cursor -= excess
		if s.cursor < 0 {
			s.cursor = 0
		}
	}
	debug.Log(debug.HISTORY, "record %q (cursor %d/%d)", loc, s.cursor, len(s.entries))
}

// GoBack moves the cursor one step back and returns the location there.
func (s *Stack) GoBack() (string, bool) {
	if !s.CanGoBack() {
		return "", false
	}
	s.cursor--
	debug.Log(debug.HISTORY, "back to %q", s.entries[s.cursor])
	return s.entries[s.cursor], true
}

// GoForward moves the cursor one step forward and returns the location there.
func (s *Stack) GoForward() (string, bool) {
	if !s.CanGoForward() {
		return "", false
	}
	s.cursor++
	debug.Log(debug.HISTORY, "forward to %q", s.entries[s.cursor])
	return s.entries[s.cursor], true
}

// CanGoBack reports whether there is an entry before the cursor.
func (s *Stack) CanGoBack() bool {
	return s.cursor > 0
}

// CanGoForward reports whether there is an entry after the cursor.
func (s *Stack) CanGoForward() bool {
	return s.cursor >= 0 && s.cursor < len(s.entries)-1
}

// Current returns the location under the cursor.
func (s *Stack) Current() (string, bool) {
	if s.cursor < 0 {
		return "", false
	}
	return s.entries[s.cursor], true
}

// Clear forgets everything.
func (s *Stack) Clear() {
	s.entries = s.entries[:0]
	s.cursor = -1
	debug.Log(debug.HISTORY, "cleared")
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}
