package session

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrBusy is returned by requests made while a scan is in flight or
	// about to start.
	ErrBusy = errors.New("a scan is in progress")
	// ErrNoRoot is returned when a request needs a loaded tree.
	ErrNoRoot = errors.New("no directory loaded")
	// ErrNoSelection is returned when a request needs exactly one selected
	// item.
	ErrNoSelection = errors.New("select exactly one item")
)

// Reason classifies why a root could not be opened.
type Reason int

const (
	ReasonUnknown Reason = iota
	PathNotFound
	PermissionDenied
	NotADirectory
	NotARegularFile
	BadCacheFile
	NoPackageManager
)

func (r Reason) String() string {
	switch r {
	case PathNotFound:
		return "path not found"
	case PermissionDenied:
		return "permission denied"
	case NotADirectory:
		return "not a directory"
	case NotARegularFile:
		return "not a regular file"
	case BadCacheFile:
		return "bad cache file"
	case NoPackageManager:
		return "no supported package manager"
	}
	return "unknown error"
}

// OpenError reports a root that could not be opened. A failed open never
// starts a session.
type OpenError struct {
	Reason   Reason
	Location string
	Err      error
}

// Sentinels for errors.Is checks against the reason only.
var (
	ErrPathNotFound     = &OpenError{Reason: PathNotFound}
	ErrPermissionDenied = &OpenError{Reason: PermissionDenied}
	ErrNotADirectory    = &OpenError{Reason: NotADirectory}
	ErrNotARegularFile  = &OpenError{Reason: NotARegularFile}
	ErrBadCacheFile     = &OpenError{Reason: BadCacheFile}
	ErrNoPackageManager = &OpenError{Reason: NoPackageManager}
)

func (e *OpenError) Error() string {
	msg := fmt.Sprintf("could not open %q: %s", e.Location, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OpenError) Unwrap() error { return e.Err }

// Is matches a sentinel with the same reason.
func (e *OpenError) Is(target error) bool {
	t, ok := target.(*OpenError)
	if !ok {
		return false
	}
	return t.Location == "" && t.Err == nil && t.Reason == e.Reason
}

// NewOpenError wraps err for location, deriving the reason from err.
func NewOpenError(location string, err error) *OpenError {
	var oe *OpenError
	if errors.As(err, &oe) {
		return oe
	}
	reason := ReasonUnknown
	switch {
	case errors.Is(err, fs.ErrNotExist):
		reason = PathNotFound
	case errors.Is(err, fs.ErrPermission):
		reason = PermissionDenied
	}
	return &OpenError{Reason: reason, Location: location, Err: err}
}
