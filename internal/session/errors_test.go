package session

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/justyntemme/dirstat/internal/tree"
)

func TestNewOpenErrorReasons(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason Reason
		is     error
	}{
		{"not found", fs.ErrNotExist, PathNotFound, ErrPathNotFound},
		{"wrapped permission", fmt.Errorf("stat: %w", fs.ErrPermission), PermissionDenied, ErrPermissionDenied},
		{"typed", &OpenError{Reason: NotADirectory, Location: "/etc/passwd"}, NotADirectory, ErrNotADirectory},
		{"other", errors.New("boom"), ReasonUnknown, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oe := NewOpenError("/x", tt.err)
			assert.Equal(t, tt.reason, oe.Reason)
			if tt.is != nil {
				assert.ErrorIs(t, oe, tt.is)
			}
			assert.NotErrorIs(t, oe, ErrBadCacheFile)
		})
	}
}

func TestOpenErrorMessage(t *testing.T) {
	err := &OpenError{Reason: PathNotFound, Location: "/data", Err: fs.ErrNotExist}
	assert.Equal(t, `could not open "/data": path not found: file does not exist`, err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d      time.Duration
		millis bool
		want   string
	}{
		{1500 * time.Millisecond, true, "1.5s"},
		{1500 * time.Millisecond, false, "1s"},
		{65 * time.Second, true, "1:05"},
		{3723 * time.Second, false, "1:02:03"},
		{-time.Second, true, "0.0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatElapsed(tt.d, tt.millis))
	}
}

func TestStatusMessages(t *testing.T) {
	tr := tree.New()
	tr.Reset("/data", tree.KindFilesystem)
	top := &tree.Node{Name: "data", Path: "/data", IsDir: true}
	tr.Attach(nil, top)
	locked := &tree.Node{Name: "locked", Path: "/data/locked", IsDir: true}
	tr.Attach(top, locked)
	tr.SetState(locked, tree.ReadPermissionDenied)
	f := &tree.Node{Name: "f", Path: "/data/f", Size: 1536}
	tr.Attach(top, f)

	assert.Equal(t, "/data/locked  (0 B)  [Permission Denied]", CurrentMessage(locked))
	assert.Equal(t, "/data  (1.5 KiB)", CurrentMessage(top))
	assert.Equal(t, "", CurrentMessage(nil))
	assert.Equal(t, "/data/f  (1.5 KiB)", SummaryMessage(f, []*tree.Node{f}))
	assert.Equal(t, "2 items selected (1.5 KiB total)", SummaryMessage(f, []*tree.Node{f, top}))
}
