package session

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dirstat/internal/selection"
	"github.com/justyntemme/dirstat/internal/tree"
)

// LongMessage is how long the finished/aborted messages stay visible.
const LongMessage = 25 * time.Second

// FormatElapsed renders a duration as "1.3s", "4:05" or "1:02:03". With
// millis unset sub-second precision is dropped.
func FormatElapsed(d time.Duration, millis bool) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		if millis {
			return fmt.Sprintf("%.1fs", d.Seconds())
		}
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	total := int(d.Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSize renders a byte count for the status bar.
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}

// CurrentMessage describes a single item: "path  (size)" plus a suffix for
// unreadable directories.
func CurrentMessage(n *tree.Node) string {
	if n == nil {
		return ""
	}
	msg := fmt.Sprintf("%s  (%s)", n.Path, FormatSize(n.TotalSize()))
	switch n.State() {
	case tree.ReadPermissionDenied:
		msg += "  [Permission Denied]"
	case tree.ReadError:
		msg += "  [Read Error]"
	}
	return msg
}

// SummaryMessage describes the selection: the current item for zero or one
// selected items, a count and total otherwise.
func SummaryMessage(current *tree.Node, selected []*tree.Node) string {
	if len(selected) <= 1 {
		return CurrentMessage(current)
	}
	return fmt.Sprintf("%d items selected (%s total)", len(selected), FormatSize(selection.TotalSize(selected)))
}
