package stats

import (
	"golang.org/x/sync/singleflight"

	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
)

// Kind selects a statistics report.
type Kind int

const (
	KindSize Kind = iota
	KindType
	KindAge
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindAge:
		return "age"
	}
	return "size"
}

// Report is a SizeReport, TypeReport or AgeReport.
type Report interface {
	Lines() []string
}

// Collector computes reports off the control goroutine. Concurrent requests
// for the same report and directory share one computation.
type Collector struct {
	w     Walker
	group singleflight.Group
}

func NewCollector(w Walker) *Collector {
	return &Collector{w: w}
}

// Collect computes the report of the given kind for root. It blocks; callers
// run it on a worker goroutine.
func (c *Collector) Collect(kind Kind, root *tree.Node) Report {
	key := kind.String() + ":" + root.Path
	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		debug.Log(debug.UI, "stats: collecting %s", key)
		switch kind {
		case KindType:
			return FileTypes(c.w, root), nil
		case KindAge:
			return FileAges(c.w, root), nil
		}
		return FileSizes(c.w, root), nil
	})
	if shared {
		debug.Log(debug.UI, "stats: %s shared with a concurrent request", key)
	}
	return v.(Report)
}
