package app

import (
	"sort"

	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
	"github.com/justyntemme/dirstat/internal/ui"
)

// openReport shows a report, replacing an open one of the same kind, and
// brings it to the front.
func (o *Orchestrator) openReport(kind ui.ReportKind, title string, lines []string, items []*tree.Node) {
	o.nextReport++
	o.reports[kind] = &ui.Report{
		ID:    o.nextReport,
		Kind:  kind,
		Title: title,
		Lines: lines,
		Items: items,
	}
	debug.Log(debug.APP, "report %d opened: %s", o.nextReport, title)
	o.mu.Lock()
	o.state.ActiveReport = o.nextReport
	o.mu.Unlock()
	o.view.ShowStatus("", 0)
}

func (o *Orchestrator) closeReport(id int) {
	for kind, r := range o.reports {
		if r.ID == id {
			delete(o.reports, kind)
			return
		}
	}
}

func (o *Orchestrator) closeReportKind(kind ui.ReportKind) {
	delete(o.reports, kind)
}

// closeAllReports drops every report; they point into the old tree.
func (o *Orchestrator) closeAllReports() {
	clear(o.reports)
}

// reportList returns the open reports ordered by kind.
func (o *Orchestrator) reportList() []*ui.Report {
	out := make([]*ui.Report, 0, len(o.reports))
	for _, r := range o.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
