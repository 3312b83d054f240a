package ui

import (
	"fmt"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

func (r *Renderer) reportWidgetsFor(rep *Report) *reportWidgets {
	w, ok := r.reports[rep.ID]
	if !ok {
		w = &reportWidgets{list: layout.List{Axis: layout.Vertical}}
		r.reports[rep.ID] = w
	}
	if len(w.items) != len(rep.Items) {
		w.items = make([]widget.Clickable, len(rep.Items))
	}
	return w
}

// layoutReports renders the open report panels as tabs with the active one
// below them.
func (r *Renderer) layoutReports(gtx layout.Context, state *State) layout.Dimensions {
	var active *Report
	live := make(map[int]bool, len(state.Reports))
	for _, rep := range state.Reports {
		live[rep.ID] = true
		if rep.ID == r.activeReport {
			active = rep
		}
	}
	for id := range r.reports {
		if !live[id] {
			delete(r.reports, id)
		}
	}
	if active == nil {
		active = state.Reports[len(state.Reports)-1]
		r.activeReport = active.ID
	}

	tabs := make([]layout.FlexChild, 0, len(state.Reports)+2)
	for _, rep := range state.Reports {
		w := r.reportWidgetsFor(rep)
		if w.tab.Clicked(gtx) {
			r.activeReport = rep.ID
			active = rep
		}
		tabs = append(tabs, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			b := material.Button(r.Theme, &w.tab, rep.Title)
			b.Inset = layout.UniformInset(unit.Dp(6))
			b.TextSize = unit.Sp(13)
			if rep.ID != r.activeReport {
				b.Background, b.Color = colLightGray, colBlack
			}
			return layout.Inset{Right: unit.Dp(4)}.Layout(gtx, b.Layout)
		}))
	}
	aw := r.reportWidgetsFor(active)
	if aw.close.Clicked(gtx) {
		r.emit(UIEvent{Action: ActionCloseReport, Report: active.ID})
	}
	tabs = append(tabs,
		layout.Flexed(1, layout.Spacer{}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.menuItemWithColor(gtx, &aw.close, "Close", colDanger)
		}),
	)

	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Top: unit.Dp(4)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			return r.panelShell(gtx, colPanel, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, tabs...)
					}),
					layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.layoutReportBody(gtx, active, aw)
					}),
				)
			})
		})
}

func (r *Renderer) layoutReportBody(gtx layout.Context, rep *Report, w *reportWidgets) layout.Dimensions {
	n := len(rep.Lines) + len(rep.Items)
	if n == 0 {
		return r.label(gtx, "Nothing found.", colGray)
	}
	return w.list.Layout(gtx, n, func(gtx layout.Context, i int) layout.Dimensions {
		if i < len(rep.Lines) {
			lbl := material.Body2(r.Theme, rep.Lines[i])
			lbl.Color, lbl.MaxLines = colBlack, 1
			lbl.Font.Typeface = "monospace"
			if i == 0 && len(rep.Items) == 0 {
				lbl.Font.Weight = font.Bold
			}
			return lbl.Layout(gtx)
		}
		j := i - len(rep.Lines)
		node := rep.Items[j]
		if w.items[j].Clicked(gtx) {
			r.emit(UIEvent{Action: ActionNavigate, Path: node.Path})
		}
		text := fmt.Sprintf("%10s  %s  %s", formatSize(node.TotalSize()), formatTime(node.ModTime), node.Path)
		return r.menuItem(gtx, &w.items[j], text)
	})
}
