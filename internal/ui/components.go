package ui

import (
	"image"
	"image/color"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dirstat/internal/actions"
)

var commandLabels = map[actions.Command]string{
	actions.StopReading:            "Stop",
	actions.RefreshAll:             "Refresh All",
	actions.RefreshSelected:        "Refresh",
	actions.ContinueAtMountPoint:   "Continue at Mount Point",
	actions.ReadExcluded:           "Read Excluded",
	actions.ReadCache:              "Read Cache…",
	actions.WriteCache:             "Write Cache…",
	actions.MoveToTrash:            "Move to Trash",
	actions.FileSizeStats:          "Size Stats",
	actions.FileTypeStats:          "Types",
	actions.FileAgeStats:           "Ages",
	actions.CopyPath:               "Copy Path",
	actions.GoUp:                   "Up",
	actions.GoToToplevel:           "Toplevel",
	actions.GoBack:                 "<",
	actions.GoForward:              ">",
	actions.DiscoverLargest:        "Largest",
	actions.DiscoverNewest:         "Newest",
	actions.DiscoverOldest:         "Oldest",
	actions.DiscoverHardLinked:     "Hard Links",
	actions.DiscoverBrokenSymlinks: "Broken Links",
	actions.DiscoverSparse:         "Sparse",
	actions.DiscoverByYear:         "Same Year",
	actions.Locate:                 "Locate…",
}

// CommandLabel returns the button text of a command.
func CommandLabel(c actions.Command) string {
	if l, ok := commandLabels[c]; ok {
		return l
	}
	return c.String()
}

func clipRect(size image.Point) clip.Rect {
	return clip.Rect{Max: size}
}

// toolButton is a flat toolbar button. Disabled buttons are greyed out and
// ignore clicks.
func (r *Renderer) toolButton(gtx layout.Context, btn *widget.Clickable, label string, enabled bool, action func()) layout.Dimensions {
	if btn.Clicked(gtx) && enabled {
		action()
	}
	b := material.Button(r.Theme, btn, label)
	b.Inset = layout.Inset{Top: unit.Dp(6), Bottom: unit.Dp(6), Left: unit.Dp(10), Right: unit.Dp(10)}
	b.TextSize = unit.Sp(13)
	if !enabled {
		b.Background, b.Color = colLightGray, colDisabled
	}
	return layout.Inset{Right: unit.Dp(4)}.Layout(gtx, b.Layout)
}

// panelShell draws content on a panel background with a grey border.
func (r *Renderer) panelShell(gtx layout.Context, bg color.NRGBA, content layout.Widget) layout.Dimensions {
	return widget.Border{Color: colLightGray, Width: unit.Dp(1), CornerRadius: unit.Dp(4)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			return layout.Stack{}.Layout(gtx,
				layout.Expanded(func(gtx layout.Context) layout.Dimensions {
					paint.FillShape(gtx.Ops, bg, clip.Rect{Max: gtx.Constraints.Min}.Op())
					return layout.Dimensions{Size: gtx.Constraints.Min}
				}),
				layout.Stacked(func(gtx layout.Context) layout.Dimensions {
					gtx.Constraints.Min.X = gtx.Constraints.Max.X
					return layout.UniformInset(unit.Dp(8)).Layout(gtx, content)
				}),
			)
		})
}

// menuItemWithColor renders a clickable row with the given text color
func (r *Renderer) menuItemWithColor(gtx layout.Context, btn *widget.Clickable, label string, textColor color.NRGBA) layout.Dimensions {
	return material.Clickable(gtx, btn, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(r.Theme, label)
				lbl.Color = textColor
				lbl.MaxLines = 1
				return lbl.Layout(gtx)
			})
	})
}

func (r *Renderer) menuItem(gtx layout.Context, btn *widget.Clickable, label string) layout.Dimensions {
	return r.menuItemWithColor(gtx, btn, label, colDirBlue)
}

// label is a single-line Body2 label.
func (r *Renderer) label(gtx layout.Context, s string, c color.NRGBA) layout.Dimensions {
	lbl := material.Body2(r.Theme, s)
	lbl.Color = c
	lbl.MaxLines = 1
	return lbl.Layout(gtx)
}

// separator draws a one pixel horizontal line.
func separator(gtx layout.Context) layout.Dimensions {
	size := image.Pt(gtx.Constraints.Max.X, gtx.Dp(1))
	paint.FillShape(gtx.Ops, colLightGray, clip.Rect{Max: size}.Op())
	return layout.Dimensions{Size: size}
}

func formatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
