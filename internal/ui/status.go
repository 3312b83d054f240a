package ui

import (
	"image"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// layoutStatusBar renders the status message at the bottom of the window.
// Messages with a deadline disappear once it has passed.
func (r *Renderer) layoutStatusBar(gtx layout.Context, state *State) layout.Dimensions {
	msg := state.Status.Text
	if until := state.Status.Until; !until.IsZero() {
		if gtx.Now.After(until) {
			msg = ""
		} else {
			// Redraw when the message expires
			gtx.Execute(op.InvalidateCmd{At: until})
		}
	}

	height := gtx.Dp(26)
	paint.FillShape(gtx.Ops, colStatusBg, clip.Rect{Max: image.Pt(gtx.Constraints.Max.X, height)}.Op())
	gtx.Constraints.Min.Y = height
	return layout.Inset{Top: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body2(r.Theme, msg)
			lbl.Color, lbl.MaxLines = colBlack, 1
			return lbl.Layout(gtx)
		})
}

// layoutBusyBar shows an indeterminate progress bar while a read runs.
func (r *Renderer) layoutBusyBar(gtx layout.Context, state *State) layout.Dimensions {
	if !state.Busy {
		r.busyAnimStart = time.Time{}
		return layout.Dimensions{}
	}
	if r.busyAnimStart.IsZero() {
		r.busyAnimStart = gtx.Now
	}

	height := gtx.Dp(unit.Dp(4))
	width := gtx.Constraints.Max.X
	paint.FillShape(gtx.Ops, colLightGray, clip.Rect{Max: image.Pt(width, height)}.Op())

	// Bar slides back and forth, one pass every 1.5 seconds
	cycle := float32(gtx.Now.Sub(r.busyAnimStart).Seconds()) / 1.5
	pos := cycle - float32(int(cycle))
	if int(cycle)%2 == 1 {
		pos = 1 - pos
	}
	barWidth := width * 3 / 10
	barStart := int(pos * float32(width-barWidth))
	paint.FillShape(gtx.Ops, colBar, clip.Rect{
		Min: image.Pt(barStart, 0),
		Max: image.Pt(barStart+barWidth, height),
	}.Op())

	gtx.Execute(op.InvalidateCmd{At: gtx.Now.Add(16 * time.Millisecond)})
	return layout.Dimensions{Size: image.Pt(width, height)}
}
