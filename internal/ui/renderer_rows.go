package ui

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/font"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dirstat/internal/debug"
	"github.com/justyntemme/dirstat/internal/tree"
)

const (
	indentDp  = 16
	sizeColDp = 90
	barColDp  = 70
	itemColDp = 80
	timeColDp = 130
)

// renderColumns draws the column header of the tree list.
func (r *Renderer) renderColumns(gtx layout.Context) layout.Dimensions {
	header := func(s string, width unit.Dp, align text.Alignment) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X, gtx.Constraints.Max.X = gtx.Dp(width), gtx.Dp(width)
			lbl := material.Body2(r.Theme, s)
			lbl.Color, lbl.Font.Weight, lbl.Alignment = colGray, font.Bold, align
			return lbl.Layout(gtx)
		})
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body2(r.Theme, "Name")
			lbl.Color, lbl.Font.Weight = colGray, font.Bold
			return lbl.Layout(gtx)
		}),
		header("Subtree %", barColDp, text.Middle),
		header("Size", sizeColDp, text.End),
		header("Items", itemColDp, text.End),
		header("Last Modified", timeColDp, text.End),
	)
}

// rowWidgetsFor returns the widget state of n, creating it on first use.
func (r *Renderer) rowWidgetsFor(n *tree.Node) *rowWidgets {
	w, ok := r.rows[n]
	if !ok {
		w = new(rowWidgets)
		r.rows[n] = w
	}
	return w
}

// pruneRows drops widget state of nodes that are no longer visible.
func (r *Renderer) pruneRows(rows []Row) {
	if len(r.rows) <= 2*len(rows)+64 {
		return
	}
	keep := make(map[*tree.Node]*rowWidgets, len(rows))
	for _, row := range rows {
		if w, ok := r.rows[row.Node]; ok {
			keep[row.Node] = w
		}
	}
	r.rows = keep
}

// renderRow renders one tree row and turns its clicks into events.
func (r *Renderer) renderRow(gtx layout.Context, row Row, state *State) layout.Dimensions {
	n := row.Node
	w := r.rowWidgetsFor(n)

	if w.arrow.Clicked(gtx) {
		r.emit(UIEvent{Action: ActionToggleExpand, Path: n.Path})
		gtx.Execute(key.FocusCmd{Tag: &r.keyTag})
	}
	for {
		click, ok := w.click.Update(gtx)
		if !ok {
			break
		}
		switch {
		case click.Modifiers.Contain(key.ModShortcut):
			r.emit(UIEvent{Action: ActionToggleSelect, Path: n.Path, Modifiers: click.Modifiers})
		case click.NumClicks >= 2 && n.IsDir:
			debug.Log(debug.UI, "Double click on %s", n.Path)
			r.emit(UIEvent{Action: ActionToggleExpand, Path: n.Path})
		default:
			r.emit(UIEvent{Action: ActionSelect, Path: n.Path})
		}
		gtx.Execute(key.FocusCmd{Tag: &r.keyTag})
	}

	selected := state.Selected[n]
	current := n == state.Current

	return material.Clickable(gtx, &w.click, func(gtx layout.Context) layout.Dimensions {
		// Measure the content first so the highlight fits it
		macro := op.Record(gtx.Ops)
		dims := r.renderRowContent(gtx, row, w)
		call := macro.Stop()

		if selected || current {
			bg := colSelected
			if !selected {
				bg = colPanel
			}
			rr := gtx.Dp(4)
			paint.FillShape(gtx.Ops, bg, clip.RRect{
				Rect: image.Rect(0, 0, dims.Size.X, dims.Size.Y),
				NE:   rr, NW: rr, SE: rr, SW: rr,
			}.Op(gtx.Ops))
		}
		call.Add(gtx.Ops)
		return dims
	})
}

func (r *Renderer) renderRowContent(gtx layout.Context, row Row, w *rowWidgets) layout.Dimensions {
	n := row.Node
	gtx.Constraints.Min.X = gtx.Constraints.Max.X

	name, nameColor := rowName(n), colBlack
	weight := font.Normal
	switch {
	case n.State().IsError():
		nameColor = colDanger
	case n.Pseudo:
		nameColor = colPseudo
	case n.IsDir:
		nameColor, weight = colDirBlue, font.Medium
	}

	total := n.TotalSize()
	var share float32
	if p := n.Parent(); p != nil && p.Parent() != nil {
		if pt := p.TotalSize(); pt > 0 {
			share = float32(total) / float32(pt)
		}
	}

	fixed := func(width unit.Dp, s string, c color.NRGBA) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X, gtx.Constraints.Max.X = gtx.Dp(width), gtx.Dp(width)
			lbl := material.Body2(r.Theme, s)
			lbl.Color, lbl.Alignment, lbl.MaxLines = c, text.End, 1
			return lbl.Layout(gtx)
		})
	}

	items := ""
	if n.IsDir {
		items = humanize.Comma(n.TotalItems())
	}

	return layout.Inset{Top: unit.Dp(3), Bottom: unit.Dp(3), Left: unit.Dp(4), Right: unit.Dp(8)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(layout.Spacer{Width: unit.Dp(indentDp * row.Depth)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					gtx.Constraints.Min.X, gtx.Constraints.Max.X = gtx.Dp(indentDp), gtx.Dp(indentDp)
					if !n.IsDir || !n.HasChildren() {
						return layout.Dimensions{Size: gtx.Constraints.Min}
					}
					arrow := "▸"
					if row.Expanded {
						arrow = "▾"
					}
					return material.Clickable(gtx, &w.arrow, func(gtx layout.Context) layout.Dimensions {
						lbl := material.Body2(r.Theme, arrow)
						lbl.Color = colGray
						return lbl.Layout(gtx)
					})
				}),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(r.Theme, name)
					lbl.Color, lbl.Font.Weight, lbl.MaxLines = nameColor, weight, 1
					return lbl.Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return r.shareBar(gtx, share)
				}),
				fixed(sizeColDp, formatSize(total), colBlack),
				fixed(itemColDp, items, colGray),
				fixed(timeColDp, formatTime(n.ModTime), colGray),
			)
		})
}

// shareBar draws the percentage of the parent's subtree a row takes.
func (r *Renderer) shareBar(gtx layout.Context, share float32) layout.Dimensions {
	width, height := gtx.Dp(barColDp), gtx.Dp(10)
	inset := gtx.Dp(6)
	size := image.Pt(width, height)
	inner := width - 2*inset
	paint.FillShape(gtx.Ops, colLightGray, clip.Rect{Min: image.Pt(inset, 0), Max: image.Pt(inset+inner, height)}.Op())
	if share > 0 {
		fill := max(int(float32(inner)*min(share, 1)), 1)
		paint.FillShape(gtx.Ops, colBar, clip.Rect{Min: image.Pt(inset, 0), Max: image.Pt(inset+fill, height)}.Op())
	}
	return layout.Dimensions{Size: size}
}

// rowName is the displayed name of a node with its read state noted.
func rowName(n *tree.Node) string {
	name := n.Name
	if n.IsSymlink {
		name += " →"
		if n.BrokenLink {
			name += " (broken)"
		}
	}
	switch st := n.State(); st {
	case tree.ReadReading:
		name += "  [reading]"
	case tree.ReadOnDemand:
		switch {
		case n.MountPoint:
			name += "  [mount point]"
		case n.Excluded:
			name += "  [excluded]"
		default:
			name += "  [not read]"
		}
	case tree.ReadPermissionDenied:
		name += "  [permission denied]"
	case tree.ReadError:
		name += "  [read error]"
	case tree.ReadAborted:
		name += "  [aborted]"
	case tree.ReadCached:
		name += "  [cached]"
	}
	if c := n.ErrSubDirCount(); c > 0 && !n.State().IsError() {
		name += fmt.Sprintf("  (%d unreadable)", c)
	}
	return name
}
