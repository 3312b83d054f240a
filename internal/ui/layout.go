package ui

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
)

// layoutMain stacks the window content top to bottom.
func (r *Renderer) layoutMain(gtx layout.Context, state *State, rows []Row) layout.Dimensions {
	defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, colWhite)

	loaded := state.Tree != nil && state.Tree.FirstToplevel() != nil

	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(6), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					return r.layoutToolbar(gtx, state)
				})
		}),
		layout.Rigid(r.layoutConfigErrorBanner),
	}
	if state.Prompt != PromptNone {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.layoutPrompt(gtx, state)
		}))
	} else {
		r.promptMode = PromptNone
	}
	if state.Warning {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.layoutPermissionWarning(gtx)
		}))
	}
	if loaded && state.Flags.ShowCurrentPath {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.layoutCurrentPath(gtx, state)
		}))
	}

	children = append(children, layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
		if !loaded {
			return r.layoutStartPage(gtx, state)
		}
		return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, r.treeAndDetails(state, rows)...)
	}))

	if len(state.Reports) > 0 {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Max.Y = gtx.Constraints.Max.Y * 2 / 5
			return r.layoutReports(gtx, state)
		}))
	}
	children = append(children,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.layoutBusyBar(gtx, state)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.layoutStatusBar(gtx, state)
		}),
	)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (r *Renderer) treeAndDetails(state *State, rows []Row) []layout.FlexChild {
	children := []layout.FlexChild{
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return r.layoutTreeList(gtx, state, rows)
		}),
	}
	if state.Flags.ShowDetailsPanel {
		children = append(children,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				paint.FillShape(gtx.Ops, color.NRGBA{A: 50}, clip.Rect{Max: image.Pt(gtx.Dp(1), gtx.Constraints.Max.Y)}.Op())
				return layout.Dimensions{Size: image.Pt(gtx.Dp(1), gtx.Constraints.Max.Y)}
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.X, gtx.Constraints.Max.X = gtx.Dp(280), gtx.Dp(280)
				paint.FillShape(gtx.Ops, colPanel, clip.Rect{Max: gtx.Constraints.Max}.Op())
				return r.layoutDetails(gtx, state)
			}),
		)
	}
	return children
}
