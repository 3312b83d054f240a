package ui

import (
	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// layoutDetails renders the details panel for the current item or the
// selection summary.
func (r *Renderer) layoutDetails(gtx layout.Context, state *State) layout.Dimensions {
	return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				title := state.DetailsTitle
				if title == "" {
					title = "Details"
				}
				lbl := material.Subtitle1(r.Theme, title)
				lbl.Color, lbl.Font.Weight, lbl.MaxLines = colBlack, font.Bold, 2
				return lbl.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
			layout.Rigid(separator),
			layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return r.detailsList.Layout(gtx, len(state.Details), func(gtx layout.Context, i int) layout.Dimensions {
					return layout.Inset{Bottom: unit.Dp(3)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						lbl := material.Body2(r.Theme, state.Details[i])
						lbl.Color = colBlack
						return lbl.Layout(gtx)
					})
				})
			}),
		)
	})
}

// layoutStartPage is shown while no tree is loaded: mounted filesystems to
// start from, then recently opened locations.
func (r *Renderer) layoutStartPage(gtx layout.Context, state *State) layout.Dimensions {
	if len(r.quickBtns) != len(state.QuickRoots) {
		r.quickBtns = make([]widget.Clickable, len(state.QuickRoots))
	}
	if len(r.recentBtns) != len(state.Recent) {
		r.recentBtns = make([]widget.Clickable, len(state.Recent))
		r.forgetBtns = make([]widget.Clickable, len(state.Recent))
	}
	open := func(path string) {
		r.emit(UIEvent{Action: ActionPromptSubmit, Prompt: PromptOpen, Text: path})
	}

	var items []layout.Widget
	heading := func(s string) layout.Widget {
		return func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(12), Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				lbl := material.Subtitle1(r.Theme, s)
				lbl.Color, lbl.Font.Weight = colGray, font.Bold
				return lbl.Layout(gtx)
			})
		}
	}

	if len(state.QuickRoots) > 0 {
		items = append(items, heading("Filesystems"))
		for i, q := range state.QuickRoots {
			items = append(items, func(gtx layout.Context) layout.Dimensions {
				if r.quickBtns[i].Clicked(gtx) {
					open(q.Path)
				}
				return r.menuItem(gtx, &r.quickBtns[i], q.Name+"   "+q.Path)
			})
		}
	}
	if len(state.Recent) > 0 {
		items = append(items, heading("Recent"))
		for i, loc := range state.Recent {
			items = append(items, func(gtx layout.Context) layout.Dimensions {
				if r.recentBtns[i].Clicked(gtx) {
					open(loc)
				}
				if r.forgetBtns[i].Clicked(gtx) {
					r.emit(UIEvent{Action: ActionForgetRecent, Path: loc})
				}
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.menuItem(gtx, &r.recentBtns[i], loc)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return r.menuItemWithColor(gtx, &r.forgetBtns[i], "×", colGray)
					}),
				)
			})
		}
	}
	if len(items) == 0 {
		items = append(items, heading("Nothing loaded. Use Open… to read a directory."))
	}

	return layout.UniformInset(unit.Dp(16)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return r.startList.Layout(gtx, len(items), func(gtx layout.Context, i int) layout.Dimensions {
			return items[i](gtx)
		})
	})
}
