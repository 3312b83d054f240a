package ui

import (
	"image"
	"image/color"
	"strings"

	"gioui.org/font"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

var (
	colErrorBannerBg   = color.NRGBA{R: 248, G: 215, B: 218, A: 255}
	colErrorBannerText = color.NRGBA{R: 114, G: 28, B: 36, A: 255}
)

// layoutConfigErrorBanner renders a red error banner when the config file failed to parse
func (r *Renderer) layoutConfigErrorBanner(gtx layout.Context) layout.Dimensions {
	if r.ConfigError == "" {
		return layout.Dimensions{}
	}

	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Bottom: unit.Dp(4)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			height := gtx.Dp(28)
			paint.FillShape(gtx.Ops, colErrorBannerBg, clip.Rect{Max: image.Pt(gtx.Constraints.Max.X, height)}.Op())

			return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(r.Theme, "Config error: "+r.ConfigError+" (using defaults)")
					lbl.Color = colErrorBannerText
					lbl.Font.Weight = font.Bold
					lbl.MaxLines = 1
					return lbl.Layout(gtx)
				})
		})
}

// layoutPrompt renders the one-line text prompt used by Open, the cache
// commands and Locate.
func (r *Renderer) layoutPrompt(gtx layout.Context, state *State) layout.Dimensions {
	if r.promptMode != state.Prompt {
		r.promptMode = state.Prompt
		r.promptEditor.SetText("")
		gtx.Execute(key.FocusCmd{Tag: &r.promptEditor})
	}

	submit := func(text string) {
		r.emit(UIEvent{Action: ActionPromptSubmit, Prompt: state.Prompt, Text: strings.TrimSpace(text)})
	}
	for {
		evt, ok := r.promptEditor.Update(gtx)
		if !ok {
			break
		}
		if s, ok := evt.(widget.SubmitEvent); ok {
			submit(s.Text)
		}
	}
	if r.promptOK.Clicked(gtx) {
		submit(r.promptEditor.Text())
	}
	if r.promptCancel.Clicked(gtx) {
		r.emit(UIEvent{Action: ActionPromptCancel, Prompt: state.Prompt})
		gtx.Execute(key.FocusCmd{Tag: &r.keyTag})
	}

	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Bottom: unit.Dp(6)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			return r.panelShell(gtx, colPanel, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						label := state.PromptHint
						if label == "" {
							label = state.Prompt.Label()
						}
						return r.label(gtx, label, colGray)
					}),
					layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
							layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
								return widget.Border{Color: colLightGray, Width: unit.Dp(1), CornerRadius: unit.Dp(4)}.Layout(gtx,
									func(gtx layout.Context) layout.Dimensions {
										return layout.UniformInset(unit.Dp(6)).Layout(gtx,
											material.Editor(r.Theme, &r.promptEditor, "").Layout)
									})
							}),
							layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
							layout.Rigid(material.Button(r.Theme, &r.promptOK, "OK").Layout),
							layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
							layout.Rigid(func(gtx layout.Context) layout.Dimensions {
								b := material.Button(r.Theme, &r.promptCancel, "Cancel")
								b.Background, b.Color = colLightGray, colBlack
								return b.Layout(gtx)
							}),
						)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						if state.PromptError == "" {
							return layout.Dimensions{}
						}
						return layout.Inset{Top: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
							return r.label(gtx, state.PromptError, colDanger)
						})
					}),
				)
			})
		})
}

// layoutPermissionWarning is the banner shown after a read that could not
// enter some directories.
func (r *Renderer) layoutPermissionWarning(gtx layout.Context) layout.Dimensions {
	if r.warnDetails.Clicked(gtx) {
		r.emit(UIEvent{Action: ActionShowUnreadable})
	}
	if r.warnClose.Clicked(gtx) {
		r.emit(UIEvent{Action: ActionCloseWarning})
	}

	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Bottom: unit.Dp(6)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			return r.panelShell(gtx, colWarningBg, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						lbl := material.Body2(r.Theme, "Some directories could not be read. Their totals may be too low.")
						lbl.Color, lbl.Font.Weight = colWarning, font.Bold
						return lbl.Layout(gtx)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return r.menuItemWithColor(gtx, &r.warnDetails, "Details…", colWarning)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return r.menuItemWithColor(gtx, &r.warnClose, "Close", colWarning)
					}),
				)
			})
		})
}

// layoutCurrentPath shows the path of the current item above the tree.
func (r *Renderer) layoutCurrentPath(gtx layout.Context, state *State) layout.Dimensions {
	path := ""
	if state.Current != nil {
		path = state.Current.Path
	} else if state.Tree != nil {
		path = state.Tree.URL()
	}
	return layout.Inset{Left: unit.Dp(12), Right: unit.Dp(12), Bottom: unit.Dp(4)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body2(r.Theme, path)
			lbl.Color, lbl.MaxLines = colGray, 1
			lbl.Font.Typeface = "monospace"
			return lbl.Layout(gtx)
		})
}
