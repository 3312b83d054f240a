package ui

import (
	"strconv"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/justyntemme/dirstat/internal/actions"
	profiles "github.com/justyntemme/dirstat/internal/layout"
)

var (
	scanCommands = []actions.Command{
		actions.GoBack, actions.GoForward, actions.GoUp, actions.GoToToplevel,
		actions.RefreshAll, actions.RefreshSelected, actions.StopReading,
		actions.ContinueAtMountPoint, actions.ReadExcluded,
		actions.ReadCache, actions.WriteCache,
		actions.CopyPath, actions.MoveToTrash,
	}
	reportCommands = []actions.Command{
		actions.FileSizeStats, actions.FileTypeStats, actions.FileAgeStats,
		actions.DiscoverLargest, actions.DiscoverNewest, actions.DiscoverOldest,
		actions.DiscoverHardLinked, actions.DiscoverBrokenSymlinks, actions.DiscoverSparse,
		actions.DiscoverByYear, actions.Locate,
	}
)

// promptFor returns the prompt a command asks for before it runs.
func promptFor(c actions.Command) PromptMode {
	switch c {
	case actions.ReadCache:
		return PromptReadCache
	case actions.WriteCache:
		return PromptWriteCache
	case actions.Locate:
		return PromptLocate
	}
	return PromptNone
}

func (r *Renderer) commandButton(gtx layout.Context, state *State, c actions.Command) layout.Dimensions {
	enabled := state.Enabled.Enabled(c)
	return r.toolButton(gtx, r.cmdBtns[c], CommandLabel(c), enabled, func() {
		if p := promptFor(c); p != PromptNone {
			r.emit(UIEvent{Action: ActionPrompt, Prompt: p})
			return
		}
		r.emit(UIEvent{Action: ActionCommand, Command: c})
	})
}

// layoutToolbar renders the two button rows: scan and navigation commands
// on top, view options and reports below.
func (r *Renderer) layoutToolbar(gtx layout.Context, state *State) layout.Dimensions {
	var top []layout.Widget
	top = append(top, func(gtx layout.Context) layout.Dimensions {
		return r.toolButton(gtx, &r.openBtn, "Open…", true, func() {
			r.emit(UIEvent{Action: ActionPrompt, Prompt: PromptOpen})
		})
	})
	for _, c := range scanCommands {
		top = append(top, func(gtx layout.Context) layout.Dimensions {
			return r.commandButton(gtx, state, c)
		})
	}

	var bottom []layout.Widget
	loaded := state.Tree != nil && state.Tree.FirstToplevel() != nil
	for i := range r.levelBtns {
		label := strconv.Itoa(i)
		if i == 0 {
			label = "Collapse"
		}
		bottom = append(bottom, func(gtx layout.Context) layout.Dimensions {
			return r.toolButton(gtx, &r.levelBtns[i], label, loaded, func() {
				r.emit(UIEvent{Action: ActionExpandLevel, Level: i})
			})
		})
	}
	bottom = append(bottom, r.toolbarGap)
	for _, c := range reportCommands {
		bottom = append(bottom, func(gtx layout.Context) layout.Dimensions {
			return r.commandButton(gtx, state, c)
		})
	}
	bottom = append(bottom, r.toolbarGap)
	for i, id := range profiles.IDs {
		bottom = append(bottom, func(gtx layout.Context) layout.Dimensions {
			btn := &r.layoutBtns[i]
			if btn.Clicked(gtx) {
				r.emit(UIEvent{Action: ActionLayout, Profile: id})
			}
			b := material.Button(r.Theme, btn, id.String())
			b.Inset = layout.UniformInset(unit.Dp(6))
			b.TextSize = unit.Sp(13)
			if id != state.Profile {
				b.Background, b.Color = colLightGray, colBlack
			}
			return layout.Inset{Right: unit.Dp(4)}.Layout(gtx, b.Layout)
		})
	}
	bottom = append(bottom,
		func(gtx layout.Context) layout.Dimensions {
			return r.toolButton(gtx, &r.detailsBtn, toggleLabel("Details", state.Flags.ShowDetailsPanel), true, func() {
				r.emit(UIEvent{Action: ActionToggleDetails})
			})
		},
		func(gtx layout.Context) layout.Dimensions {
			return r.toolButton(gtx, &r.pathBtn, toggleLabel("Path", state.Flags.ShowCurrentPath), true, func() {
				r.emit(UIEvent{Action: ActionToggleCurrentPath})
			})
		},
	)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.toolbarList.Layout(gtx, len(top), func(gtx layout.Context, i int) layout.Dimensions {
				return top[i](gtx)
			})
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.toolbar2List.Layout(gtx, len(bottom), func(gtx layout.Context, i int) layout.Dimensions {
				return bottom[i](gtx)
			})
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
	)
}

func (r *Renderer) toolbarGap(gtx layout.Context) layout.Dimensions {
	return layout.Spacer{Width: unit.Dp(12)}.Layout(gtx)
}

func toggleLabel(name string, on bool) string {
	if on {
		return "Hide " + name
	}
	return "Show " + name
}
