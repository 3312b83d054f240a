package ui

import (
	"io"
	"strings"
	"time"

	"gioui.org/io/clipboard"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/justyntemme/dirstat/internal/actions"
	"github.com/justyntemme/dirstat/internal/config"
	"github.com/justyntemme/dirstat/internal/debug"
	profiles "github.com/justyntemme/dirstat/internal/layout"
	"github.com/justyntemme/dirstat/internal/tree"
)

// rowWidgets holds the per-node widget state of a tree row.
type rowWidgets struct {
	click widget.Clickable
	arrow widget.Clickable
}

// reportWidgets holds the widget state of one report panel.
type reportWidgets struct {
	tab   widget.Clickable
	close widget.Clickable
	items []widget.Clickable
	list  layout.List
}

type Renderer struct {
	Theme       *material.Theme
	Debug       bool
	DarkMode    bool
	ConfigError string

	hotkeys *config.HotkeyMatcher

	listState    layout.List
	toolbarList  layout.List
	toolbar2List layout.List
	detailsList  layout.List
	startList    layout.List

	rows    map[*tree.Node]*rowWidgets
	cmdBtns map[actions.Command]*widget.Clickable
	openBtn widget.Clickable

	layoutBtns  [3]widget.Clickable
	detailsBtn  widget.Clickable
	pathBtn     widget.Clickable
	levelBtns   [6]widget.Clickable
	warnDetails widget.Clickable
	warnClose   widget.Clickable

	promptEditor widget.Editor
	promptOK     widget.Clickable
	promptCancel widget.Clickable
	promptMode   PromptMode

	reports      map[int]*reportWidgets
	activeReport int

	quickBtns  []widget.Clickable
	recentBtns []widget.Clickable
	forgetBtns []widget.Clickable

	mouseTag int
	keyTag   int
	focused  bool

	busyAnimStart time.Time
	events        []UIEvent
}

func NewRenderer() *Renderer {
	r := &Renderer{
		Theme:   material.NewTheme(),
		hotkeys: config.NewHotkeyMatcher(config.DefaultHotkeys()),
		rows:    make(map[*tree.Node]*rowWidgets),
		cmdBtns: make(map[actions.Command]*widget.Clickable),
		reports: make(map[int]*reportWidgets),
	}
	r.listState.Axis = layout.Vertical
	r.detailsList.Axis = layout.Vertical
	r.startList.Axis = layout.Vertical
	r.toolbarList.Axis = layout.Horizontal
	r.toolbar2List.Axis = layout.Horizontal
	r.promptEditor.SingleLine = true
	r.promptEditor.Submit = true
	for _, c := range actions.All() {
		r.cmdBtns[c] = new(widget.Clickable)
	}
	r.applyPalette()
	return r
}

func (r *Renderer) emit(e UIEvent) {
	r.events = append(r.events, e)
}

// Layout draws one frame and returns what the user asked for during it.
func (r *Renderer) Layout(gtx layout.Context, state *State) []UIEvent {
	r.events = r.events[:0]

	var rows []Row
	if state.Tree != nil && state.View != nil {
		rows = state.View.Rows(state.Tree)
	}
	if debug.IsEnabled(debug.UI_LAYOUT) {
		debug.Log(debug.UI_LAYOUT, "frame: %d rows, %d reports", len(rows), len(state.Reports))
	}

	event.Op(gtx.Ops, &r.keyTag)
	if !r.focused {
		gtx.Execute(key.FocusCmd{Tag: &r.keyTag})
		r.focused = true
	}

	r.processGlobalInput(gtx, state, rows)

	if state.Clipboard != "" {
		gtx.Execute(clipboard.WriteCmd{
			Type: "application/text",
			Data: io.NopCloser(strings.NewReader(state.Clipboard)),
		})
		state.Clipboard = ""
	}
	if state.ActiveReport != 0 {
		r.activeReport = state.ActiveReport
		state.ActiveReport = 0
	}
	if state.ScrollTo != nil {
		if i := IndexOf(rows, state.ScrollTo); i >= 0 {
			r.ensureVisible(i)
		}
		state.ScrollTo = nil
	}

	r.layoutMain(gtx, state, rows)
	r.layoutMouseArea(gtx)

	out := make([]UIEvent, len(r.events))
	copy(out, r.events)
	return out
}

// layoutMouseArea registers the whole window for the extra mouse buttons.
// It is added after the content so it sits on top, and passes events on.
func (r *Renderer) layoutMouseArea(gtx layout.Context) {
	area := clipRect(gtx.Constraints.Max).Push(gtx.Ops)
	pass := pointer.PassOp{}.Push(gtx.Ops)
	event.Op(gtx.Ops, &r.mouseTag)
	pass.Pop()
	area.Pop()
}

func (r *Renderer) processGlobalInput(gtx layout.Context, state *State, rows []Row) {
	// Back and forward mouse buttons
	for {
		ev, ok := gtx.Event(pointer.Filter{Target: &r.mouseTag, Kinds: pointer.Press})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch {
		case e.Buttons.Contain(pointer.ButtonQuaternary):
			r.command(state, actions.GoBack)
		case e.Buttons.Contain(pointer.ButtonQuinary):
			r.command(state, actions.GoForward)
		}
	}

	// Escape closes the prompt, whether the editor has focus or not
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: key.NameEscape},
			key.Filter{Focus: &r.promptEditor, Name: key.NameEscape},
		)
		if !ok {
			break
		}
		if e, ok := ev.(key.Event); ok && e.State == key.Press && state.Prompt != PromptNone {
			r.emit(UIEvent{Action: ActionPromptCancel, Prompt: state.Prompt})
			gtx.Execute(key.FocusCmd{Tag: &r.keyTag})
		}
	}

	// Configured hotkeys
	for {
		ev, ok := gtx.Event(r.hotkeys.Filters(nil)...)
		if !ok {
			break
		}
		e, ok := ev.(key.Event)
		if !ok {
			continue
		}
		r.handleHotkey(state, r.hotkeys.Match(e))
	}

	// Tree navigation, only while the tree has keyboard focus
	for {
		ev, ok := gtx.Event(
			key.Filter{Focus: &r.keyTag, Name: key.NameUpArrow},
			key.Filter{Focus: &r.keyTag, Name: key.NameDownArrow},
			key.Filter{Focus: &r.keyTag, Name: key.NameLeftArrow},
			key.Filter{Focus: &r.keyTag, Name: key.NameRightArrow},
			key.Filter{Focus: &r.keyTag, Name: key.NameHome},
			key.Filter{Focus: &r.keyTag, Name: key.NameEnd},
			key.Filter{Focus: &r.keyTag, Name: key.NameReturn},
		)
		if !ok {
			break
		}
		if e, ok := ev.(key.Event); ok && e.State == key.Press {
			r.handleTreeKey(state, rows, e.Name)
		}
	}
}

func (r *Renderer) command(state *State, c actions.Command) {
	if !state.Enabled.Enabled(c) {
		debug.Log(debug.UI, "Command %s ignored: disabled", c)
		return
	}
	r.emit(UIEvent{Action: ActionCommand, Command: c})
}

func (r *Renderer) handleHotkey(state *State, a config.HotkeyAction) {
	switch a {
	case config.HotkeyOpen:
		r.emit(UIEvent{Action: ActionPrompt, Prompt: PromptOpen})
	case config.HotkeyRefreshAll:
		r.command(state, actions.RefreshAll)
	case config.HotkeyRefreshSelected:
		r.command(state, actions.RefreshSelected)
	case config.HotkeyStop:
		r.command(state, actions.StopReading)
	case config.HotkeyBack:
		r.command(state, actions.GoBack)
	case config.HotkeyForward:
		r.command(state, actions.GoForward)
	case config.HotkeyUp:
		r.command(state, actions.GoUp)
	case config.HotkeyToplevel:
		r.command(state, actions.GoToToplevel)
	case config.HotkeyCopyPath:
		r.command(state, actions.CopyPath)
	case config.HotkeyMoveToTrash:
		r.command(state, actions.MoveToTrash)
	case config.HotkeyLayout1:
		r.emit(UIEvent{Action: ActionLayout, Profile: profiles.L1})
	case config.HotkeyLayout2:
		r.emit(UIEvent{Action: ActionLayout, Profile: profiles.L2})
	case config.HotkeyLayout3:
		r.emit(UIEvent{Action: ActionLayout, Profile: profiles.L3})
	case config.HotkeyToggleDetails:
		r.emit(UIEvent{Action: ActionToggleDetails})
	}
}

func (r *Renderer) handleTreeKey(state *State, rows []Row, name key.Name) {
	if len(rows) == 0 {
		return
	}
	cur := IndexOf(rows, state.Current)
	target := -1
	switch name {
	case key.NameUpArrow:
		target = max(cur-1, 0)
	case key.NameDownArrow:
		target = min(cur+1, len(rows)-1)
	case key.NameHome:
		target = 0
	case key.NameEnd:
		target = len(rows) - 1
	case key.NameLeftArrow:
		if cur < 0 {
			return
		}
		row := rows[cur]
		if row.Expanded {
			r.emit(UIEvent{Action: ActionToggleExpand, Path: row.Node.Path})
			return
		}
		if p := row.Node.Parent(); p != nil && p.Parent() != nil {
			target = IndexOf(rows, p)
		}
	case key.NameRightArrow, key.NameReturn:
		if cur >= 0 && rows[cur].Node.IsDir && !rows[cur].Expanded {
			r.emit(UIEvent{Action: ActionToggleExpand, Path: rows[cur].Node.Path})
		}
		return
	}
	if target >= 0 && target != cur {
		r.emit(UIEvent{Action: ActionSelect, Path: rows[target].Node.Path})
		r.ensureVisible(target)
	}
}

// ensureVisible scrolls the tree list just enough to show row i.
func (r *Renderer) ensureVisible(i int) {
	pos := r.listState.Position
	if i < pos.First {
		r.listState.ScrollTo(i)
		return
	}
	if pos.Count > 1 && i >= pos.First+pos.Count-1 {
		r.listState.ScrollTo(i - pos.Count + 2)
	}
}
