package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-novel/internal/core"
)

// PlayKeyMap defines the key bindings used while reading a story.
type PlayKeyMap struct {
	Advance key.Binding
	Confirm key.Binding
	Choose  key.Binding
	Up      key.Binding
	Down    key.Binding
	Backlog key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k PlayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.Choose, k.Backlog, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k PlayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Advance, k.Confirm, k.Choose},
		{k.Up, k.Down},
		{k.Backlog, k.Back, k.Quit},
	}
}

// DefaultPlayKeyMap returns default key bindings.
func DefaultPlayKeyMap() PlayKeyMap {
	return PlayKeyMap{
		Advance: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space/click", "next"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next/pick"),
		),
		Choose: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "choose"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "prev choice"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next choice"),
		),
		Backlog: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "backlog"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave (after the end)"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to story actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys PlayKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultPlayKeyMap()}
}

// Keys returns the bindings, for the help bar.
func (km *KeyMapper) Keys() PlayKeyMap {
	return km.keys
}

// MapKey translates a key message to an action. For ActionChoose, choice
// holds the zero-based index of the pressed number key.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, choice int) {
	switch {
	case key.Matches(msg, km.keys.Quit):
		return core.ActionQuit, -1
	case key.Matches(msg, km.keys.Advance):
		return core.ActionAdvance, -1
	case key.Matches(msg, km.keys.Confirm):
		return core.ActionConfirm, -1
	case key.Matches(msg, km.keys.Choose):
		return core.ActionChoose, int(msg.String()[0] - '1')
	case key.Matches(msg, km.keys.Up):
		return core.ActionChoiceUp, -1
	case key.Matches(msg, km.keys.Down):
		return core.ActionChoiceDown, -1
	case key.Matches(msg, km.keys.Backlog):
		return core.ActionBacklog, -1
	case key.Matches(msg, km.keys.Back):
		return core.ActionBack, -1
	}
	return core.ActionNone, -1
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, choice := km.MapKey(msg)
	switch action {
	case core.ActionNone:
	case core.ActionChoose:
		frame.SetChoice(choice)
	default:
		frame.Set(action)
	}
	return action == core.ActionQuit
}

// MapMouseToFrame turns a left click into a choice pick when it lands in
// one of the choice boxes, or into an advance otherwise.
func (km *KeyMapper) MapMouseToFrame(msg tea.MouseMsg, l Layout, frame *core.InputFrame) bool {
	if !isLeftPress(msg) {
		return false
	}
	if i := l.HitChoice(msg.X, msg.Y); i >= 0 {
		frame.SetChoice(i)
		return true
	}
	frame.Set(core.ActionAdvance)
	return true
}

func isLeftPress(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionHistory
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "tab":
		return MenuActionHistory
	case "b", "esc":
		return MenuActionBack
	}

	return MenuActionNone
}
