package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/script"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		action core.Action
		choice int
	}{
		{"space advances", tea.KeyMsg{Type: tea.KeySpace}, core.ActionAdvance, -1},
		{"enter confirms", tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm, -1},
		{"1 picks first", runeKey('1'), core.ActionChoose, 0},
		{"9 picks ninth", runeKey('9'), core.ActionChoose, 8},
		{"0 does nothing", runeKey('0'), core.ActionNone, -1},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, core.ActionChoiceUp, -1},
		{"j", runeKey('j'), core.ActionChoiceDown, -1},
		{"tab opens backlog", tea.KeyMsg{Type: tea.KeyTab}, core.ActionBacklog, -1},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, -1},
		{"q quits", runeKey('q'), core.ActionQuit, -1},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, choice := km.MapKey(tt.msg)
			if action != tt.action || choice != tt.choice {
				t.Errorf("MapKey() = (%v, %d), expected (%v, %d)", action, choice, tt.action, tt.choice)
			}
		})
	}
}

func TestMapKeyToFrame(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	if km.MapKeyToFrame(runeKey('2'), &frame) {
		t.Error("2 should not quit")
	}
	if !frame.Has(core.ActionChoose) || frame.Choice != 1 {
		t.Errorf("frame = %+v", frame)
	}
	if !km.MapKeyToFrame(runeKey('q'), &frame) {
		t.Error("q should quit")
	}
}

func TestMapMouseToFrame(t *testing.T) {
	km := NewKeyMapper()
	choices := []script.Choice{{Index: 0, Text: "Tea"}, {Index: 1, Text: "Leave"}}
	l := ComputeLayout(80, 24, 7, choices)

	second := l.Choices[1]
	frame := core.NewInputFrame()
	click := tea.MouseMsg{X: second.X + 1, Y: second.Y + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	if !km.MapMouseToFrame(click, l, &frame) {
		t.Fatal("left click should be handled")
	}
	if !frame.Has(core.ActionChoose) || frame.Choice != 1 {
		t.Errorf("click on second box: %+v", frame)
	}

	frame.Clear()
	click = tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	km.MapMouseToFrame(click, l, &frame)
	if !frame.Has(core.ActionAdvance) {
		t.Error("click outside the boxes should advance")
	}

	frame.Clear()
	release := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	if km.MapMouseToFrame(release, l, &frame) || frame.Has(core.ActionAdvance) {
		t.Error("release should be ignored")
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg      tea.KeyMsg
		expected MenuAction
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, MenuActionUp},
		{runeKey('j'), MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionHistory},
		{tea.KeyMsg{Type: tea.KeyEsc}, MenuActionBack},
		{runeKey('q'), MenuActionQuit},
		{runeKey('x'), MenuActionNone},
	}

	for _, tt := range tests {
		if got := km.MapKeyToMenuAction(tt.msg); got != tt.expected {
			t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.expected)
		}
	}
}
