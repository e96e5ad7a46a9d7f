package tui

import (
	"fmt"

	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/script"
)

// Layout constants
const (
	choiceBoxHeight = 3 // Border, label, border
	choiceGap       = 1
	choicePadding   = 3 // Cells between the border and the label on each side
	minChoiceWidth  = 20
)

// Layout places the scene, dialogue box and choice boxes on a screen.
type Layout struct {
	Width   int
	Height  int
	Scene   core.Rect   // Background and character
	Box     core.Rect   // Dialogue box
	Choices []core.Rect // One box per pending choice, in order
}

// ChoiceLabel is the text shown inside a choice box.
func ChoiceLabel(c script.Choice) string {
	return fmt.Sprintf("%d. %s", c.Index+1, c.Text)
}

// ComputeLayout splits a width x height screen. The dialogue box takes
// boxHeight rows at the bottom; choice boxes are stacked in the middle of
// the scene.
func ComputeLayout(width, height, boxHeight int, choices []script.Choice) Layout {
	boxHeight = core.Clamp(boxHeight, 0, height)
	l := Layout{
		Width:  width,
		Height: height,
		Scene:  core.NewRect(0, 0, width, height-boxHeight),
		Box:    core.NewRect(0, height-boxHeight, width, boxHeight),
	}
	if len(choices) == 0 {
		return l
	}

	boxW := minChoiceWidth
	for _, c := range choices {
		boxW = max(boxW, StringWidth(ChoiceLabel(c))+2*choicePadding)
	}
	boxW = min(boxW, width-2)

	total := len(choices)*choiceBoxHeight + (len(choices)-1)*choiceGap
	y := l.Scene.Y + max(0, (l.Scene.H-total)/2)
	x := (width - boxW) / 2
	for range choices {
		l.Choices = append(l.Choices, core.NewRect(x, y, boxW, choiceBoxHeight))
		y += choiceBoxHeight + choiceGap
	}
	return l
}

// HitChoice returns the index of the choice box containing (x, y), or -1.
func (l Layout) HitChoice(x, y int) int {
	for i, r := range l.Choices {
		if r.Contains(x, y) {
			return i
		}
	}
	return -1
}

// TextWidth is the usable width inside the dialogue box.
func (l Layout) TextWidth() int {
	return max(l.Box.W-4, 1)
}

// TextRows is the number of text rows inside the dialogue box, below the
// speaker name row.
func (l Layout) TextRows() int {
	return max(l.Box.H-3, 1)
}
