package tui

import (
	"testing"

	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/script"
)

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(80, 24, 7, nil)

	if l.Scene != core.NewRect(0, 0, 80, 17) {
		t.Errorf("Scene = %+v", l.Scene)
	}
	if l.Box != core.NewRect(0, 17, 80, 7) {
		t.Errorf("Box = %+v", l.Box)
	}
	if len(l.Choices) != 0 {
		t.Errorf("Choices = %v", l.Choices)
	}
	if l.TextWidth() != 76 || l.TextRows() != 4 {
		t.Errorf("text area = %dx%d", l.TextWidth(), l.TextRows())
	}
}

func TestComputeLayoutChoices(t *testing.T) {
	choices := []script.Choice{
		{Index: 0, Text: "Order tea"},
		{Index: 1, Text: "Look around the room for a while"},
		{Index: 2, Text: "Leave"},
	}
	l := ComputeLayout(80, 24, 7, choices)

	if len(l.Choices) != 3 {
		t.Fatalf("Expected 3 choice boxes, got %d", len(l.Choices))
	}
	for i, r := range l.Choices {
		if r.H != choiceBoxHeight {
			t.Errorf("box %d height = %d", i, r.H)
		}
		if r.Bottom() > l.Scene.Bottom() {
			t.Errorf("box %d overlaps the dialogue box: %+v", i, r)
		}
		if i > 0 && r.Intersects(l.Choices[i-1]) {
			t.Errorf("box %d overlaps box %d", i, i-1)
		}
	}
	// All boxes share the widest label's width.
	want := StringWidth(ChoiceLabel(choices[1])) + 2*choicePadding
	if l.Choices[0].W != want {
		t.Errorf("box width = %d, expected %d", l.Choices[0].W, want)
	}
}

func TestHitChoice(t *testing.T) {
	choices := []script.Choice{{Index: 0, Text: "A"}, {Index: 1, Text: "B"}}
	l := ComputeLayout(40, 20, 5, choices)

	tests := []struct {
		name     string
		x, y     int
		expected int
	}{
		{"first box corner", l.Choices[0].X, l.Choices[0].Y, 0},
		{"second box center", l.Choices[1].X + l.Choices[1].W/2, l.Choices[1].Y + 1, 1},
		{"gap between boxes", l.Choices[0].X, l.Choices[0].Bottom(), -1},
		{"dialogue box", 1, 18, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.HitChoice(tt.x, tt.y); got != tt.expected {
				t.Errorf("HitChoice(%d, %d) = %d, expected %d", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}

func TestComputeLayoutNarrow(t *testing.T) {
	choices := []script.Choice{{Index: 0, Text: "An option far wider than this tiny terminal"}}
	l := ComputeLayout(30, 10, 4, choices)
	if l.Choices[0].W != 28 {
		t.Errorf("box width = %d, expected clamp to 28", l.Choices[0].W)
	}
}
