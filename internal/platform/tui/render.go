package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-novel/internal/assets"
	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/script"
	"github.com/vovakirdan/tui-novel/internal/story"
)

// Palette used for the dialogue and choice boxes.
var (
	boxBG        = core.ColorNight
	boxBorder    = core.ColorGray
	textFG       = core.ColorWhite
	nameFG       = core.ColorYellow
	choiceBG     = core.RGB(30, 30, 60)
	choiceCursor = core.RGB(60, 50, 110)
)

type cellStyle struct{ fg, bg core.Color }

// style maps a cell color pair to a lipgloss style.
func (c cellStyle) style() lipgloss.Style {
	s := lipgloss.NewStyle()
	if !c.fg.IsDefault() {
		s = s.Foreground(lipgloss.Color(c.fg.Hex()))
	}
	if !c.bg.IsDefault() {
		s = s.Background(lipgloss.Color(c.bg.Hex()))
	}
	return s
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colors to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*4 + s.Height())

	styles := make(map[cellStyle]lipgloss.Style)
	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same colors for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			key := cellStyle{cell.FG, cell.BG}

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if (cellStyle{cell.FG, cell.BG}) != key {
					break
				}
				// Zero marks the cell covered by a wide rune.
				if cell.Rune != 0 {
					run.WriteRune(cell.Rune)
				}
				x++
			}

			if key.fg.IsDefault() && key.bg.IsDefault() {
				sb.WriteString(run.String())
				continue
			}
			style, ok := styles[key]
			if !ok {
				style = key.style()
				styles[key] = style
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// drawBackground fills r with the texture scaled to fit, or with the
// fallback color when there is no texture.
func drawBackground(s *core.Screen, r core.Rect, tex *assets.Texture, fallback core.Color) {
	if tex == nil {
		s.DrawRect(r, ' ', fallback)
		return
	}
	grid := tex.Cells(r.W, r.H)
	for y, row := range grid {
		for x, c := range row {
			s.SetCell(r.X+x, r.Y+y, c)
		}
	}
}

// drawText writes text at (x, y) advancing by display width, so wide
// runes take two cells. Background colors already on screen are kept.
func drawText(s *core.Screen, x, y int, text string, fg core.Color) {
	for _, r := range text {
		s.SetFG(x, y, r, fg)
		w := RuneWidth(r)
		if w == 2 {
			s.SetFG(x+1, y, 0, fg)
		}
		x += w
	}
}

// drawPanel fills r with bg and outlines it.
func drawPanel(s *core.Screen, r core.Rect, bg, border core.Color) {
	s.DrawRect(r, ' ', bg)
	if r.W >= 2 && r.H >= 2 {
		s.DrawBox(r, border)
	}
}

// drawDialogue renders the speaker name and the revealed text lines.
func drawDialogue(s *core.Screen, l Layout, sp story.SpeakerState, lines []string) {
	if l.Box.H == 0 {
		return
	}
	drawPanel(s, l.Box, boxBG, boxBorder)

	if sp.HasSpeaker() {
		col := sp.Color
		if col.IsDefault() {
			col = nameFG
		}
		drawText(s, l.Box.X+2, l.Box.Y+1, truncate(sp.Name, l.TextWidth()), col)
	}

	rows := l.TextRows()
	// Keep the most recent rows when the text overflows.
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for i, line := range lines {
		drawText(s, l.Box.X+2, l.Box.Y+2+i, line, textFG)
	}
}

// drawChoices renders one box per choice, highlighting the cursor.
func drawChoices(s *core.Screen, l Layout, choices []script.Choice, cursor int) {
	for i, r := range l.Choices {
		if i >= len(choices) {
			break
		}
		bg := choiceBG
		border := boxBorder
		if i == cursor {
			bg = choiceCursor
			border = nameFG
		}
		drawPanel(s, r, bg, border)
		label := truncate(ChoiceLabel(choices[i]), r.W-2*choicePadding)
		drawText(s, r.X+(r.W-StringWidth(label))/2, r.Y+1, label, textFG)
	}
}

// drawEnd overlays the end-of-story hint on the dialogue box border.
func drawEnd(s *core.Screen, l Layout) {
	if l.Box.H == 0 {
		return
	}
	hint := " The End - esc to leave "
	drawText(s, l.Box.Right()-StringWidth(hint)-2, l.Box.Bottom()-1, hint, nameFG)
}
