package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-novel/internal/story"
)

var (
	backlogName   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	backlogChoice = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
)

// renderBacklog formats backlog entries for a viewport, wrapped to width
// cells.
func renderBacklog(entries []story.Entry, ended bool, width int) string {
	if len(entries) == 0 {
		return backlogChoice.Render("Nothing yet.")
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch {
		case e.Choice:
			for _, line := range Wrap("> "+e.Content, max(width-2, 1)) {
				sb.WriteString(backlogChoice.Render(line))
				sb.WriteString("\n")
			}
		case e.Speaker != "":
			sb.WriteString(backlogName.Render(e.Speaker))
			sb.WriteString("\n")
			fallthrough
		default:
			for _, line := range Wrap(e.Content, max(width-2, 1)) {
				sb.WriteString("  " + line + "\n")
			}
		}
	}
	if ended {
		sb.WriteString("\n")
		sb.WriteString(backlogChoice.Render("- The End -"))
	}
	return sb.String()
}
