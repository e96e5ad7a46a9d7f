package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-novel/internal/story"
	"github.com/vovakirdan/tui-novel/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show story list sidebar
	sidebarWidth       = 20  // Width of story list sidebar
	maxPlaythroughs    = 100 // Max playthroughs to load
)

// HistoryKeyMap defines the key bindings for the history screen.
type HistoryKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Open      key.Binding
	NextStory key.Binding
	PrevStory key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.NextStory, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextStory, k.PrevStory},
		{k.Open, k.Back, k.Quit},
	}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "prev story"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next story"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "transcript"),
		),
		NextStory: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next story"),
		),
		PrevStory: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "prev story"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for browsing recorded playthroughs.
type HistoryModel struct {
	stories     []string // Story IDs with recorded playthroughs
	storyCursor int
	store       *storage.Store
	stats       *storage.StoryStats
	runs        []storage.Playthrough
	table       table.Model
	transcript  viewport.Model
	reading     bool // Transcript of the selected playthrough is open
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool // True if user pressed back (not quit)
	showSidebar bool // Whether to show story list sidebar
}

// NewHistoryModel creates a new history model.
func NewHistoryModel(store *storage.Store, width, height int) HistoryModel {
	h := help.New()
	h.ShowAll = false

	m := HistoryModel{
		store:       store,
		keys:        DefaultHistoryKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
		transcript:  viewport.New(width-4, max(height-8, 1)),
	}

	if store != nil {
		if all, err := store.GetAllStoryStats(); err == nil {
			for id := range all {
				m.stories = append(m.stories, id)
			}
			sort.Strings(m.stories)
		}
	}

	m.table = m.createTable()
	if len(m.stories) > 0 {
		m.loadRuns(m.stories[0])
	}
	return m
}

// createTable creates a new table with appropriate columns.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 6},
		{Title: "Started", Width: 14},
		{Title: "Reader", Width: 10},
		{Title: "Lines", Width: 6},
		{Title: "Choices", Width: 8},
		{Title: "Status", Width: 10},
	}

	// Calculate available width for table
	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}
	if tableWidth < 60 {
		columns[2].Width = max(tableWidth-50, 6)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)), // Leave room for header, stats, help
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads playthroughs and stats for the given story.
func (m *HistoryModel) loadRuns(storyID string) {
	m.runs, m.stats = nil, nil
	if m.store != nil {
		if runs, err := m.store.RecentPlaythroughs(storyID, maxPlaythroughs); err == nil {
			m.runs = runs
		}
		if stats, err := m.store.GetStoryStats(storyID); err == nil {
			m.stats = stats
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current playthroughs.
func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.runs))
	for i, p := range m.runs {
		player := p.Player
		if player == "" {
			player = "-"
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", p.ID),
			p.StartedAt.Format("Jan 02 15:04"),
			player,
			fmt.Sprintf("%d", p.Lines),
			fmt.Sprintf("%d", p.Choices),
			playthroughStatus(p),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func playthroughStatus(p storage.Playthrough) string {
	switch {
	case p.Ended:
		return "finished"
	case p.FinishedAt.IsZero():
		return "reading"
	default:
		return "left"
	}
}

// openTranscript loads the selected playthrough into the viewport.
func (m *HistoryModel) openTranscript() {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) || m.store == nil {
		return
	}
	entries, err := m.store.Transcript(m.runs[i].ID)
	if err != nil {
		m.transcript.SetContent(err.Error())
	} else {
		lines := make([]story.Entry, len(entries))
		for j, e := range entries {
			lines[j] = story.Entry{Speaker: e.Speaker, Content: e.Content, Choice: e.Choice}
		}
		m.transcript.SetContent(renderBacklog(lines, m.runs[i].Ended, m.transcript.Width))
	}
	m.transcript.GotoTop()
	m.reading = true
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.reading {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Open):
				m.reading = false
				return m, nil
			}
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Open):
			m.openTranscript()
			return m, nil

		case key.Matches(msg, m.keys.NextStory), key.Matches(msg, m.keys.Right):
			if len(m.stories) > 0 {
				m.storyCursor = (m.storyCursor + 1) % len(m.stories)
				m.loadRuns(m.stories[m.storyCursor])
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevStory), key.Matches(msg, m.keys.Left):
			if len(m.stories) > 0 {
				m.storyCursor--
				if m.storyCursor < 0 {
					m.storyCursor = len(m.stories) - 1
				}
				m.loadRuns(m.stories[m.storyCursor])
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			// Pass to table for scrolling
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.transcript.Width = msg.Width - 4
		m.transcript.Height = max(msg.Height-8, 1)
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "PLAYTHROUGHS"
	if len(m.stories) > 0 {
		title = fmt.Sprintf("PLAYTHROUGHS - %s", m.stories[m.storyCursor])
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	switch {
	case m.reading:
		b.WriteString(m.transcript.View())
	case m.showSidebar:
		b.WriteString(m.renderWideLayout())
	default:
		b.WriteString(m.renderNarrowLayout())
	}

	if !m.reading && m.stats != nil && m.stats.Playthroughs > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %d read, %d finished, %.1f choices on average",
			m.stats.Playthroughs, m.stats.Completed, m.stats.AvgChoices))
	}

	// Help bar
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the table with a sidebar for story selection.
func (m HistoryModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Stories\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, id := range m.stories {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.storyCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + truncate(id, sidebarWidth-6)))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", tableStyle.Render(m.renderTableContent()))
}

// renderNarrowLayout renders the current story name above the table.
func (m HistoryModel) renderNarrowLayout() string {
	var b strings.Builder

	if len(m.stories) > 0 {
		b.WriteString(centerText(fmt.Sprintf("< %s >", m.stories[m.storyCursor]), m.width))
		b.WriteString("\n\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m HistoryModel) renderTableContent() string {
	if len(m.runs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No playthroughs recorded yet.\nRead a story to fill this page!")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// RunHistory runs the history screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewHistoryModel(store, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
