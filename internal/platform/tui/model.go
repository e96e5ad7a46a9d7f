package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-novel/internal/config"
	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/engine"
	"github.com/vovakirdan/tui-novel/internal/story"
)

// Model is the Bubble Tea model for reading a story.
type Model struct {
	game   *engine.Game
	logger *log.Logger
	screen *core.Screen
	config core.RuntimeConfig
	layout Layout

	boxHeight int
	cps       float64 // Typewriter speed, 0 reveals at once

	keyMapper  *KeyMapper
	help       help.Model
	debounce   *core.Debouncer
	inputFrame core.InputFrame
	now        func() time.Time

	lineSeq  int      // Game line counter the text below belongs to
	lines    []string // Current content, wrapped to the box
	revealed float64  // Runes of lines shown so far
	cursor   int      // Highlighted choice
	lastTick time.Time

	backlog     viewport.Model
	showBacklog bool

	err        error
	quitting   bool
	backToMenu bool
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game *engine.Game, cfg config.Config, rc core.RuntimeConfig, logger *log.Logger) Model {
	m := Model{
		game:       game,
		logger:     logger,
		screen:     core.NewScreen(rc.ScreenW, max(rc.ScreenH-1, 1)),
		config:     rc,
		boxHeight:  cfg.UI.BoxHeight,
		cps:        cfg.UI.TextSpeed.CharsPerSecond(),
		keyMapper:  NewKeyMapper(),
		help:       help.New(),
		debounce:   core.NewDebouncer(cfg.Input.ClickDebounce),
		inputFrame: core.NewInputFrame(),
		now:        time.Now,
		lineSeq:    -1,
		backlog:    viewport.New(rc.ScreenW, max(rc.ScreenH-2, 1)),
	}
	m.help.Width = rc.ScreenW
	m.syncText()
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.showBacklog {
			var cmd tea.Cmd
			m.backlog, cmd = m.backlog.Update(msg)
			return m, cmd
		}
		// Only left presses count against the click window.
		if isLeftPress(msg) && m.debounce.Allow(m.now()) {
			m.keyMapper.MapMouseToFrame(msg, m.layout, &m.inputFrame)
		}
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	// The backlog scrolls with the arrow keys while open.
	if m.showBacklog && !m.inputFrame.Has(core.ActionBacklog) && !m.inputFrame.Has(core.ActionBack) {
		m.inputFrame.Clear()
		var cmd tea.Cmd
		m.backlog, cmd = m.backlog.Update(msg)
		return m, cmd
	}

	if m.inputFrame.Has(core.ActionBack) && m.game.State() == story.Ended && !m.showBacklog {
		m.backToMenu = true
		return m, tea.Quit
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, max(msg.Height-1, 1))
	m.backlog.Width = msg.Width
	m.backlog.Height = max(msg.Height-2, 1)
	m.help.Width = msg.Width

	// Rewrap the current line without restarting its reveal.
	revealed := m.revealed
	m.lineSeq = -1
	m.syncText()
	m.revealed = min(revealed, float64(RuneCount(m.lines)))
	return m, nil
}

// handleTick applies the input collected since the last tick and advances
// the reveal and the character animation.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	dt := 1 / float64(m.config.TickRate)
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now

	m.applyInput()
	m.inputFrame.Clear()
	m.syncText()

	total := float64(RuneCount(m.lines))
	if m.cps <= 0 {
		m.revealed = total
	} else {
		m.revealed = min(m.revealed+m.cps*dt, total)
	}

	m.game.Tick(dt)
	return m, tickCmd(m.config.TickRate)
}

// applyInput feeds this frame's actions to the game.
func (m *Model) applyInput() {
	f := m.inputFrame
	if f.Has(core.ActionBacklog) || (m.showBacklog && f.Has(core.ActionBack)) {
		m.toggleBacklog()
		return
	}
	if m.showBacklog {
		return
	}

	switch m.game.State() {
	case story.Continuing:
		if f.Has(core.ActionAdvance) || f.Has(core.ActionConfirm) {
			if m.revealing() {
				m.revealed = float64(RuneCount(m.lines))
				return
			}
			m.report(m.game.Advance())
		}

	case story.AwaitingChoice:
		n := len(m.game.Choices())
		switch {
		case f.Has(core.ActionChoose):
			m.choose(f.Choice)
		case f.Has(core.ActionConfirm):
			m.choose(m.cursor)
		case f.Has(core.ActionChoiceUp):
			m.cursor = (m.cursor - 1 + n) % n
		case f.Has(core.ActionChoiceDown):
			m.cursor = (m.cursor + 1) % n
		case f.Has(core.ActionAdvance) && m.revealing():
			m.revealed = float64(RuneCount(m.lines))
		}
	}
}

func (m *Model) choose(index int) {
	err := m.game.Choose(index)
	if errors.Is(err, story.ErrChoiceOutOfRange) {
		m.logger.Debug("ignoring choice", "index", index, "choices", len(m.game.Choices()))
		return
	}
	m.report(err)
}

func (m *Model) report(err error) {
	m.err = err
	if err != nil {
		m.logger.Error("story error", "err", err)
	}
}

func (m *Model) revealing() bool {
	return m.revealed < float64(RuneCount(m.lines))
}

// syncText rewraps the speaker's content when a new line was shown and
// recomputes the layout for the current choices.
func (m *Model) syncText() {
	choices := m.game.Choices()
	m.layout = ComputeLayout(m.screen.Width(), m.screen.Height(), m.boxHeight, choices)
	if m.cursor >= len(choices) {
		m.cursor = 0
	}

	if seq := m.game.LinesShown(); seq != m.lineSeq {
		m.lineSeq = seq
		m.lines = Wrap(m.game.Speaker().Content, m.layout.TextWidth())
		m.revealed = 0
		m.cursor = 0
	}
}

func (m *Model) toggleBacklog() {
	m.showBacklog = !m.showBacklog
	if m.showBacklog {
		b := m.game.Backlog()
		m.backlog.SetContent(renderBacklog(b.Entries(), b.Ended(), m.backlog.Width))
		m.backlog.GotoBottom()
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showBacklog {
		title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).
			Render(centerText("BACKLOG - "+m.game.Title(), m.config.ScreenW))
		return title + "\n" + m.backlog.View() + "\n" + m.helpLine()
	}

	m.screen.Clear()
	drawBackground(m.screen, m.layout.Scene, m.game.Background(), m.game.FallbackColor())
	if fig, ok := m.game.Drawable(); ok {
		drawFigure(m.screen, m.layout.Scene, fig)
	}
	drawDialogue(m.screen, m.layout, m.game.Speaker(), Reveal(m.lines, int(m.revealed)))
	switch m.game.State() {
	case story.AwaitingChoice:
		drawChoices(m.screen, m.layout, m.game.Choices(), m.cursor)
	case story.Ended:
		drawEnd(m.screen, m.layout)
	}

	return RenderScreen(m.screen) + "\n" + m.helpLine()
}

func (m Model) helpLine() string {
	if m.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(truncate(m.err.Error(), m.config.ScreenW))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keyMapper.Keys()))
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user left the finished story.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program with the given game.
// Returns true if the reader left the finished story rather than quitting.
func Run(game *engine.Game, cfg config.Config, rc core.RuntimeConfig, logger *log.Logger) (backToMenu bool, err error) {
	model := NewModel(game, cfg, rc, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Clicks advance and pick choices
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(Model)
	return ok && m.BackToMenu(), nil
}
