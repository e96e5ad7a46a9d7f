package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-novel/internal/config"
	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/engine"
	_ "github.com/vovakirdan/tui-novel/internal/formats/ink"
	"github.com/vovakirdan/tui-novel/internal/logging"
	"github.com/vovakirdan/tui-novel/internal/story"
)

const shortStory = `Aru: Hello there.
Second line.
* [Tea] -> END
* [Leave] -> END
`

type harness struct {
	t     *testing.T
	m     Model
	clock time.Time
}

func newHarness(t *testing.T, speed config.TextSpeed) *harness {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "short.ink"), []byte(shortStory), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Assets.Root = dir
	cfg.Assets.Background = ""
	cfg.Story.Path = "short.ink"
	cfg.Characters = nil
	cfg.Speakers = nil
	cfg.UI.TextSpeed = speed

	game, err := engine.Load(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("engine.Load() failed: %v", err)
	}
	rc := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30}
	h := &harness{
		t:     t,
		m:     NewModel(game, cfg, rc, logging.Discard()),
		clock: time.Unix(1700000000, 0),
	}
	h.m.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) tick() {
	h.clock = h.clock.Add(time.Second / 30)
	h.send(TickMsg(h.clock))
}

func (h *harness) press(msg tea.KeyMsg) {
	h.send(msg)
	h.tick()
}

func (h *harness) content() string {
	return h.m.game.Speaker().Content
}

var space = tea.KeyMsg{Type: tea.KeySpace}

func TestModelTypewriter(t *testing.T) {
	h := newHarness(t, config.SpeedNormal)

	h.tick()
	if h.m.revealed <= 0 || !h.m.revealing() {
		t.Fatalf("reveal should be in progress, revealed = %v", h.m.revealed)
	}

	// The first press completes the line instead of advancing.
	h.press(space)
	if h.content() != "Hello there." || h.m.revealing() {
		t.Errorf("first press: content %q, revealing %v", h.content(), h.m.revealing())
	}

	h.press(space)
	if h.content() != "Second line." {
		t.Errorf("second press: content %q", h.content())
	}
	if h.m.revealed >= float64(len("Second line.")) {
		t.Error("a new line should start its reveal from the beginning")
	}
}

func TestModelChoiceFlow(t *testing.T) {
	h := newHarness(t, config.SpeedInstant)
	h.tick()

	h.press(space)
	h.press(space)
	if h.m.game.State() != story.AwaitingChoice {
		t.Fatalf("State() = %v, expected AwaitingChoice", h.m.game.State())
	}
	if len(h.m.layout.Choices) != 2 {
		t.Fatalf("layout should hold two choice boxes, has %d", len(h.m.layout.Choices))
	}

	h.press(tea.KeyMsg{Type: tea.KeyDown})
	if h.m.cursor != 1 {
		t.Errorf("cursor = %d, expected 1", h.m.cursor)
	}
	h.press(tea.KeyMsg{Type: tea.KeyDown})
	if h.m.cursor != 0 {
		t.Errorf("cursor should wrap around, got %d", h.m.cursor)
	}

	// Out of range number keys are ignored.
	h.press(runeKey('5'))
	if h.m.game.State() != story.AwaitingChoice || h.m.err != nil {
		t.Errorf("choice 5 should be ignored: state %v, err %v", h.m.game.State(), h.m.err)
	}

	h.press(tea.KeyMsg{Type: tea.KeyEnter})
	if h.m.game.State() != story.Ended {
		t.Fatalf("State() = %v, expected Ended", h.m.game.State())
	}
	if !strings.Contains(h.m.View(), "The End") {
		t.Error("the end hint should be shown")
	}

	if cmd := h.send(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil || !h.m.BackToMenu() {
		t.Error("esc after the end should leave the story")
	}
}

func TestModelEscBeforeEnd(t *testing.T) {
	h := newHarness(t, config.SpeedInstant)
	h.tick()
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	if h.m.BackToMenu() {
		t.Error("esc should do nothing while the story runs")
	}
}

func TestModelClickDebounce(t *testing.T) {
	h := newHarness(t, config.SpeedInstant)
	h.tick()

	click := tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	h.send(click)
	h.tick()
	if h.content() != "Second line." {
		t.Fatalf("click should advance, content %q", h.content())
	}

	h.send(click)
	h.tick()
	if h.m.game.State() != story.Continuing {
		t.Error("a second click inside the debounce window should be dropped")
	}
}

func TestModelClickDebounceIgnoresOtherMouseEvents(t *testing.T) {
	h := newHarness(t, config.SpeedInstant)
	h.tick()

	press := tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	release := tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	wheel := tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}

	h.send(press)
	h.tick()
	if h.content() != "Second line." {
		t.Fatalf("click should advance, content %q", h.content())
	}

	h.clock = h.clock.Add(350 * time.Millisecond)
	h.send(release)
	h.send(wheel)
	h.clock = h.clock.Add(150 * time.Millisecond)
	h.send(press)
	h.tick()
	if h.m.game.State() != story.AwaitingChoice {
		t.Errorf("state = %v, a press outside the window should advance", h.m.game.State())
	}
}

func TestModelBacklog(t *testing.T) {
	h := newHarness(t, config.SpeedInstant)
	h.tick()
	h.press(space)

	h.press(tea.KeyMsg{Type: tea.KeyTab})
	if !h.m.showBacklog {
		t.Fatal("tab should open the backlog")
	}
	view := h.m.View()
	if !strings.Contains(view, "BACKLOG") || !strings.Contains(view, "Hello there.") {
		t.Errorf("backlog view missing content:\n%s", view)
	}

	// Advancing is disabled while the backlog is open.
	h.press(space)
	if h.content() != "Second line." || h.m.game.State() != story.Continuing {
		t.Error("space should not advance behind the backlog")
	}

	h.press(tea.KeyMsg{Type: tea.KeyTab})
	if h.m.showBacklog {
		t.Error("tab should close the backlog")
	}
}

func TestModelQuit(t *testing.T) {
	h := newHarness(t, config.SpeedInstant)
	if cmd := h.send(runeKey('q')); cmd == nil || !h.m.IsQuitting() {
		t.Error("q should quit")
	}
	if h.m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestModelResize(t *testing.T) {
	h := newHarness(t, config.SpeedInstant)
	h.tick()
	h.send(tea.WindowSizeMsg{Width: 40, Height: 12})

	if h.m.screen.Width() != 40 || h.m.screen.Height() != 11 {
		t.Errorf("screen = %dx%d", h.m.screen.Width(), h.m.screen.Height())
	}
	if h.m.layout.Width != 40 {
		t.Errorf("layout width = %d", h.m.layout.Width)
	}
	if h.m.revealing() {
		t.Error("resize should keep the line revealed")
	}
	lines := strings.Split(h.m.View(), "\n")
	if len(lines) != 12 {
		t.Errorf("view should fill 12 rows, got %d", len(lines))
	}
}
