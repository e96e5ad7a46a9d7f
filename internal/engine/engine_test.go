package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-novel/internal/character"
	"github.com/vovakirdan/tui-novel/internal/config"
	"github.com/vovakirdan/tui-novel/internal/core"
	_ "github.com/vovakirdan/tui-novel/internal/formats/ink"
	"github.com/vovakirdan/tui-novel/internal/logging"
	"github.com/vovakirdan/tui-novel/internal/rig"
	"github.com/vovakirdan/tui-novel/internal/script"
	"github.com/vovakirdan/tui-novel/internal/story"
)

const cafe = `# title: Night Cafe
-> door

=== door ===
The bell rings as you step in.
Aru: Welcome! # wave
* [Order tea] "Tea, please."
  Aru: Coming right up.
  -> END
* [Leave] -> END
`

type fakeAnimator struct {
	clip  string
	clock float64
}

func (f *fakeAnimator) Update(dt float64) { f.clock += dt }

func (f *fakeAnimator) Meshes() []rig.Mesh {
	return []rig.Mesh{{Slot: f.clip, Vertices: []core.Vec2{core.V(f.clock, 0)}}}
}

func (f *fakeAnimator) SetAnimation(track int, name string, loop bool) error {
	if name == "missing" {
		return rig.ErrUnknownAnimation
	}
	f.clip = name
	return nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "cafe.ink", cafe)

	cfg := config.DefaultConfig()
	cfg.Assets.Root = dir
	cfg.Assets.Background = "missing.png"
	cfg.Story.Path = "cafe.ink"
	cfg.Characters = map[string]config.CharacterConfig{
		"aru": {Rig: "aru.yaml", Animation: "idle"},
	}
	cfg.Speakers = map[string]config.SpeakerConfig{
		"Aru": {Character: "aru", Position: "left", Color: "#fab4c8"},
	}
	return cfg
}

func loadGame(t *testing.T, cfg config.Config, animators map[string]*fakeAnimator, opts ...Option) *Game {
	t.Helper()
	loader := character.LoaderFunc(func(d character.Descriptor) (character.Animator, error) {
		a := &fakeAnimator{clip: d.Animation}
		animators[filepath.Base(d.Rig)] = a
		return a, nil
	})
	opts = append(opts, WithLoader(loader))
	g, err := Load(cfg, logging.Discard(), opts...)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return g
}

func TestLoadInitialAdvance(t *testing.T) {
	g := loadGame(t, testConfig(t), map[string]*fakeAnimator{})

	if g.Title() != "Night Cafe" {
		t.Errorf("Title() = %q", g.Title())
	}
	if got := g.Speaker().Content; got != "The bell rings as you step in." {
		t.Errorf("first line = %q", got)
	}
	if g.State() != story.Continuing {
		t.Errorf("State() = %v", g.State())
	}
	if g.Background() != nil {
		t.Error("missing background should fall back to the solid color")
	}
	if g.FallbackColor() != core.RGB(0x1a, 0x1a, 0x33) {
		t.Errorf("FallbackColor() = %v", g.FallbackColor())
	}
	if g.LinesShown() != 1 {
		t.Errorf("LinesShown() = %d, expected 1", g.LinesShown())
	}
	if g.Backlog().Len() != 1 {
		t.Errorf("backlog should hold the first line, has %d", g.Backlog().Len())
	}
}

func TestTickAppliesAnimation(t *testing.T) {
	animators := map[string]*fakeAnimator{}
	g := loadGame(t, testConfig(t), animators)

	// Narration has no character.
	g.Tick(0.1)
	if _, ok := g.Drawable(); ok {
		t.Error("narration should not draw a character")
	}

	if err := g.Advance(); err != nil {
		t.Fatal(err)
	}
	g.Tick(0.5)

	aru := animators["aru.yaml"]
	if aru.clip != "wave" {
		t.Errorf("clip = %q, expected wave", aru.clip)
	}
	if aru.clock != 0.5 {
		t.Errorf("clock = %v, expected 0.5", aru.clock)
	}

	fig, ok := g.Drawable()
	if !ok {
		t.Fatal("Aru should be drawable")
	}
	if fig.ID != "aru" || fig.Position != story.PositionLeft || len(fig.Meshes) != 1 {
		t.Errorf("figure = %+v", fig)
	}

	// The clip is applied once per line, not every tick.
	aru.clip = "idle"
	g.Tick(0.5)
	if aru.clip != "idle" {
		t.Errorf("clip re-applied on a later tick: %q", aru.clip)
	}
}

func TestChooseToEnd(t *testing.T) {
	g := loadGame(t, testConfig(t), map[string]*fakeAnimator{})

	if err := g.Advance(); err != nil {
		t.Fatal(err)
	}
	if err := g.Advance(); err != nil {
		t.Fatal(err)
	}
	if g.State() != story.AwaitingChoice {
		t.Fatalf("State() = %v, expected AwaitingChoice", g.State())
	}
	if len(g.Choices()) != 2 {
		t.Fatalf("Choices() = %v", g.Choices())
	}

	if err := g.Choose(0); err != nil {
		t.Fatal(err)
	}
	if got := g.Speaker().Content; got != `"Tea, please."` {
		t.Errorf("echo line = %q", got)
	}
	if err := g.Advance(); err != nil {
		t.Fatal(err)
	}
	if err := g.Advance(); err != nil {
		t.Fatal(err)
	}
	if g.State() != story.Ended {
		t.Errorf("State() = %v, expected Ended", g.State())
	}
	if !g.Backlog().Ended() {
		t.Error("backlog should see the end")
	}
}

func TestTickUnknownCharacter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Speakers["Aru"] = config.SpeakerConfig{Character: "ghost", Color: "#ffffff"}
	g := loadGame(t, cfg, map[string]*fakeAnimator{})

	if err := g.Advance(); err != nil {
		t.Fatal(err)
	}
	g.Tick(0.1)
	g.Tick(0.1)
	if _, ok := g.Drawable(); ok {
		t.Error("unregistered character should not be drawable")
	}
	if !g.lookupFails["ghost"] {
		t.Error("lookup failure should be remembered")
	}
}

func TestLoadRegistrationFailure(t *testing.T) {
	cfg := testConfig(t)
	errBroken := errors.New("broken rig")
	loader := character.LoaderFunc(func(d character.Descriptor) (character.Animator, error) {
		return nil, errBroken
	})

	_, err := Load(cfg, logging.Discard(), WithLoader(loader))
	var regErr *character.RegistrationError
	if !errors.As(err, &regErr) || !errors.Is(err, errBroken) {
		t.Errorf("expected a registration error, got %v", err)
	}
}

func TestLoadMissingStory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Story.Path = "nowhere.ink"
	if _, err := Load(cfg, logging.Discard()); err == nil {
		t.Error("expected an error for a missing story")
	}
}

type countingObserver struct{ lines, choices, ends int }

func (c *countingObserver) LineShown(story.SpeakerState) { c.lines++ }

func (c *countingObserver) ChoiceMade(script.Choice) { c.choices++ }

func (c *countingObserver) StoryEnded() { c.ends++ }

func TestLoadWithObserver(t *testing.T) {
	obs := &countingObserver{}
	g := loadGame(t, testConfig(t), map[string]*fakeAnimator{}, WithObserver(obs))

	if obs.lines != 1 {
		t.Errorf("initial advance should notify the observer, lines = %d", obs.lines)
	}
	_ = g.Advance()
	_ = g.Advance()
	_ = g.Choose(1)
	if obs.choices != 1 || obs.ends != 1 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cafe.ink", cafe)
	writeFile(t, dir, "broken.ink", "-> nowhere\n")
	writeFile(t, dir, "notes.txt", "not a story")
	writeFile(t, dir, "characters/aru.yaml", "name: aru\n")

	infos, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 stories, got %+v", infos)
	}
	if infos[0].ID != "broken" || infos[0].Valid() {
		t.Errorf("broken story = %+v", infos[0])
	}
	if infos[1].ID != "cafe" || infos[1].Title != "Night Cafe" || !infos[1].Valid() {
		t.Errorf("cafe story = %+v", infos[1])
	}

	if _, err := Discover(filepath.Join(dir, "absent")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
