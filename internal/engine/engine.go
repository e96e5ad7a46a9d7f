// Package engine loads a story with its characters and background and
// glues the sequencer to the per-frame character animation.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-novel/internal/assets"
	"github.com/vovakirdan/tui-novel/internal/character"
	"github.com/vovakirdan/tui-novel/internal/config"
	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/registry"
	"github.com/vovakirdan/tui-novel/internal/rig"
	"github.com/vovakirdan/tui-novel/internal/script"
	"github.com/vovakirdan/tui-novel/internal/story"
)

// Option configures Load.
type Option func(*options)

type options struct {
	observers []story.Observer
	loader    character.Loader
}

// WithObserver adds an observer of story progress, e.g. a recorder.
func WithObserver(o story.Observer) Option {
	return func(opts *options) { opts.observers = append(opts.observers, o) }
}

// WithLoader replaces the rig loader used to register characters.
func WithLoader(l character.Loader) Option {
	return func(opts *options) { opts.loader = l }
}

// Figure is the drawable state of the speaking character.
type Figure struct {
	ID       string
	Position core.Vec2 // Normalized screen anchor of the rig origin
	Meshes   []rig.Mesh
}

// Game is one running story. It is not safe for concurrent use.
type Game struct {
	logger *log.Logger

	story      *script.Story
	runner     *script.Runner
	seq        *story.Sequencer
	chars      *character.Registry
	backlog    *story.Backlog
	textures   *assets.Manager
	background *assets.Texture
	fallback   core.Color

	cast        map[string]string // speaker name -> character id
	cue         *cue
	active      string
	lookupFails map[string]bool
}

// cue flags lines whose animation has not been applied yet.
type cue struct {
	pending bool
	shown   int
}

func (c *cue) LineShown(story.SpeakerState) {
	c.pending = true
	c.shown++
}

func (c *cue) ChoiceMade(script.Choice) {}
func (c *cue) StoryEnded() {}

// Load parses the configured story, registers every character and
// performs the initial advance. A character that fails to register is
// fatal; a missing background falls back to the solid color.
func Load(cfg config.Config, logger *log.Logger, opts ...Option) (*Game, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := registry.ParseFile(cfg.StoryPath())
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	runner := script.NewRunner(s)
	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("engine: cannot start story %q: %w", s.ID, err)
	}

	chars := character.NewRegistry(o.loader)
	for _, id := range sortedKeys(cfg.Characters) {
		ch := cfg.Characters[id]
		d := character.Descriptor{Rig: cfg.Resolve(ch.Rig), Animation: ch.Animation, Idle: ch.Idle}
		if err := chars.Register(id, d); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		logger.Debug("character registered", "id", id, "rig", d.Rig)
	}

	styles, cast, err := buildStyles(cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	fallback, err := core.ParseColor(cfg.Assets.FallbackColor)
	if err != nil {
		return nil, fmt.Errorf("engine: fallback color: %w", err)
	}

	g := &Game{
		logger:      logger,
		story:       s,
		runner:      runner,
		chars:       chars,
		backlog:     story.NewBacklog(cfg.UI.BacklogSize),
		textures:    assets.NewManager(),
		fallback:    fallback,
		cast:        cast,
		cue:         &cue{},
		lookupFails: make(map[string]bool),
	}

	if path := cfg.BackgroundPath(); path != "" {
		tex, err := g.textures.Load(path, "background")
		if err != nil {
			logger.Warn("background unavailable, using fallback color", "path", path, "err", err)
		} else {
			g.background = tex
		}
	}

	seqOpts := []story.Option{
		story.WithStyles(styles),
		story.WithObserver(g.backlog),
		story.WithObserver(g.cue),
	}
	for _, obs := range o.observers {
		seqOpts = append(seqOpts, story.WithObserver(obs))
	}
	g.seq = story.NewSequencer(runner, seqOpts...)
	if err := g.seq.Start(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	logger.Info("story loaded", "id", s.ID, "title", g.Title(), "characters", chars.Len())
	return g, nil
}

func buildStyles(cfg config.Config) (story.Styles, map[string]string, error) {
	styles := make(story.Styles, len(cfg.Speakers))
	cast := make(map[string]string, len(cfg.Speakers))
	for name, sp := range cfg.Speakers {
		pos := story.PositionCenter
		if sp.Position != "" {
			p, err := story.ParsePosition(sp.Position)
			if err != nil {
				return nil, nil, fmt.Errorf("speaker %q: %w", name, err)
			}
			pos = p
		}
		col, err := core.ParseColor(sp.Color)
		if err != nil {
			return nil, nil, fmt.Errorf("speaker %q: %w", name, err)
		}
		styles[name] = story.Directive{Position: pos, Color: col}
		if sp.Character != "" {
			cast[name] = sp.Character
		}
	}
	return styles, cast, nil
}

// Advance shows the next line, if the story is continuing.
func (g *Game) Advance() error { return g.seq.Advance() }

// Choose resolves the pending choice set with the given index.
func (g *Game) Choose(index int) error { return g.seq.Choose(index) }

// Tick advances the speaking character's animation by dt seconds. The
// animation named by a new line is applied first. Unknown characters are
// logged once and skipped.
func (g *Game) Tick(dt float64) {
	sp := g.seq.Speaker()
	id := g.characterFor(sp.Name)
	g.active = id

	if g.cue.pending {
		g.cue.pending = false
		if id != "" && sp.Animation != "" {
			if err := g.chars.SetAnimation(id, sp.Animation); err != nil {
				g.logFailure(id, err)
			}
		}
	}
	if id == "" {
		return
	}
	if err := g.chars.Update(id, dt); err != nil {
		g.logFailure(id, err)
	}
}

func (g *Game) logFailure(id string, err error) {
	var lookup *character.LookupError
	if errors.As(err, &lookup) {
		if g.lookupFails[id] {
			return
		}
		g.lookupFails[id] = true
		g.logger.Warn("speaker has no registered character", "id", id)
		return
	}
	g.logger.Warn("cannot apply animation", "id", id, "err", err)
}

// characterFor maps a speaker name to a character id: the configured
// cast first, then a registered character with the lowercased name.
func (g *Game) characterFor(name string) string {
	if name == "" {
		return ""
	}
	if id, ok := g.cast[name]; ok {
		return id
	}
	if id := strings.ToLower(name); g.chars.Has(id) {
		return id
	}
	return ""
}

// Drawable returns the speaking character's geometry from the last Tick.
func (g *Game) Drawable() (Figure, bool) {
	if g.active == "" {
		return Figure{}, false
	}
	meshes := g.chars.Drawable(g.active)
	if len(meshes) == 0 {
		return Figure{}, false
	}
	pos := story.PositionCenter
	if p := g.seq.Speaker().Position; p != nil {
		pos = *p
	}
	return Figure{ID: g.active, Position: pos, Meshes: meshes}, true
}

// LinesShown counts the lines shown so far. It changes whenever a new line
// replaces the speaker state, even one with identical text.
func (g *Game) LinesShown() int { return g.cue.shown }

// Speaker returns the current speaker state.
func (g *Game) Speaker() story.SpeakerState { return g.seq.Speaker() }

// State returns the sequencer state.
func (g *Game) State() story.State { return g.seq.State() }

// Choices returns the pending choices.
func (g *Game) Choices() []script.Choice { return g.seq.Choices() }

// Background returns the background texture, or nil when the fallback
// color should be used.
func (g *Game) Background() *assets.Texture { return g.background }

// FallbackColor is painted when there is no background texture.
func (g *Game) FallbackColor() core.Color { return g.fallback }

// Backlog returns the lines and choices seen so far.
func (g *Game) Backlog() *story.Backlog { return g.backlog }

// Story returns the compiled script.
func (g *Game) Story() *script.Story { return g.story }

// Var reads a story variable.
func (g *Game) Var(name string) any { return g.runner.Var(name) }

// Title returns the story title, or its ID when untitled.
func (g *Game) Title() string {
	if g.story.Title != "" {
		return g.story.Title
	}
	return g.story.ID
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
