package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-novel/internal/core"
)

// EnvPrefix prefixes every environment override (NOVEL_STORY, NOVEL_FPS, ...).
const EnvPrefix = "NOVEL_"

// SourceEmbedded is the Source of a configuration built from the embedded
// defaults.
const SourceEmbedded = "embedded"

// Load loads the player configuration.
// Search order: customPath -> ~/.novel/config.yaml -> ./configs/novel.yaml -> embedded default.
// Values from the file are layered over DefaultConfig, then NOVEL_*
// environment variables are applied and the result is validated.
func Load(customPath string) (Config, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", cfg.Source, err)
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, error) {
	cfg := DefaultConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		cfg.Source = customPath
		return cfg, nil
	}

	// Try user config directory, then the local configs directory
	for _, path := range []string{userConfigPath("config.yaml"), filepath.Join("configs", "novel.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := DefaultConfig()
		if err := yaml.Unmarshal(data, &candidate); err == nil {
			candidate.Source = path
			return candidate, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultNovelYAML, &cfg); err != nil {
		cfg = DefaultConfig() // Fallback to hardcoded if embed fails
	}
	cfg.Source = SourceEmbedded
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := UserDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, filename)
}

// UserDir returns ~/.novel, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".novel")
}

// Resolve makes a relative asset path absolute against Assets.Root.
func (c Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Assets.Root, path)
}

// StoryPath returns the resolved story script path.
func (c Config) StoryPath() string { return c.Resolve(c.Story.Path) }

// BackgroundPath returns the resolved background image path, or "".
func (c Config) BackgroundPath() string { return c.Resolve(c.Assets.Background) }

var positions = map[string]bool{"": true, "left": true, "center": true, "centre": true, "right": true}

// Validate checks ranges and cross references.
func (c Config) Validate() error {
	var errs []error

	if c.Story.Path == "" {
		errs = append(errs, errors.New("story.path is required"))
	}
	if c.UI.FPS < 1 || c.UI.FPS > 120 {
		errs = append(errs, fmt.Errorf("ui.fps must be between 1 and 120, got %d", c.UI.FPS))
	}
	if !c.UI.TextSpeed.Valid() {
		errs = append(errs, fmt.Errorf("ui.text_speed %q is not a preset", c.UI.TextSpeed))
	}
	if c.UI.BoxHeight < 3 {
		errs = append(errs, fmt.Errorf("ui.box_height must be at least 3, got %d", c.UI.BoxHeight))
	}
	if c.Input.ClickDebounce < 0 {
		errs = append(errs, errors.New("input.click_debounce must not be negative"))
	}
	if _, err := core.ParseColor(c.Assets.FallbackColor); err != nil {
		errs = append(errs, fmt.Errorf("assets.fallback_color: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	for id, ch := range c.Characters {
		if ch.Rig == "" {
			errs = append(errs, fmt.Errorf("characters.%s.rig is required", id))
		}
	}
	for name, sp := range c.Speakers {
		if sp.Character != "" {
			if _, ok := c.Characters[sp.Character]; !ok {
				errs = append(errs, fmt.Errorf("speakers.%s: unknown character %q", name, sp.Character))
			}
		}
		if !positions[strings.ToLower(sp.Position)] {
			errs = append(errs, fmt.Errorf("speakers.%s: unknown position %q", name, sp.Position))
		}
		if _, err := core.ParseColor(sp.Color); err != nil {
			errs = append(errs, fmt.Errorf("speakers.%s.color: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
