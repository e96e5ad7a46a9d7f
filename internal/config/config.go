// Package config provides YAML-based configuration loading for the novel
// player: story and asset locations, characters, speaker styles, UI and
// logging settings.
package config

import "time"

// Config is the full player configuration.
type Config struct {
	Story      StoryConfig                `yaml:"story"`
	Assets     AssetsConfig               `yaml:"assets"`
	Characters map[string]CharacterConfig `yaml:"characters"`
	Speakers   map[string]SpeakerConfig   `yaml:"speakers"`
	UI         UIConfig                   `yaml:"ui"`
	Input      InputConfig                `yaml:"input"`
	Log        LogConfig                  `yaml:"log"`
	Storage    StorageConfig              `yaml:"storage"`

	// Source is the file the configuration was read from, or "embedded".
	Source string `yaml:"-"`
}

// StoryConfig names the script to play.
type StoryConfig struct {
	Path string `yaml:"path" env:"STORY"` // Relative paths resolve against Assets.Root
}

// AssetsConfig locates on-disk resources.
type AssetsConfig struct {
	Root          string `yaml:"root" env:"ASSETS"`
	Background    string `yaml:"background" env:"BACKGROUND"`
	FallbackColor string `yaml:"fallback_color"` // Used when no background image is set
}

// CharacterConfig describes one animated character.
type CharacterConfig struct {
	Rig       string `yaml:"rig"`
	Animation string `yaml:"animation"` // Main clip at start
	Idle      string `yaml:"idle"`      // Looping overlay clip
}

// SpeakerConfig ties a speaker name, as written in the script, to a
// character and its presentation.
type SpeakerConfig struct {
	Character string `yaml:"character"`
	Position  string `yaml:"position"` // left, center or right
	Color     string `yaml:"color"`
}

// UIConfig controls presentation.
type UIConfig struct {
	FPS         int       `yaml:"fps" env:"FPS"`
	TextSpeed   TextSpeed `yaml:"text_speed" env:"TEXT_SPEED"`
	BoxHeight   int       `yaml:"box_height"`   // Dialogue box rows including border
	BacklogSize int       `yaml:"backlog_size"` // Entries kept for review
}

// InputConfig controls input handling.
type InputConfig struct {
	ClickDebounce time.Duration `yaml:"click_debounce" env:"CLICK_DEBOUNCE"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"` // text or json
	File       string `yaml:"file" env:"LOG_FILE"`     // Used while the TUI owns the terminal
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// StorageConfig controls playthrough recording.
type StorageConfig struct {
	Path     string `yaml:"path" env:"DB"` // Empty uses ~/.novel/novel.db
	Disabled bool   `yaml:"disabled" env:"NO_RECORD"`
}
