package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/novel.yaml
var defaultNovelYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Story: StoryConfig{
			Path: "story.ink",
		},
		Assets: AssetsConfig{
			Root:          "assets",
			FallbackColor: "#1a1a33",
		},
		Characters: map[string]CharacterConfig{},
		Speakers:   map[string]SpeakerConfig{},
		UI: UIConfig{
			FPS:         30,
			TextSpeed:   SpeedNormal,
			BoxHeight:   7,
			BacklogSize: 200,
		},
		Input: InputConfig{
			ClickDebounce: 300 * time.Millisecond,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			File:       "novel.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultNovelYAML
}
