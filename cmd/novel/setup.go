package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/vovakirdan/tui-novel/internal/config"
	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/engine"
	"github.com/vovakirdan/tui-novel/internal/logging"
	"github.com/vovakirdan/tui-novel/internal/registry"
	"github.com/vovakirdan/tui-novel/internal/storage"
)

// exitOnError reports err and exits with status 1. Commands return their
// errors to it so deferred cleanup runs first.
func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagFPS > 0 {
		cfg.UI.FPS = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// newLogger creates the command logger. Interactive commands log to the
// rotating file so the TUI keeps the terminal.
func newLogger(cfg config.Config, interactive bool) (*logging.Logger, error) {
	return logging.New(cfg.Log, interactive, config.UserDir(), "novel")
}

// dbPath returns the configured database path or the default one.
func dbPath(cfg config.Config) string {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	return filepath.Join("~", ".novel", "novel.db")
}

// openStore opens the playthrough database, or returns nil with a warning
// when recording is disabled or the database is unavailable.
func openStore(cfg config.Config) *storage.Store {
	if cfg.Storage.Disabled {
		return nil
	}
	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open playthrough database: %v\n", err)
		// Continue without storage - reading still works
		return nil
	}
	return store
}

// runtimeConfig sizes the frame loop to the current terminal.
func runtimeConfig(cfg config.Config) core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.TickRate = cfg.UI.FPS
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}
	return rc
}

// selectStory points cfg at the story named by arg: a script file path or
// the ID of a story under the asset root. An empty arg keeps the
// configured story.
func selectStory(cfg config.Config, arg string) (config.Config, string, error) {
	if arg == "" {
		return cfg, registry.StoryID(cfg.StoryPath()), nil
	}
	if registry.Supported(arg) {
		if _, err := os.Stat(arg); err == nil {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return cfg, "", err
			}
			cfg.Story.Path = abs
			return cfg, registry.StoryID(abs), nil
		}
	}

	stories, err := engine.Discover(cfg.Assets.Root)
	if err != nil {
		return cfg, "", err
	}
	for _, s := range stories {
		if s.ID == arg {
			cfg.Story.Path = s.Path
			return cfg, s.ID, nil
		}
	}
	return cfg, "", fmt.Errorf("unknown story %q (run 'novel list' to see available stories)", arg)
}
