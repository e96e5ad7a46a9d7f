package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-novel/internal/config"
	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/engine"
	"github.com/vovakirdan/tui-novel/internal/logging"
	"github.com/vovakirdan/tui-novel/internal/platform/tui"
	"github.com/vovakirdan/tui-novel/internal/storage"
)

var flagPlayer string

var playCmd = &cobra.Command{
	Use:   "play [story]",
	Short: "Read a story",
	Long: `Read a story in the terminal.

The story argument is either a script file or the ID of a story under the
asset root. Without an argument the configured story is played.

Controls:
  Space        - Advance (completes the current line first)
  1-9 / Enter  - Pick a choice
  Up/Down      - Move the choice cursor
  Mouse click  - Advance or pick a choice
  Tab          - Toggle the backlog
  Esc          - Leave once the story has ended
  Q / Ctrl+C   - Quit

Examples:
  novel play
  novel play cafe
  novel play ./stories/demo.ink`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Reader name stored with the playthrough (default $USER)")
}

func runPlay(_ *cobra.Command, args []string) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	exitOnError(play(arg))
}

func play(arg string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, storyID, err := selectStory(cfg, arg)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Close()

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	_, err = playStory(cfg, storyID, store, runtimeConfig(cfg), logger)
	return err
}

// playStory loads the story cfg points at, records it when a store is
// available and runs it until the reader quits or leaves the end screen.
func playStory(cfg config.Config, storyID string, store *storage.Store, rc core.RuntimeConfig, logger *logging.Logger) (backToMenu bool, err error) {
	var opts []engine.Option
	if store != nil {
		rec, err := storage.NewRecorder(store, storyID, playerName(), logger.Logger)
		if err != nil {
			logger.Warn("recording disabled", "err", err)
		} else {
			defer rec.Close()
			opts = append(opts, engine.WithObserver(rec))
		}
	}

	game, err := engine.Load(cfg, logger.Logger, opts...)
	if err != nil {
		return false, err
	}
	logger.Info("story loaded", "story", storyID, "title", game.Title())

	return tui.Run(game, cfg, rc, logger.Logger)
}

func playerName() string {
	if flagPlayer != "" {
		return flagPlayer
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "reader"
}
