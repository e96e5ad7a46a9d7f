package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-novel/internal/engine"
	"github.com/vovakirdan/tui-novel/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick stories interactively",
	Long: `Launch an interactive menu listing every story under the asset root.

Use arrow keys or j/k to navigate, Enter to read, Tab for the playthrough
history, Q or Esc to quit. Finishing a story returns to the menu.`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	exitOnError(menu())
}

func menu() error {
	cfg, err := loadConfig()
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

	rc := runtimeConfig(cfg)

	for {
		stories, err := engine.Discover(cfg.Assets.Root)
		if err != nil {
			return err
		}

		result, err := tui.RunMenu(stories, rc)
		if err != nil {
			return fmt.Errorf("running menu: %w", err)
		}
		rc = result.Config

		if result.Quit {
			return nil
		}

		if result.WantsHistory {
			if store == nil {
				continue
			}
			goBack, err := tui.RunHistory(store, rc.ScreenW, rc.ScreenH)
			if err != nil {
				return fmt.Errorf("running history: %w", err)
			}
			if !goBack {
				return nil
			}
			continue
		}

		if result.Story == nil {
			return nil
		}

		storyCfg := cfg
		storyCfg.Story.Path = result.Story.Path
		back, err := playStory(storyCfg, result.Story.ID, store, rc, logger)
		if err != nil {
			return err
		}
		if !back {
			return nil
		}
	}
}
