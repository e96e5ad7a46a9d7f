package main

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-novel/internal/config"
	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/registry"
	"github.com/vovakirdan/tui-novel/internal/rig"
)

var validateCmd = &cobra.Command{
	Use:   "validate [story...]",
	Short: "Check stories, rigs and configuration",
	Long: `Parse story scripts and every configured character rig, reporting
problems without opening the player. Without arguments the configured story
is checked.

Examples:
  novel validate
  novel validate cafe ./drafts/intro.ink`,
	Run: runValidate,
}

func runValidate(_ *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Config: %s\n", cfg.Source)

	if len(args) == 0 {
		args = []string{""}
	}

	failed := 0
	for _, arg := range args {
		storyCfg, _, err := selectStory(cfg, arg)
		if err != nil {
			fmt.Printf("  FAIL  %s: %v\n", arg, err)
			failed++
			continue
		}
		path := storyCfg.StoryPath()
		s, err := registry.ParseFile(path)
		if err != nil {
			fmt.Printf("  FAIL  %s: %v\n", path, err)
			failed++
			continue
		}
		st := s.Stats()
		fmt.Printf("  ok    %s: %d knots, %d lines, %d choices\n", path, st.Knots, st.Lines, st.Choices)
	}

	failed += validateCharacters(cfg)
	failed += validateSpeakers(cfg)

	if failed > 0 {
		fmt.Printf("\n%d problem(s) found\n", failed)
		os.Exit(1)
	}
	fmt.Println("\nAll checks passed")
}

func validateCharacters(cfg config.Config) int {
	ids := make([]string, 0, len(cfg.Characters))
	for id := range cfg.Characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	failed := 0
	for _, id := range ids {
		ch := cfg.Characters[id]
		data, err := rig.Load(cfg.Resolve(ch.Rig))
		if err != nil {
			fmt.Printf("  FAIL  character %s: %v\n", id, err)
			failed++
			continue
		}
		names := data.AnimationNames()
		for _, clip := range []string{ch.Animation, ch.Idle} {
			if clip != "" && !slices.Contains(names, clip) {
				fmt.Printf("  FAIL  character %s: unknown animation %q\n", id, clip)
				failed++
			}
		}
		fmt.Printf("  ok    character %s: %d bones, animations %s\n", id, len(data.Bones), strings.Join(names, ", "))
	}
	return failed
}

func validateSpeakers(cfg config.Config) int {
	failed := 0
	for name, sp := range cfg.Speakers {
		if sp.Character != "" {
			if _, ok := cfg.Characters[sp.Character]; !ok {
				fmt.Printf("  FAIL  speaker %s: unknown character %q\n", name, sp.Character)
				failed++
			}
		}
		if sp.Color != "" {
			if _, err := core.ParseColor(sp.Color); err != nil {
				fmt.Printf("  FAIL  speaker %s: %v\n", name, err)
				failed++
			}
		}
	}
	return failed
}
