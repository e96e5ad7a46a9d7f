package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-novel/internal/engine"
	"github.com/vovakirdan/tui-novel/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stories and supported formats",
	Long:  `Display the stories found under the asset root and the script formats that can be read.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stories, err := engine.Discover(cfg.Assets.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stories in %s:\n", cfg.Assets.Root)
	fmt.Println()
	if len(stories) == 0 {
		fmt.Println("  (none)")
	}
	for _, s := range stories {
		if s.Valid() {
			fmt.Printf("  %-16s %s\n", s.ID, s.Title)
		} else {
			fmt.Printf("  %-16s (invalid: %v)\n", s.ID, s.Err)
		}
	}

	fmt.Println()
	fmt.Println("Formats:")
	for _, f := range registry.List() {
		fmt.Printf("  %-16s %s\n", f.Name, strings.Join(f.Extensions, ", "))
	}
	fmt.Println()
	fmt.Println("Use 'novel play <story>' to start reading.")
}
