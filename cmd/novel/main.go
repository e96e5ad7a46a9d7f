// novel is a terminal visual novel player.
//
// Usage:
//
//	novel list                 - List stories and supported formats
//	novel play [story]         - Read a story
//	novel menu                 - Pick stories interactively
//	novel serve                - Start SSH server for remote reading
//	novel history [story]      - Show recorded playthroughs
//	novel export <id> -o file  - Export a playthrough transcript to PDF
//	novel validate [story...]  - Check stories, rigs and configuration
//
// Global flags:
//
//	--config <path>     - Configuration file (default: search path)
//	--db <path>         - Playthrough database (default: ~/.novel/novel.db)
//	--fps <rate>        - Frame rate
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import formats to register them
	_ "github.com/vovakirdan/tui-novel/internal/formats/ink"
	_ "github.com/vovakirdan/tui-novel/internal/formats/yamlstory"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagFPS      int
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "novel",
	Short: "Novel - read branching visual novels in your terminal",
	Long: `Novel plays branching story scripts in the terminal: narration and
dialogue over a background image, animated characters and choice menus.

Available commands:
  list      - Show stories and supported script formats
  play      - Read a story directly
  menu      - Interactive story picker
  serve     - Start SSH server for remote reading
  history   - View recorded playthroughs
  export    - Export a playthrough transcript to PDF
  validate  - Check stories, rigs and configuration

Examples:
  novel list
  novel play
  novel play cafe
  novel menu --fps 60
  novel serve --ssh :2222
  novel export 3 -o cafe.pdf`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to playthrough database (default ~/.novel/novel.db)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (0 = from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
}
