package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-novel/internal/storage"
)

var (
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [story]",
	Short: "Show recorded playthroughs",
	Long: `Display recorded playthroughs. With a story ID, lists its most recent
playthroughs; without one, summarizes every story that has been read.

Examples:
  novel history
  novel history cafe
  novel history cafe --limit 20
  novel history cafe --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "Number of playthroughs to show")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all playthroughs of the story")
}

func runHistory(_ *cobra.Command, args []string) {
	exitOnError(history(args))
}

func history(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		return fmt.Errorf("opening playthrough database: %w", err)
	}
	defer store.Close()

	if len(args) == 0 {
		if flagHistoryClear {
			return errors.New("--clear needs a story ID")
		}
		return printAllStats(store)
	}

	storyID := args[0]
	if flagHistoryClear {
		if err := store.ClearStory(storyID); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Printf("Cleared history for %s\n", storyID)
		return nil
	}

	runs, err := store.RecentPlaythroughs(storyID, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("retrieving playthroughs: %w", err)
	}

	fmt.Printf("Playthroughs - %s\n", storyID)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No playthroughs recorded yet.")
		fmt.Println()
		fmt.Printf("Run 'novel play %s' to start reading.\n", storyID)
		return nil
	}

	fmt.Printf("  %-5s  %-16s  %-12s  %-6s  %-7s  %s\n", "ID", "Started", "Reader", "Lines", "Choices", "Status")
	fmt.Printf("  %-5s  %-16s  %-12s  %-6s  %-7s  %s\n", "--", "-------", "------", "-----", "-------", "------")
	for _, p := range runs {
		fmt.Printf("  %-5d  %-16s  %-12s  %-6d  %-7d  %s\n",
			p.ID, p.StartedAt.Format("2006-01-02 15:04"), p.Player, p.Lines, p.Choices, status(p))
	}

	if stats, err := store.GetStoryStats(storyID); err == nil {
		fmt.Println()
		fmt.Printf("Completed %d of %d, %.1f choices per playthrough\n",
			stats.Completed, stats.Playthroughs, stats.AvgChoices)
	}
	fmt.Println()
	fmt.Println("Export one with 'novel export <id> -o transcript.pdf'.")
	return nil
}

func printAllStats(store *storage.Store) error {
	all, err := store.GetAllStoryStats()
	if err != nil {
		return fmt.Errorf("retrieving stats: %w", err)
	}

	if len(all) == 0 {
		fmt.Println("No playthroughs recorded yet.")
		return nil
	}

	fmt.Printf("  %-16s  %-6s  %-9s  %s\n", "Story", "Runs", "Completed", "Last read")
	fmt.Printf("  %-16s  %-6s  %-9s  %s\n", "-----", "----", "---------", "---------")
	for _, id := range sortedIDs(all) {
		s := all[id]
		fmt.Printf("  %-16s  %-6d  %-9d  %s\n",
			id, s.Playthroughs, s.Completed, s.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}

func sortedIDs(m map[string]*storage.StoryStats) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func status(p storage.Playthrough) string {
	switch {
	case p.Ended:
		return "finished"
	case p.FinishedAt.IsZero():
		return "reading"
	default:
		return "left"
	}
}
