package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/export"
	"github.com/vovakirdan/tui-novel/internal/storage"
)

var (
	flagExportOut  string
	flagExportPage string
)

var exportCmd = &cobra.Command{
	Use:   "export <playthrough-id>",
	Short: "Export a playthrough transcript to PDF",
	Long: `Write the transcript of a recorded playthrough to a PDF file. Speaker
names use the colors from the speakers section of the configuration.

Examples:
  novel export 3
  novel export 3 -o cafe.pdf --page letter`,
	Args: cobra.ExactArgs(1),
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Output file (default transcript-<id>.pdf)")
	exportCmd.Flags().StringVar(&flagExportPage, "page", "A4", "Page size (A4, A5, Letter, Legal)")
}

func runExport(_ *cobra.Command, args []string) {
	exitOnError(exportTranscript(args[0]))
}

func exportTranscript(arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid playthrough ID %q", arg)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		return fmt.Errorf("opening playthrough database: %w", err)
	}
	defer store.Close()

	run, err := store.Playthrough(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no playthrough with ID %d (run 'novel history <story>' to list them)", id)
	}

	entries, err := store.Transcript(id)
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	speakers := make(map[string]core.Color, len(cfg.Speakers))
	for name, sp := range cfg.Speakers {
		if sp.Color == "" {
			continue
		}
		c, err := core.ParseColor(sp.Color)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: speaker %s: %v\n", name, err)
			continue
		}
		speakers[name] = c
	}

	out := flagExportOut
	if out == "" {
		out = fmt.Sprintf("transcript-%d.pdf", id)
	}

	title := fmt.Sprintf("%s - %s, %s", run.StoryID, run.Player, run.StartedAt.Format("2006-01-02 15:04"))
	opts := export.PDFOptions{
		PageSize: flagExportPage,
		Speakers: speakers,
	}
	if err := export.TranscriptPDF(out, title, entries, opts); err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	fmt.Printf("Wrote %d entries to %s\n", len(entries), out)
	return nil
}
