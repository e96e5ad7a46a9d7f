// Package export renders recorded playthroughs to documents.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/vovakirdan/tui-novel/internal/core"
	"github.com/vovakirdan/tui-novel/internal/storage"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("export: transcript is empty")

// PDFOptions controls transcript layout. Units are points.
type PDFOptions struct {
	PageSize   string  // gofpdf size name, "A4" when empty
	FontSize   float64 // Body size, 11 when zero
	Margin     float64 // Page margin, 56 when zero
	Speakers   map[string]core.Color
	ChoiceMark string // Prefix for picked choices, "> " when empty
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.PageSize == "" {
		o.PageSize = "A4"
	}
	if o.FontSize <= 0 {
		o.FontSize = 11
	}
	if o.Margin <= 0 {
		o.Margin = 56
	}
	if o.ChoiceMark == "" {
		o.ChoiceMark = "> "
	}
	return o
}

// TranscriptPDF writes entries as a single PDF document at outPath.
// Speaker names are set in bold, picked choices are prefixed with the choice mark.
func TranscriptPDF(outPath, title string, entries []storage.TranscriptEntry, opt PDFOptions) error {
	if len(entries) == 0 {
		return ErrEmptyTranscript
	}
	opt = opt.withDefaults()

	pdf := gofpdf.New("P", "pt", opt.PageSize, "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("tui-novel", false)
	pdf.SetMargins(opt.Margin, opt.Margin, opt.Margin)
	pdf.SetAutoPageBreak(true, opt.Margin)
	pdf.AddPage()

	// Built-in fonts only cover cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lineH := opt.FontSize * 1.4

	pdf.SetFont("Helvetica", "B", opt.FontSize*1.6)
	pdf.MultiCell(0, opt.FontSize*2, tr(title), "", "L", false)
	pdf.Ln(lineH)

	for _, e := range entries {
		switch {
		case e.Choice:
			pdf.SetTextColor(110, 110, 110)
			pdf.SetFont("Helvetica", "I", opt.FontSize)
			pdf.MultiCell(0, lineH, tr(opt.ChoiceMark+e.Content), "", "L", false)
		case e.Speaker != "":
			setTextColor(pdf, opt.Speakers[e.Speaker])
			pdf.SetFont("Helvetica", "B", opt.FontSize)
			pdf.Write(lineH, tr(e.Speaker+": "))
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "", opt.FontSize)
			pdf.Write(lineH, tr(e.Content))
			pdf.Ln(lineH)
		default:
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "", opt.FontSize)
			pdf.MultiCell(0, lineH, tr(e.Content), "", "L", false)
		}
		pdf.Ln(lineH * 0.4)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("export: cannot create output directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("export: cannot write pdf: %w", err)
	}
	return nil
}

func setTextColor(pdf *gofpdf.Fpdf, c core.Color) {
	if c.IsDefault() {
		pdf.SetTextColor(0, 0, 0)
		return
	}
	r, g, b := c.Components()
	pdf.SetTextColor(int(r), int(g), int(b))
}
