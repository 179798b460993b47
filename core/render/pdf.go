package render

import (
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/shelfpipe/core/output"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// PDFSummary renders the batch summary as a printable report.
// Rows are grouped by source URL; error rows are printed in red.
type PDFSummary struct {
	Path  string
	Title string
}

// WriteSummary renders rows and saves the PDF, replacing any existing file.
func (s *PDFSummary) WriteSummary(_ context.Context, rows []schema.Row) error {
	if err := output.EnsureParentDir(s.Path); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := s.Title
	if title == "" {
		title = "Product summary"
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, fmt.Sprintf("Generated %s, %d rows", time.Now().UTC().Format(time.RFC3339), len(rows)), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	lastURL := ""
	for _, r := range rows {
		if r.URL != lastURL {
			renderSource(pdf, tr(r.URL))
			lastURL = r.URL
		}

		if r.IsError() {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(180, 0, 0)
			pdf.MultiCell(0, 5, tr("ERROR: "+r.ProductLink), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
			continue
		}

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr("• "+r.ProductDescription), "", "L", false)
		pdf.SetFont("Courier", "", 8)
		pdf.SetTextColor(60, 60, 160)
		pdf.MultiCell(0, 4, tr("  "+r.ProductLink), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	if err := pdf.OutputFileAndClose(s.Path); err != nil {
		return fmt.Errorf("writing PDF %s: %w", s.Path, err)
	}
	return nil
}

// renderSource starts a new section for one source page.
func renderSource(pdf *gofpdf.Fpdf, url string) {
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, 6, url, "", "L", false)
	pdf.Ln(1)
}
