package render

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gaurav-prasanna/shelfpipe/core/output"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// CSVSummary writes the batch summary as CSV, truncating any existing file.
type CSVSummary struct {
	Path string
}

// WriteSummary writes the header row followed by every row.
func (s *CSVSummary) WriteSummary(_ context.Context, rows []schema.Row) error {
	if err := output.EnsureParentDir(s.Path); err != nil {
		return err
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", s.Path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(schema.SummaryColumns); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Values()); err != nil {
			_ = f.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return f.Close()
}
