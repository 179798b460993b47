package render

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/gaurav-prasanna/shelfpipe/core/output"
	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

const (
	sheetName       = "Sheet1"
	truncatedMarker = "…(truncated)"
)

// listingColumns is the header of the per-URL spreadsheet.
var listingColumns = []string{"product_name", "product_link", "brand", "Flavors", "url"}

// XLSXRenderer writes a listing as a one-sheet workbook. It is presentation
// only and never read back.
type XLSXRenderer struct{}

// NewXLSXRenderer creates an XLSXRenderer.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

// Render builds the workbook in memory.
func (r *XLSXRenderer) Render(listing *schema.Listing) ([]byte, error) {
	rows := make([][]string, 0, len(listing.Items))
	for _, item := range listing.Items {
		rows = append(rows, []string{
			item.ProductName,
			item.ProductLink,
			item.Brand,
			strings.Join(item.Flavors, ", "),
			item.URL,
		})
	}

	f, err := newWorkbook(listingColumns, rows)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for spreadsheet output.
func (r *XLSXRenderer) Extension() string {
	return ".xlsx"
}

// XLSXSummary writes the batch summary workbook, replacing any existing file.
type XLSXSummary struct {
	Path string
}

// WriteSummary saves rows under the url/product_description/product_link header.
func (s *XLSXSummary) WriteSummary(_ context.Context, rows []schema.Row) error {
	if err := output.EnsureParentDir(s.Path); err != nil {
		return err
	}

	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Values())
	}

	f, err := newWorkbook(schema.SummaryColumns, values)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", s.Path, err)
	}
	return nil
}

// newWorkbook lays header and rows out on the default sheet.
func newWorkbook(header []string, rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := setRow(f, 1, header); err != nil {
		_ = f.Close()
		return nil, err
	}
	for i, row := range rows {
		if err := setRow(f, i+2, row); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = fitCell(v)
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", rowNum, err)
	}
	return nil
}

// fitCell cuts v to the xlsx cell limit, marking the cut. Long error rows
// (raw model output) are the usual offenders; the full text stays in the log.
func fitCell(v string) string {
	if utf8.RuneCountInString(v) <= excelize.TotalCellChars {
		return v
	}
	keep := excelize.TotalCellChars - utf8.RuneCountInString(truncatedMarker)
	runes := []rune(v)
	return string(runes[:keep]) + truncatedMarker
}
