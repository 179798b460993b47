package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/shelfpipe/core"
)

// SummaryFormats lists the summary extensions NewSummaryWriter accepts.
var SummaryFormats = []string{".xlsx", ".csv", ".pdf"}

// NewSummaryWriter picks the summary writer matching the path's extension.
func NewSummaryWriter(path string) (core.SummaryWriter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return &XLSXSummary{Path: path}, nil
	case ".csv":
		return &CSVSummary{Path: path}, nil
	case ".pdf":
		return &PDFSummary{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported summary format %q (want one of %s)",
			filepath.Ext(path), strings.Join(SummaryFormats, ", "))
	}
}
