package schema

// ErrorDescription marks a summary row that stands in for a failed URL.
const ErrorDescription = "ERROR"

// Row is one line of the summary table. It is either an enriched product
// row or an error row; both share the same three columns.
type Row struct {
	URL                string `json:"url"`
	ProductDescription string `json:"product_description"`
	ProductLink        string `json:"product_link"`
}

// SummaryColumns is the header of every summary artifact.
var SummaryColumns = []string{"url", "product_description", "product_link"}

// EnrichedRow reduces a product record to its summary row. The record's own
// url wins; sourceURL fills in for caches written without one.
func EnrichedRow(rec ProductRecord, sourceURL string) Row {
	url := rec.URL
	if url == "" {
		url = sourceURL
	}
	return Row{
		URL:                url,
		ProductDescription: rec.ProductName,
		ProductLink:        rec.ProductLink,
	}
}

// ErrorRow is the single row a failed URL contributes.
func ErrorRow(url string, err error) Row {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return Row{
		URL:                url,
		ProductDescription: ErrorDescription,
		ProductLink:        detail,
	}
}

// IsError reports whether r is an error placeholder.
func (r Row) IsError() bool {
	return r.ProductDescription == ErrorDescription
}

// Values returns the row in SummaryColumns order.
func (r Row) Values() []string {
	return []string{r.URL, r.ProductDescription, r.ProductLink}
}
