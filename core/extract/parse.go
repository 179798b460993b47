package extract

import (
	"encoding/json"
	"regexp"

	"github.com/gaurav-prasanna/shelfpipe/core/schema"
)

// jsonSpan matches from the first '{' to the last '}', across lines.
// Output holding several objects therefore yields one invalid span.
var jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

// ParseResult is either a parsed listing or the reason parsing failed.
type ParseResult struct {
	Listing *schema.Listing
	Failure *ParseError
}

// Parsed reports whether the result holds a listing.
func (r ParseResult) Parsed() bool {
	return r.Failure == nil && r.Listing != nil
}

// Parse locates the JSON object in raw model output and decodes it as a Listing.
func Parse(raw string) ParseResult {
	span := jsonSpan.FindString(raw)
	if span == "" {
		return ParseResult{Failure: &ParseError{Err: ErrNoJSON}}
	}

	var listing schema.Listing
	if err := json.Unmarshal([]byte(span), &listing); err != nil {
		return ParseResult{Failure: &ParseError{Err: err}}
	}
	return ParseResult{Listing: &listing}
}
