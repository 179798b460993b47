// Package fetch implements the Fetcher interface.
// Every backend hands back the page as Markdown; a page with no usable text
// is reported as a NoContentError.
package fetch

import (
	"fmt"
	"strings"
)

// NoContentError reports a backend response that carried no markdown.
type NoContentError struct {
	URL string
}

func (e *NoContentError) Error() string {
	return fmt.Sprintf("no markdown found in scraped content for %s", e.URL)
}

// Converter turns fetched HTML into Markdown.
type Converter interface {
	Normalize(html string) (string, error)
}

func requireMarkdown(url, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", &NoContentError{URL: url}
	}
	return markdown, nil
}
