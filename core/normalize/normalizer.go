// Package normalize converts fetched HTML into Markdown, the text handed to
// the extraction step when a page is fetched without the scraping service.
package normalize

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// MarkdownNormalizer cleans HTML and converts it to Markdown using html-to-markdown.
type MarkdownNormalizer struct{}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{}
}

// Normalize cleans a full HTML page and converts the content to Markdown.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	fragment, err := Clean(html)
	if err != nil {
		return "", err
	}

	markdown, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
