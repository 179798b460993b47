package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are removed before conversion. Variant pickers (select,
// option) stay because storefronts list flavors in them.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"nav", "footer",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"button", "input", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".cookie-banner", "#cookie-banner", ".announcement-bar", "[aria-hidden=true]",
}

// contentContainers are tried in order; the first match is kept.
var contentContainers = []string{"main", "[role=main]", "#MainContent", "article", "body"}

// Clean strips noise from a full HTML page and returns the fragment that
// holds the product grid.
func Clean(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, sel := range contentContainers {
		found := doc.Find(sel)
		if found.Length() > 0 {
			content = found.First()
			break
		}
	}

	if content == nil {
		return "", fmt.Errorf("no content container found in HTML")
	}

	result, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return result, nil
}
